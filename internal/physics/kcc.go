// Package physics declares the kinematic-character-controller surface the
// simulation consumes. Ray/capsule probing, ground snapping and move
// constraints are external; the simulation treats them as opaque calls.
// FlatGround is a minimal reference implementation for tests and headless
// runs.
package physics

import (
	"github.com/skarn/worldsim/internal/jump"
	"github.com/skarn/worldsim/internal/model"
)

// Body is the positional surface the controller manipulates.
type Body interface {
	Position() model.Vec3
	SetPosition(model.Vec3)
}

// GroundState is the per-tick ground signal of one entity.
type GroundState struct {
	Grounded bool
	Falling  bool
	Sliding  bool
	HasFloor bool
	FloorY   float64
	// ForceFall signals an unrecoverable drop; consumed once by the
	// locomotion resolver.
	ForceFall bool
}

// Controller is the external KCC contract.
type Controller interface {
	// ApplyMoveConstraint attempts the desired horizontal displacement,
	// reporting whether any movement happened.
	ApplyMoveConstraint(b Body, desiredX, desiredZ, dt float64) bool
	// TrySnapToGround snaps the body down onto the floor if one is in range.
	TrySnapToGround(b Body) bool
	// GroundState samples the ground signals under the body.
	GroundState(b Body) GroundState
	// ScanLedge probes forward along yaw for jump classification input.
	ScanLedge(b Body, yaw, scanRange float64) (jump.Scan, *jump.LedgeCandidate)
}

// FlatGround is an infinite flat floor: no walls, no slides, instant snap.
type FlatGround struct {
	FloorY        float64
	CapsuleHeight float64
}

// NewFlatGround creates the reference controller with floor at y.
func NewFlatGround(y float64) *FlatGround {
	return &FlatGround{FloorY: y, CapsuleHeight: 180}
}

// ApplyMoveConstraint moves freely on the flat plane.
func (f *FlatGround) ApplyMoveConstraint(b Body, desiredX, desiredZ, _ float64) bool {
	if desiredX == 0 && desiredZ == 0 {
		return false
	}
	p := b.Position()
	b.SetPosition(model.Vec3{X: p.X + desiredX, Y: p.Y, Z: p.Z + desiredZ})
	return true
}

// TrySnapToGround drops the body onto the floor plane.
func (f *FlatGround) TrySnapToGround(b Body) bool {
	p := b.Position()
	if p.Y == f.FloorY {
		return true
	}
	b.SetPosition(model.Vec3{X: p.X, Y: f.FloorY, Z: p.Z})
	return true
}

// GroundState reports falling only while the body is above the floor plane.
func (f *FlatGround) GroundState(b Body) GroundState {
	p := b.Position()
	return GroundState{
		Grounded: p.Y <= f.FloorY,
		Falling:  p.Y > f.FloorY,
		HasFloor: true,
		FloorY:   f.FloorY,
	}
}

// ScanLedge reports a fully clear fan (nothing to jump onto).
func (f *FlatGround) ScanLedge(b Body, _, scanRange float64) (jump.Scan, *jump.LedgeCandidate) {
	probes := make([]jump.Probe, 8)
	return jump.Scan{
		Range:         scanRange,
		Probes:        probes,
		FloorY:        f.FloorY,
		CeilingY:      f.FloorY + 1e9,
		CapsuleHeight: f.CapsuleHeight,
	}, nil
}
