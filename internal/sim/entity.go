// Package sim composes the per-entity tick stages and the top-level frame
// pipeline of the NPC simulation.
package sim

import (
	"github.com/skarn/worldsim/internal/anim"
	"github.com/skarn/worldsim/internal/model"
)

// Entity is one live, possibly rendered character in the world.
// All mutation happens inside the tick pipeline; there is no parallelism.
type Entity struct {
	ID     uint32
	Record *model.NpcRecord

	pos     model.Vec3
	heading float64 // yaw, radians

	// Handle is the rendered character; nil while the model load is in
	// flight or in headless runs.
	Handle anim.Handle

	// Loaded is flipped by the streaming stage once assets are ready.
	Loaded bool

	// disposed marks the entity for teardown; checked at every suspension
	// point so async completions can discard their results.
	disposed bool
}

// Position returns the world position.
func (e *Entity) Position() model.Vec3 {
	return e.pos
}

// SetPosition moves the entity.
func (e *Entity) SetPosition(p model.Vec3) {
	e.pos = p
}

// Heading returns the yaw angle in radians.
func (e *Entity) Heading() float64 {
	return e.heading
}

// SetHeading sets the yaw angle.
func (e *Entity) SetHeading(yaw float64) {
	e.heading = yaw
}

// Dispose marks the entity for teardown. Remaining tick work is abandoned
// at the next check point, never interrupted mid-step.
func (e *Entity) Dispose() {
	e.disposed = true
}

// Disposed reports whether teardown was requested.
func (e *Entity) Disposed() bool {
	return e.disposed
}

// ActiveAnimation returns the handle's playing animation, or "" without one.
func (e *Entity) ActiveAnimation() string {
	if e.Handle == nil {
		return ""
	}
	return e.Handle.ActiveAnimation()
}
