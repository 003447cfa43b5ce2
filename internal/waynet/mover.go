package waynet

import (
	"log/slog"
	"math"

	"github.com/skarn/worldsim/internal/model"
)

// MoveState describes an entity's relationship to the mover.
type MoveState int32

const (
	// MoveDone - no move in flight (also: never moved)
	MoveDone MoveState = iota
	// MoveActive - walking toward the target
	MoveActive
	// MoveFailed - target missing or unreachable
	MoveFailed
)

// String returns human-readable state name.
func (s MoveState) String() string {
	switch s {
	case MoveDone:
		return "DONE"
	case MoveActive:
		return "ACTIVE"
	case MoveFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// Locomotor is the minimal surface the mover needs from an entity.
type Locomotor interface {
	Position() model.Vec3
	SetPosition(model.Vec3)
	SetHeading(float64)
}

// Options tune one move.
type Options struct {
	Speed        float64 // cm/s; 0 uses the default walk speed
	ArriveRadius float64 // cm; 0 uses the default
}

const (
	defaultWalkSpeed    = 150.0
	defaultArriveRadius = 25.0
)

type activeMove struct {
	entity       Locomotor
	target       model.Vec3
	targetName   string
	finalDir     float64 // facing applied on arrival (freepoints)
	hasFinalDir  bool
	speed        float64
	arriveRadius float64
}

// Mover walks entities to waypoints and freepoints. One move per entity;
// starting a new move replaces the old one.
type Mover struct {
	net    *Net
	moves  map[uint32]*activeMove
	states map[uint32]MoveState
}

// NewMover creates a mover over the given net.
func NewMover(net *Net) *Mover {
	return &Mover{
		net:    net,
		moves:  make(map[uint32]*activeMove),
		states: make(map[uint32]MoveState),
	}
}

// StartMoveToWaypoint begins walking the entity to a named waypoint.
// Returns false (state FAILED) when the waypoint does not exist.
func (m *Mover) StartMoveToWaypoint(entityID uint32, e Locomotor, target string, opts Options) bool {
	wp, ok := m.net.Waypoint(target)
	if !ok {
		slog.Warn("move to unknown waypoint", "entityID", entityID, "waypoint", target)
		m.states[entityID] = MoveFailed
		return false
	}
	m.begin(entityID, e, wp.Pos, wp.Name, 0, false, opts)
	return true
}

// StartMoveToFreepoint begins walking the entity to the nearest matching
// unoccupied freepoint, claiming it. Returns false when none matches.
func (m *Mover) StartMoveToFreepoint(entityID uint32, e Locomotor, fragment string, opts Options) bool {
	fp, ok := m.net.NearestFreepoint(fragment, e.Position())
	if !ok {
		slog.Warn("no free freepoint", "entityID", entityID, "fragment", fragment)
		m.states[entityID] = MoveFailed
		return false
	}
	if err := m.net.Claim(fp.Name, entityID); err != nil {
		slog.Warn("freepoint claim failed", "entityID", entityID, "freepoint", fp.Name, "err", err)
		m.states[entityID] = MoveFailed
		return false
	}
	m.begin(entityID, e, fp.Pos, fp.Name, fp.Dir, true, opts)
	return true
}

func (m *Mover) begin(entityID uint32, e Locomotor, target model.Vec3, name string, dir float64, hasDir bool, opts Options) {
	speed := opts.Speed
	if speed <= 0 {
		speed = defaultWalkSpeed
	}
	radius := opts.ArriveRadius
	if radius <= 0 {
		radius = defaultArriveRadius
	}
	m.moves[entityID] = &activeMove{
		entity:       e,
		target:       target,
		targetName:   name,
		finalDir:     dir,
		hasFinalDir:  hasDir,
		speed:        speed,
		arriveRadius: radius,
	}
	m.states[entityID] = MoveActive

	if IsDebugEnabled() {
		slog.Debug("move started", "entityID", entityID, "target", name, "speed", speed)
	}
}

// State returns the entity's move state.
func (m *Mover) State(entityID uint32) MoveState {
	return m.states[entityID]
}

// Moving reports an in-flight move.
func (m *Mover) Moving(entityID uint32) bool {
	_, ok := m.moves[entityID]
	return ok
}

// Target returns the current move target name, if moving.
func (m *Mover) Target(entityID uint32) (string, bool) {
	mv, ok := m.moves[entityID]
	if !ok {
		return "", false
	}
	return mv.targetName, true
}

// Advance progresses the entity's move by dt seconds.
// Returns true when the move finished this tick.
func (m *Mover) Advance(entityID uint32, dt float64) bool {
	mv, ok := m.moves[entityID]
	if !ok {
		return true
	}

	pos := mv.entity.Position()
	dx := mv.target.X - pos.X
	dz := mv.target.Z - pos.Z
	dist := math.Sqrt(dx*dx + dz*dz)

	if dist <= mv.arriveRadius {
		mv.entity.SetPosition(model.Vec3{X: mv.target.X, Y: pos.Y, Z: mv.target.Z})
		if mv.hasFinalDir {
			mv.entity.SetHeading(mv.finalDir)
		}
		delete(m.moves, entityID)
		m.states[entityID] = MoveDone

		if IsDebugEnabled() {
			slog.Debug("move arrived", "entityID", entityID, "target", mv.targetName)
		}
		return true
	}

	step := mv.speed * dt
	if step > dist {
		step = dist
	}
	yaw := math.Atan2(dx, dz)
	mv.entity.SetHeading(yaw)
	mv.entity.SetPosition(model.Vec3{
		X: pos.X + dx/dist*step,
		Y: pos.Y,
		Z: pos.Z + dz/dist*step,
	})
	return false
}

// Cancel aborts the entity's move and releases its freepoint claims.
func (m *Mover) Cancel(entityID uint32) {
	if _, ok := m.moves[entityID]; !ok {
		return
	}
	delete(m.moves, entityID)
	m.states[entityID] = MoveDone
	m.net.Release(entityID)
}
