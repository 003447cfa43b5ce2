// Package runtime is the per-entity simulation state store: a closed, typed
// set of namespaced fields every other component reads and writes through.
// It replaces an ad-hoc stringly-keyed property bag so the schema is
// enforced by the compiler and every consumer can be reasoned about
// exhaustively.
package runtime

import (
	"time"

	"github.com/skarn/worldsim/internal/jump"
	"github.com/skarn/worldsim/internal/locomotion"
	"github.com/skarn/worldsim/internal/model"
)

// JumpFields is the jump sub-state of one entity. Only meaningful while
// Active is true; fully reset when the jump exits.
type JumpFields struct {
	Active       bool
	Type         jump.DecisionType
	AnimPlaying  bool
	StartedAt    time.Time
	LastDecision jump.Decision // last computed value, cached for debug display

	// Per-phase stand-at deadlines and played flags.
	LowStandAt  time.Time
	LowPlayed   bool
	MidStandAt  time.Time
	MidPlayed   bool
	HighStandAt time.Time
	HighPlayed  bool
	HangAt      time.Time
	HangPlayed  bool
}

// Reset clears the jump sub-state wholesale (jump exit invariant).
func (j *JumpFields) Reset() {
	*j = JumpFields{}
}

// ManualFields are the transient fields of the manually-controlled entity.
type ManualFields struct {
	LeanRoll      float64   // smoothed procedural bank angle, radians
	TurnSign      int       // -1 left, 0 none, +1 right
	LastTurnAt    time.Time // last tick with a turn input
	LastAttackReq uint64    // last consumed attack request id
	LastJumpReq   uint64    // last consumed jump request id
}

// LoopFields is the scripted-behavior-loop bookkeeping of one entity.
type LoopFields struct {
	ActiveState string
	ActiveKey   string
	Pending     *PendingRoutine
	LastRunAt   time.Time
	NextDueAt   time.Time
	StateTime   float64 // accumulated seconds in the active state
}

// PendingRoutine is a staged routine change awaiting the behavior queue to
// drain, or the forced-apply timeout.
type PendingRoutine struct {
	Key         string
	State       string
	Waypoint    string
	StartMinute int
	StopMinute  int
	Since       time.Time
}

// DebugSnapshot is the structured state emitted by the debug stage and
// consumed by the inspector feed. Read-only to consumers.
type DebugSnapshot struct {
	EntityID    uint32     `json:"entityId"`
	Symbol      string     `json:"symbol"`
	Position    model.Vec3 `json:"position"`
	Mode        string     `json:"mode"`
	JumpState   string     `json:"jumpState"`
	JumpReason  string     `json:"jumpReason,omitempty"`
	ActiveState string     `json:"activeState,omitempty"`
	Waypoint    string     `json:"waypoint,omitempty"`
	Falling     bool       `json:"falling"`
	Sliding     bool       `json:"sliding"`
	EmittedAt   time.Time  `json:"emittedAt"`
}

// Fields is the complete runtime field schema of one entity.
type Fields struct {
	// Locomotion controller handle and physics flags.
	Locomotion *locomotion.Resolver
	Falling    bool
	Sliding    bool
	HasFloor   bool
	Mode       locomotion.Mode

	// One-shot script animation suppression window and scripted idle
	// override (set by the ai_playani builtin and the behavior loop).
	ScriptAnimUntil time.Time
	IdleOverride    string
	// ScriptRootRate is the forward root-motion speed, in world units per
	// second, the playing one-shot applies while its window is open.
	ScriptRootRate float64

	// JumpMachine drives the jump animation phases.
	JumpMachine *jump.Machine

	Jump   JumpFields
	Manual ManualFields
	Loop   LoopFields

	// Debug state: last emitted snapshot plus emission throttling.
	LastSnapshot    *DebugSnapshot
	LastSnapshotAt  time.Time
	LastFloorWarnAt time.Time

	// Ran-this-physics-frame guard of the motion stage.
	LastPhysicsFrame uint64
}
