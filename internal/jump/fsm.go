package jump

import "log/slog"

// AnimState is the jump animation phase of one entity.
type AnimState int32

const (
	// AnimIdle - no jump animation
	AnimIdle AnimState = iota
	// AnimStart - jump start animation playing
	AnimStart
	// AnimLoop - airborne/ascend loop
	AnimLoop
	// AnimHang - hanging on the ledge (high jumps and climbs)
	AnimHang
	// AnimExit - stand-up/landing animation playing
	AnimExit
)

// String returns human-readable state name.
func (s AnimState) String() string {
	switch s {
	case AnimIdle:
		return "IDLE"
	case AnimStart:
		return "START"
	case AnimLoop:
		return "LOOP"
	case AnimHang:
		return "HANG"
	case AnimExit:
		return "EXIT"
	default:
		return "UNKNOWN"
	}
}

// Hooks are the animation-side callbacks of the FSM. Any hook may be nil.
type Hooks struct {
	// OnStart fires once when a jump becomes active with no animation playing.
	OnStart func(Inputs)
	// OnActive fires every tick while the jump and its animation are both live.
	OnActive func(Inputs)
	// OnExit fires once when the jump deactivates while an animation is playing.
	OnExit func(Inputs)
}

// Inputs are the per-tick observations driving the FSM.
// Timer elapse flags are computed by the caller from the runtime store's
// stand-at timestamps.
type Inputs struct {
	JumpActive   bool
	AnimPlaying  bool
	Type         DecisionType
	HangElapsed  bool
	StandElapsed bool
}

// Machine is the per-entity jump animation state machine.
// EXIT is not terminal: the next inactive tick collapses it to IDLE.
type Machine struct {
	state AnimState
	hooks Hooks
}

// NewMachine creates an idle machine with the given hooks.
func NewMachine(hooks Hooks) *Machine {
	return &Machine{hooks: hooks}
}

// State returns the current animation state.
func (m *Machine) State() AnimState {
	return m.state
}

// Reset forces the machine back to IDLE without firing hooks.
// Used when a jump exits with no active jump animation.
func (m *Machine) Reset() {
	m.state = AnimIdle
}

// Tick advances the machine by one simulation tick.
func (m *Machine) Tick(in Inputs) {
	switch {
	case !in.JumpActive && in.AnimPlaying:
		if m.hooks.OnExit != nil {
			m.hooks.OnExit(in)
		}
		m.transition(AnimExit)

	case !in.JumpActive && !in.AnimPlaying:
		if m.state != AnimIdle {
			m.transition(AnimIdle)
		}

	case in.JumpActive && !in.AnimPlaying:
		if m.hooks.OnStart != nil {
			m.hooks.OnStart(in)
		}
		m.transition(AnimStart)

	default: // active and playing
		if m.hooks.OnActive != nil {
			m.hooks.OnActive(in)
		}
		m.advanceActive(in)
	}
}

// advanceActive recomputes the phase while jump and animation are both live.
func (m *Machine) advanceActive(in Inputs) {
	if m.state == AnimStart {
		m.transition(AnimLoop)
	}

	switch in.Type {
	case JumpUpHigh, ClimbUp:
		switch m.state {
		case AnimLoop:
			if in.HangElapsed {
				m.transition(AnimHang)
			}
		case AnimHang:
			if in.StandElapsed {
				m.transition(AnimExit)
			}
		}
	case JumpUpLow, JumpUpMid:
		if (m.state == AnimLoop || m.state == AnimStart) && in.StandElapsed {
			m.transition(AnimExit)
		}
	default:
		// jump_forward stays in LOOP until the jump deactivates.
	}
}

func (m *Machine) transition(next AnimState) {
	if m.state == next {
		return
	}
	old := m.state
	m.state = next

	if IsDebugEnabled() {
		slog.Debug("jump anim state changed", "from", old, "to", next)
	}
}
