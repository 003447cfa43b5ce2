package sim

// InputState is the per-tick input snapshot of the manually-controlled
// entity. The embedding layer overwrites it before Tick; the motion stage
// only reads it. Request ids are monotonically increasing counters so a
// button press held across several frames still triggers exactly once.
type InputState struct {
	MoveForward bool
	MoveBack    bool
	Run         bool
	// TurnAxis is the keyboard turn input: -1 left, 0 none, +1 right.
	TurnAxis float64
	// MouseYawDelta is the accumulated mouse yaw since the last tick,
	// radians. Consumed wholesale every tick.
	MouseYawDelta float64

	// AttackRequestID/JumpRequestID increment on each press. The motion
	// stage compares them against the last consumed ids in the runtime
	// store, so a request fires once no matter how many frames it spans.
	AttackRequestID uint64
	JumpRequestID   uint64

	// AttackTargetID is the victim of a manual attack request; 0 lets the
	// request fall through without a target.
	AttackTargetID uint32
}

func (in InputState) turnSign() int {
	switch {
	case in.TurnAxis < 0:
		return -1
	case in.TurnAxis > 0:
		return 1
	default:
		return 0
	}
}
