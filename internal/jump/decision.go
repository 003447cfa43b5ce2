// Package jump classifies jump maneuvers from geometric probe scans and
// drives the jump animation state machine.
package jump

// DecisionType is the classified jump action.
type DecisionType int32

const (
	// JumpForward - plain forward jump, no usable ledge
	JumpForward DecisionType = iota
	// JumpUpLow - low ledge, single short vault
	JumpUpLow
	// JumpUpMid - mid ledge, hands-assisted jump
	JumpUpMid
	// JumpUpHigh - high ledge, jump with hang phase
	JumpUpHigh
	// ClimbUp - ledge above jump reach, full climb
	ClimbUp
	// Blocked - no jump possible
	Blocked
)

// String returns the wire/debug name of the decision type.
func (t DecisionType) String() string {
	switch t {
	case JumpForward:
		return "jump_forward"
	case JumpUpLow:
		return "jump_up_low"
	case JumpUpMid:
		return "jump_up_mid"
	case JumpUpHigh:
		return "jump_up_high"
	case ClimbUp:
		return "climb_up"
	case Blocked:
		return "blocked"
	default:
		return "unknown"
	}
}

// Decision reasons. Absence of data always degrades to the permissive
// jump_forward, never to blocked.
const (
	ReasonNoScanData          = "no_scan_data"
	ReasonFullWall            = "full_wall"
	ReasonLowCeiling          = "low_ceiling_clearance"
	ReasonClearForwardPath    = "clear_forward_path"
	ReasonNoBestLedge         = "no_best_ledge"
	ReasonObstacleTooClose    = "obstacle_too_close"
	ReasonObstacleTooFar      = "obstacle_too_far"
	ReasonLedgeBelowStep      = "ledge_below_step_height"
	ReasonJumpUpLow           = "jump_up_low"
	ReasonJumpUpMid           = "jump_up_mid"
	ReasonJumpUpHigh          = "jump_up_high"
	ReasonClimbUp             = "climb_up"
)

// Probe is one forward ray result of the ledge scan.
type Probe struct {
	Hit      bool
	Distance float64 // distance to the hit point, world cm
	HitY     float64 // world-space Y of the hit point
}

// Scan is the full geometric input of one decision: the probe fan plus the
// vertical envelope of the character at the scan origin.
type Scan struct {
	Range         float64
	Probes        []Probe
	FloorY        float64
	CeilingY      float64
	CapsuleHeight float64
}

// LedgeCandidate is the best ledge the scanner found, if any.
type LedgeCandidate struct {
	LedgeHeight      float64 // ledge top above the floor
	ObstacleDistance float64 // horizontal distance to the obstacle face
}

// Config holds the jump classification thresholds.
// LowMaxHeight < MidMaxHeight < HighMaxHeight; boundaries are inclusive of
// the lower bucket.
type Config struct {
	StepHeight          float64 `yaml:"step_height"`
	LowMaxHeight        float64 `yaml:"low_max_height"`
	MidMaxHeight        float64 `yaml:"mid_max_height"`
	HighMaxHeight       float64 `yaml:"high_max_height"`
	ObstacleMinDist     float64 `yaml:"obstacle_min_dist"`
	ObstacleMaxDist     float64 `yaml:"obstacle_max_dist"`
	MinCeilingClearance float64 `yaml:"min_ceiling_clearance"`
}

// DefaultConfig returns the standard humanoid thresholds (world cm).
func DefaultConfig() Config {
	return Config{
		StepHeight:          40,
		LowMaxHeight:        120,
		MidMaxHeight:        200,
		HighMaxHeight:       300,
		ObstacleMinDist:     30,
		ObstacleMaxDist:     250,
		MinCeilingClearance: 120,
	}
}

// Decision is the outcome of one jump classification. Recomputed every tick
// from fresh probes; only cached for debug display.
type Decision struct {
	Type             DecisionType
	CanJump          bool
	Reason           string
	LedgeHeight      float64
	ObstacleDistance float64
	CeilingClearance float64
	FullWall         bool
}

// Decide classifies a jump from a probe scan and an optional best-ledge
// candidate. Total: every input yields a decision, and missing data degrades
// to a permissive forward jump rather than a refusal.
func Decide(scan Scan, candidate *LedgeCandidate, cfg Config) Decision {
	if len(scan.Probes) == 0 {
		return Decision{Type: JumpForward, CanJump: true, Reason: ReasonNoScanData}
	}

	hits := 0
	nearest := scan.Range
	for _, p := range scan.Probes {
		if !p.Hit {
			continue
		}
		hits++
		if p.Distance < nearest {
			nearest = p.Distance
		}
	}

	if hits == len(scan.Probes) {
		return Decision{Type: Blocked, Reason: ReasonFullWall, FullWall: true}
	}

	// Ceiling clearance only matters once something was hit; a fully clear
	// scan skips the check.
	clearance := scan.CeilingY - (scan.FloorY + scan.CapsuleHeight)
	if hits > 0 && clearance < cfg.MinCeilingClearance {
		return Decision{Type: Blocked, Reason: ReasonLowCeiling, CeilingClearance: clearance}
	}

	if hits == 0 {
		return Decision{Type: JumpForward, CanJump: true, Reason: ReasonClearForwardPath, CeilingClearance: clearance}
	}

	if candidate == nil {
		return Decision{
			Type:             JumpForward,
			CanJump:          true,
			Reason:           ReasonNoBestLedge,
			ObstacleDistance: nearest,
			CeilingClearance: clearance,
		}
	}

	d := Decision{
		CanJump:          true,
		LedgeHeight:      candidate.LedgeHeight,
		ObstacleDistance: candidate.ObstacleDistance,
		CeilingClearance: clearance,
	}

	switch {
	case candidate.ObstacleDistance < cfg.ObstacleMinDist:
		d.Type = JumpForward
		d.Reason = ReasonObstacleTooClose
	case candidate.ObstacleDistance > cfg.ObstacleMaxDist:
		d.Type = JumpForward
		d.Reason = ReasonObstacleTooFar
	case candidate.LedgeHeight < cfg.StepHeight:
		d.Type = JumpForward
		d.Reason = ReasonLedgeBelowStep
	case candidate.LedgeHeight <= cfg.LowMaxHeight:
		d.Type = JumpUpLow
		d.Reason = ReasonJumpUpLow
	case candidate.LedgeHeight <= cfg.MidMaxHeight:
		d.Type = JumpUpMid
		d.Reason = ReasonJumpUpMid
	case candidate.LedgeHeight <= cfg.HighMaxHeight:
		d.Type = JumpUpHigh
		d.Reason = ReasonJumpUpHigh
	default:
		d.Type = ClimbUp
		d.Reason = ReasonClimbUp
	}
	return d
}
