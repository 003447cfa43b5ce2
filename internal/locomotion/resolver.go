// Package locomotion derives the ground-motion animation mode of an entity
// from the physics flags reported by the character controller.
package locomotion

import "log/slog"

// Mode is the resolved ground-motion mode.
type Mode int32

const (
	// ModeIdle - standing still
	ModeIdle Mode = iota
	// ModeWalk - walking forward
	ModeWalk
	// ModeRun - running forward
	ModeRun
	// ModeWalkBack - walking backward
	ModeWalkBack
	// ModeSlide - sliding down a steep surface
	ModeSlide
	// ModeFall - freefall loop
	ModeFall
	// ModeFallDown - short-drop recovery pose
	ModeFallDown
)

// String returns human-readable mode name.
func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "IDLE"
	case ModeWalk:
		return "WALK"
	case ModeRun:
		return "RUN"
	case ModeWalkBack:
		return "WALK_BACK"
	case ModeSlide:
		return "SLIDE"
	case ModeFall:
		return "FALL"
	case ModeFallDown:
		return "FALL_DOWN"
	default:
		return "UNKNOWN"
	}
}

// Config holds the hysteresis tuning of the resolver.
type Config struct {
	// FallEntryDelaySeconds must accumulate while falling before any fall
	// mode is chosen; below it ground locomotion keeps playing. Prevents
	// flicker on tiny steps and bumps.
	FallEntryDelaySeconds float64 `yaml:"fall_entry_delay_seconds"`
	// SlideEntryDelaySeconds is the symmetric delay for slide entry.
	SlideEntryDelaySeconds float64 `yaml:"slide_entry_delay_seconds"`
	// FallDownHeight separates the short-drop recovery pose from freefall (cm).
	FallDownHeight float64 `yaml:"fall_down_height"`
}

// DefaultConfig returns the standard hysteresis tuning.
func DefaultConfig() Config {
	return Config{
		FallEntryDelaySeconds:  0.18,
		SlideEntryDelaySeconds: 0.12,
		FallDownHeight:         250,
	}
}

// Inputs are the per-tick physics observations of one entity.
type Inputs struct {
	Falling bool
	Sliding bool
	Y       float64 // current world-space height
	// GroundMode is the mode supplied by the motion stage or scripted
	// behavior while neither falling nor sliding applies.
	GroundMode Mode
	Dt         float64 // elapsed seconds
}

// Resolver tracks one entity's fall/slide episode and resolves its mode.
// Priority each tick: falling > sliding > grounded.
type Resolver struct {
	cfg Config

	falling   bool
	startY    float64
	minY      float64
	fallTime  float64
	slideTime float64
	forceFall bool
}

// NewResolver creates a resolver with the given tuning.
func NewResolver(cfg Config) *Resolver {
	return &Resolver{cfg: cfg}
}

// ForceFallMode makes the next falling resolution select FALL unconditionally,
// skipping the drop-distance check exactly once. Set when physics signals an
// unrecoverable drop.
func (r *Resolver) ForceFallMode() {
	r.forceFall = true
}

// DropDistance returns the accumulated drop of the current fall episode.
func (r *Resolver) DropDistance() float64 {
	if !r.falling {
		return 0
	}
	return r.startY - r.minY
}

// Falling reports whether a fall episode is being tracked.
func (r *Resolver) Falling() bool {
	return r.falling
}

// Resolve advances the episode tracking by one tick and returns the mode.
func (r *Resolver) Resolve(in Inputs) Mode {
	switch {
	case in.Falling:
		return r.resolveFalling(in)
	case in.Sliding:
		return r.resolveSliding(in)
	default:
		r.clearFallTracking()
		r.slideTime = 0
		r.forceFall = false
		return in.GroundMode
	}
}

func (r *Resolver) resolveFalling(in Inputs) Mode {
	r.slideTime = 0

	if !r.falling {
		// First sample since the fall began.
		r.falling = true
		r.startY = in.Y
		r.minY = in.Y
		r.fallTime = 0

		if IsDebugEnabled() {
			slog.Debug("fall episode started", "startY", in.Y)
		}
	}
	if in.Y < r.minY {
		r.minY = in.Y
	}
	r.fallTime += in.Dt

	if r.forceFall {
		r.forceFall = false
		return ModeFall
	}

	if r.fallTime < r.cfg.FallEntryDelaySeconds {
		return in.GroundMode
	}

	if r.startY-r.minY < r.cfg.FallDownHeight {
		return ModeFallDown
	}
	return ModeFall
}

func (r *Resolver) resolveSliding(in Inputs) Mode {
	r.clearFallTracking()

	r.slideTime += in.Dt
	if r.slideTime < r.cfg.SlideEntryDelaySeconds {
		return in.GroundMode
	}
	return ModeSlide
}

func (r *Resolver) clearFallTracking() {
	r.falling = false
	r.startY = 0
	r.minY = 0
	r.fallTime = 0
}
