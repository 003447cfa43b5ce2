package locomotion

import "testing"

func cfg() Config {
	return Config{
		FallEntryDelaySeconds:  0.2,
		SlideEntryDelaySeconds: 0.1,
		FallDownHeight:         250,
	}
}

func TestResolver_Grounded(t *testing.T) {
	r := NewResolver(cfg())

	got := r.Resolve(Inputs{GroundMode: ModeRun, Dt: 0.05})

	if got != ModeRun {
		t.Errorf("grounded mode = %v, want RUN", got)
	}
}

func TestResolver_FallEntryDelay(t *testing.T) {
	r := NewResolver(cfg())

	// Below the entry delay ground locomotion keeps playing even while
	// physics reports falling.
	got := r.Resolve(Inputs{Falling: true, Y: 100, GroundMode: ModeWalk, Dt: 0.05})
	if got != ModeWalk {
		t.Errorf("mode before delay = %v, want WALK", got)
	}

	got = r.Resolve(Inputs{Falling: true, Y: 60, GroundMode: ModeWalk, Dt: 0.05})
	if got != ModeWalk {
		t.Errorf("mode before delay = %v, want WALK", got)
	}

	// Third tick crosses the 0.2s delay.
	got = r.Resolve(Inputs{Falling: true, Y: 20, GroundMode: ModeWalk, Dt: 0.15})
	if got != ModeFallDown {
		t.Errorf("mode after delay, short drop = %v, want FALL_DOWN", got)
	}
}

func TestResolver_FallDownToFallMonotonic(t *testing.T) {
	r := NewResolver(cfg())

	y := 1000.0
	var modes []Mode
	for range 20 {
		modes = append(modes, r.Resolve(Inputs{Falling: true, Y: y, Dt: 0.1, GroundMode: ModeIdle}))
		y -= 40
	}

	// Once FALL was chosen the episode must never oscillate back to FALL_DOWN.
	sawFall := false
	for i, m := range modes {
		if m == ModeFall {
			sawFall = true
		}
		if sawFall && m == ModeFallDown {
			t.Fatalf("tick %d: mode oscillated back to FALL_DOWN after FALL", i)
		}
	}
	if !sawFall {
		t.Fatal("deep drop never resolved to FALL")
	}
	if modes[len(modes)-1] != ModeFall {
		t.Errorf("final mode = %v, want FALL", modes[len(modes)-1])
	}
}

func TestResolver_ForceFallSkipsDistanceOnce(t *testing.T) {
	r := NewResolver(cfg())
	r.ForceFallMode()

	// Tiny drop, zero accumulated fall time — force override still yields FALL.
	got := r.Resolve(Inputs{Falling: true, Y: 100, GroundMode: ModeIdle, Dt: 0.01})
	if got != ModeFall {
		t.Fatalf("forced mode = %v, want FALL", got)
	}

	// Override is consumed; normal tracking resumes (still below entry delay).
	got = r.Resolve(Inputs{Falling: true, Y: 99, GroundMode: ModeIdle, Dt: 0.01})
	if got != ModeIdle {
		t.Errorf("mode after consumed override = %v, want IDLE (ground mode)", got)
	}
}

func TestResolver_SlideEntryDelayAndClear(t *testing.T) {
	r := NewResolver(cfg())

	// Begin a fall episode first.
	r.Resolve(Inputs{Falling: true, Y: 500, Dt: 0.3, GroundMode: ModeIdle})
	if !r.Falling() {
		t.Fatal("fall episode not tracked")
	}

	// Sliding takes priority below falling and clears fall tracking.
	got := r.Resolve(Inputs{Sliding: true, Y: 480, GroundMode: ModeIdle, Dt: 0.05})
	if got != ModeIdle {
		t.Errorf("mode before slide delay = %v, want IDLE", got)
	}
	if r.Falling() {
		t.Error("slide entry must clear fall tracking")
	}

	got = r.Resolve(Inputs{Sliding: true, Y: 460, GroundMode: ModeIdle, Dt: 0.1})
	if got != ModeSlide {
		t.Errorf("mode after slide delay = %v, want SLIDE", got)
	}
}

func TestResolver_GroundedClearsEpisode(t *testing.T) {
	r := NewResolver(cfg())
	r.ForceFallMode()
	r.Resolve(Inputs{Falling: true, Y: 500, Dt: 0.3, GroundMode: ModeIdle})

	r.Resolve(Inputs{GroundMode: ModeIdle, Dt: 0.05})

	if r.Falling() || r.DropDistance() != 0 {
		t.Error("grounded tick must clear fall tracking")
	}

	// A new shallow fall must not inherit the cleared force-fall override.
	r.Resolve(Inputs{Falling: true, Y: 500, Dt: 0.25, GroundMode: ModeIdle})
	got := r.Resolve(Inputs{Falling: true, Y: 495, Dt: 0.05, GroundMode: ModeIdle})
	if got != ModeFallDown {
		t.Errorf("mode = %v, want FALL_DOWN (override must have been cleared)", got)
	}
}
