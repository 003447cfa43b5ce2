package sim

import (
	"time"

	"github.com/skarn/worldsim/internal/anim"
	"github.com/skarn/worldsim/internal/jump"
	"github.com/skarn/worldsim/internal/locomotion"
	"github.com/skarn/worldsim/internal/runtime"
)

// animStage resolves the entity's locomotion mode, advances the jump FSM
// and applies the winning animation. Precedence: one-shot script animation >
// jump > turn-in-place > idle override > locomotion mode.
func (s *Simulation) animStage(e *Entity, f *runtime.Fields, now time.Time, dt float64) {
	mode := f.Locomotion.Resolve(locomotion.Inputs{
		Falling:    f.Falling,
		Sliding:    f.Sliding,
		Y:          e.Position().Y,
		GroundMode: s.groundMode(e),
		Dt:         dt,
	})
	f.Mode = mode

	// An open one-shot window owns the pose outright: the jump FSM is not
	// even advanced until the clip finishes.
	if now.Before(f.ScriptAnimUntil) {
		return
	}

	before := f.JumpMachine.State()
	f.JumpMachine.Tick(s.jumpInputs(f, now))
	after := f.JumpMachine.State()
	if after != before && after != jump.AnimIdle {
		s.playJumpAnim(e, f, after)
	}
	if after == jump.AnimIdle && before != jump.AnimIdle {
		// Jump fully over: sub-state resets wholesale.
		f.Jump.Reset()
	}
	if f.Jump.Active || after != jump.AnimIdle {
		return
	}

	if e.ID == s.controlledID && mode == locomotion.ModeIdle {
		grace := time.Duration(s.cfg.Motion.TurnGraceMs) * time.Millisecond
		if !f.Manual.LastTurnAt.IsZero() && now.Sub(f.Manual.LastTurnAt) <= grace {
			s.playLoop(e, turnAnimName(f.Manual.TurnSign))
			return
		}
	}

	if mode == locomotion.ModeIdle && f.IdleOverride != "" {
		s.playLoop(e, f.IdleOverride)
		return
	}
	s.playLoop(e, modeAnimName(mode))
}

// jumpInputs assembles the FSM observations from the stored deadlines.
func (s *Simulation) jumpInputs(f *runtime.Fields, now time.Time) jump.Inputs {
	in := jump.Inputs{
		JumpActive:  f.Jump.Active,
		AnimPlaying: f.Jump.AnimPlaying,
		Type:        f.Jump.Type,
	}
	if !f.Jump.HangAt.IsZero() && !now.Before(f.Jump.HangAt) {
		in.HangElapsed = true
	}
	var standAt time.Time
	switch f.Jump.Type {
	case jump.JumpUpLow:
		standAt = f.Jump.LowStandAt
	case jump.JumpUpMid:
		standAt = f.Jump.MidStandAt
	case jump.JumpUpHigh, jump.ClimbUp:
		standAt = f.Jump.HighStandAt
	}
	if !standAt.IsZero() && !now.Before(standAt) {
		in.StandElapsed = true
	}
	return in
}

// playJumpAnim plays the animation of a freshly entered jump phase.
func (s *Simulation) playJumpAnim(e *Entity, f *runtime.Fields, st jump.AnimState) {
	var name string
	switch st {
	case jump.AnimStart:
		switch f.Jump.Type {
		case jump.JumpUpLow:
			name = "T_JUMPUPLOW"
		case jump.JumpUpMid:
			name = "T_JUMPUPMID"
		case jump.JumpUpHigh, jump.ClimbUp:
			name = "T_JUMPUP"
		default:
			name = "T_RUNJUMP"
		}
	case jump.AnimLoop:
		s.playLoop(e, "S_JUMP")
		return
	case jump.AnimHang:
		f.Jump.HangPlayed = true
		s.playLoop(e, "S_HANG")
		return
	case jump.AnimExit:
		switch f.Jump.Type {
		case jump.JumpUpLow:
			f.Jump.LowPlayed = true
			name = "T_JUMPUPLOW_STAND"
		case jump.JumpUpMid:
			f.Jump.MidPlayed = true
			name = "T_JUMPUPMID_STAND"
		case jump.JumpUpHigh, jump.ClimbUp:
			f.Jump.HighPlayed = true
			name = "T_JUMPUP_STAND"
		default:
			name = "T_JUMP_2_STAND"
		}
	default:
		return
	}
	s.playShot(e, name)
}

// playShot applies a one-shot animation with time reset.
func (s *Simulation) playShot(e *Entity, name string) {
	if e.Handle == nil {
		return
	}
	m := s.anims.ResolveFirst(e.Record.Visual.ModelName, name)
	e.Handle.SetAnimation(anim.RequestFor(m, true))
}

// playLoop applies a looping animation, skipping the call when it is
// already the active one so the pose never restarts mid-cycle.
func (s *Simulation) playLoop(e *Entity, name string) {
	if e.Handle == nil {
		return
	}
	m := s.anims.ResolveFirst(e.Record.Visual.ModelName, name)
	if e.Handle.ActiveAnimation() == m.Name {
		return
	}
	req := anim.RequestFor(m, false)
	req.Loop = true
	e.Handle.SetAnimation(req)
}

// groundMode derives the mode the entity would have on solid ground:
// input-driven for the controlled entity, mover-driven for NPCs.
func (s *Simulation) groundMode(e *Entity) locomotion.Mode {
	if e.ID == s.controlledID {
		in := s.input
		switch {
		case in.MoveForward && in.Run:
			return locomotion.ModeRun
		case in.MoveForward:
			return locomotion.ModeWalk
		case in.MoveBack:
			return locomotion.ModeWalkBack
		default:
			return locomotion.ModeIdle
		}
	}
	if s.mover.Moving(e.ID) {
		return locomotion.ModeWalk
	}
	return locomotion.ModeIdle
}

func modeAnimName(m locomotion.Mode) string {
	switch m {
	case locomotion.ModeWalk:
		return "S_WALKL"
	case locomotion.ModeRun:
		return "S_RUNL"
	case locomotion.ModeWalkBack:
		return "S_WALKBL"
	case locomotion.ModeSlide:
		return "S_SLIDE"
	case locomotion.ModeFall:
		return "S_FALL"
	case locomotion.ModeFallDown:
		return "S_FALLDN"
	default:
		return "S_RUN"
	}
}

func turnAnimName(sign int) string {
	if sign < 0 {
		return "T_RUNTURNL"
	}
	return "T_RUNTURNR"
}
