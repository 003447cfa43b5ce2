package sim

import (
	"math"
	"time"

	"github.com/skarn/worldsim/internal/combat"
	"github.com/skarn/worldsim/internal/jump"
	"github.com/skarn/worldsim/internal/model"
	"github.com/skarn/worldsim/internal/runtime"
)

// forwardJumpLandGrace keeps a forward jump alive briefly after launch so
// the ground signal of the launch frame does not cancel it instantly.
const forwardJumpLandGrace = 200 * time.Millisecond

// motionStage moves one entity: input-driven sub-stepped integration for
// the controlled entity, behavior-queue progression for everyone else,
// then the shared ground sampling and jump bookkeeping.
func (s *Simulation) motionStage(e *Entity, f *runtime.Fields, now time.Time, dt float64) {
	if e.ID == s.controlledID {
		s.manualMotion(e, f, now, dt)
	} else {
		s.queue.Tick(e.ID, now)
	}
	if e.Disposed() {
		return
	}

	// Root motion from a playing one-shot translates the body along the
	// current heading, constrained like any other movement.
	if f.ScriptRootRate != 0 {
		if now.Before(f.ScriptAnimUntil) {
			fwd := model.YawForward(e.Heading())
			d := fwd.Scale(f.ScriptRootRate * dt)
			s.kcc.ApplyMoveConstraint(e, d.X, d.Z, dt)
		} else {
			f.ScriptRootRate = 0
		}
	}

	// Ground is sampled at most once per physics frame; extra tick passes
	// in the same frame reuse the stored flags.
	if f.LastPhysicsFrame != s.physicsFrame {
		f.LastPhysicsFrame = s.physicsFrame
		gs := s.kcc.GroundState(e)
		f.Falling = gs.Falling
		f.Sliding = gs.Sliding
		f.HasFloor = gs.HasFloor
		if gs.ForceFall {
			f.Locomotion.ForceFallMode()
		}
		if !f.Jump.Active && !gs.Falling && !gs.Sliding {
			s.kcc.TrySnapToGround(e)
		}
	}

	if f.Jump.Active {
		s.advanceJump(e, f, now)
	}
}

// advanceJump re-probes and re-classifies the active jump every tick, and
// deactivates it once its animation reached the exit phase (upward jumps)
// or the entity landed (forward jumps).
func (s *Simulation) advanceJump(e *Entity, f *runtime.Fields, now time.Time) {
	scan, candidate := s.kcc.ScanLedge(e, e.Heading(), s.cfg.JumpPhases.ScanRange)
	f.Jump.LastDecision = jump.Decide(scan, candidate, s.cfg.Jump)

	switch {
	case f.JumpMachine.State() == jump.AnimExit:
		f.Jump.Active = false
	case f.Jump.Type == jump.JumpForward:
		if !f.Falling && now.Sub(f.Jump.StartedAt) >= forwardJumpLandGrace {
			f.Jump.Active = false
		}
	}
}

// manualMotion integrates the controlled entity: one-shot request triggers,
// fixed-length movement sub-steps, and procedural lean smoothing.
func (s *Simulation) manualMotion(e *Entity, f *runtime.Fields, now time.Time, dt float64) {
	in := s.input
	man := &f.Manual

	// Request ids trigger once regardless of how many frames the press
	// spans.
	if in.AttackRequestID != man.LastAttackReq {
		man.LastAttackReq = in.AttackRequestID
		if in.AttackTargetID != 0 {
			s.combat.RequestMeleeAttack(e.ID, combat.AttackOptions{TargetID: in.AttackTargetID}, now)
		}
	}
	if in.JumpRequestID != man.LastJumpReq {
		man.LastJumpReq = in.JumpRequestID
		s.StartJump(e.ID)
	}

	if sign := in.turnSign(); sign != 0 {
		man.TurnSign = sign
		man.LastTurnAt = now
	}

	mcfg := s.cfg.Motion
	if dt > 0 {
		sub := float64(mcfg.SubStepMs) / 1000
		if sub <= 0 {
			sub = dt
		}
		maxSteps := mcfg.MaxSubSteps
		if maxSteps <= 0 {
			maxSteps = 1
		}

		remaining := dt
		for i := 0; i < maxSteps && remaining > 1e-9; i++ {
			h := sub
			if h > remaining {
				h = remaining
			}
			remaining -= h

			// Yaw first, then the forward vector is re-derived from the
			// updated heading. Reusing a pre-turn vector makes the body
			// drift off the look direction.
			share := h / dt
			yaw := e.Heading() + in.MouseYawDelta*share + in.TurnAxis*mcfg.TurnSpeed*h
			e.SetHeading(yaw)
			fwd := model.YawForward(yaw)

			speed := 0.0
			switch {
			case in.MoveForward && in.Run:
				speed = mcfg.RunSpeed
			case in.MoveForward:
				speed = mcfg.WalkSpeed
			case in.MoveBack:
				speed = -mcfg.BackSpeed
			}
			if speed != 0 && !f.Jump.Active {
				d := fwd.Scale(speed * h)
				s.kcc.ApplyMoveConstraint(e, d.X, d.Z, h)
			}
		}
	}

	// Lean eases toward the turn direction with frame-rate independent
	// exponential smoothing.
	target := float64(in.turnSign()) * mcfg.MaxLeanRoll
	alpha := 1 - math.Exp(-mcfg.LeanSharpness*dt)
	man.LeanRoll += (target - man.LeanRoll) * alpha
}
