package sim

import (
	"log/slog"
	"time"

	"github.com/skarn/worldsim/internal/combat"
	"github.com/skarn/worldsim/internal/events"
	"github.com/skarn/worldsim/internal/waynet"
)

// Simulation implements script.Host: builtins never act immediately, they
// push jobs onto the entity's behavior queue. The queue tick inside the
// motion stage promotes and steps them, so a builtin call becomes visible
// movement on the following frame.

// SelfEntityID returns the entity the behavior stage is dispatching for.
func (s *Simulation) SelfEntityID() uint32 {
	return s.scriptSelf
}

// StartMoveToWaypoint queues a walk to the named waypoint.
func (s *Simulation) StartMoveToWaypoint(entityID uint32, waypoint string) bool {
	return s.pushMoveJob(entityID, waypoint, false)
}

// StartMoveToFreepoint queues a walk to the nearest matching freepoint.
func (s *Simulation) StartMoveToFreepoint(entityID uint32, fragment string) bool {
	return s.pushMoveJob(entityID, fragment, true)
}

func (s *Simulation) pushMoveJob(entityID uint32, target string, freepoint bool) bool {
	e, ok := s.reg.Get(entityID)
	if !ok {
		slog.Warn("move job for unknown entity", "entityID", entityID, "target", target)
		return false
	}

	var last time.Time
	started := false
	job := &events.Job{
		Kind:   events.KindMove,
		Target: target,
		Step: func(now time.Time) bool {
			if e.Disposed() {
				s.mover.Cancel(entityID)
				return true
			}
			if !started {
				started = true
				last = now
				opts := waynet.Options{Speed: s.cfg.Motion.WalkSpeed}
				if freepoint {
					return !s.mover.StartMoveToFreepoint(entityID, e, target, opts)
				}
				return !s.mover.StartMoveToWaypoint(entityID, e, target, opts)
			}
			dt := now.Sub(last).Seconds()
			last = now
			return s.mover.Advance(entityID, dt)
		},
		Cancel: func() {
			s.mover.Cancel(entityID)
		},
	}
	s.queue.Push(entityID, job)
	return true
}

// PlayAnimation queues a one-shot scripted animation. The job holds the
// queue busy for the animation's duration.
func (s *Simulation) PlayAnimation(entityID uint32, name string) {
	var deadline time.Time
	s.queue.Push(entityID, &events.Job{
		Kind:   events.KindPlayAnim,
		Target: name,
		Step: func(now time.Time) bool {
			if deadline.IsZero() {
				s.playOneShot(entityID, name)
				f := s.store.Fields(entityID)
				deadline = f.ScriptAnimUntil
				if deadline.IsZero() {
					return true
				}
				return false
			}
			return !now.Before(deadline)
		},
	})
}

// Wait queues a scripted pause.
func (s *Simulation) Wait(entityID uint32, seconds float64) {
	var deadline time.Time
	s.queue.Push(entityID, &events.Job{
		Kind: events.KindWait,
		Step: func(now time.Time) bool {
			if deadline.IsZero() {
				deadline = now.Add(time.Duration(seconds * float64(time.Second)))
				return false
			}
			return !now.Before(deadline)
		},
	})
}

// RequestMeleeAttack queues one swing against the named entity. The job
// completes when the attacker returns to the idle combat stance.
func (s *Simulation) RequestMeleeAttack(entityID uint32, targetSymbol string) bool {
	target, ok := s.reg.BySymbol(targetSymbol)
	if !ok {
		slog.Warn("attack on unknown target", "entityID", entityID, "target", targetSymbol)
		return false
	}
	requested := false
	s.queue.Push(entityID, &events.Job{
		Kind:   events.KindAttack,
		Target: targetSymbol,
		Step: func(now time.Time) bool {
			if !requested {
				requested = true
				if !s.combat.RequestMeleeAttack(entityID, combat.AttackOptions{TargetID: target.ID}, now) {
					return true
				}
				return false
			}
			return s.combat.State(entityID) == combat.StateIdle
		},
	})
	return true
}

// StateTime returns the seconds accumulated in the entity's active routine
// state.
func (s *Simulation) StateTime(entityID uint32) float64 {
	f, ok := s.store.Peek(entityID)
	if !ok {
		return 0
	}
	return f.Loop.StateTime
}

// TimeHour returns the in-game hour.
func (s *Simulation) TimeHour() int {
	return s.clock.Now().Hour
}

// TimeMinute returns the in-game minute.
func (s *Simulation) TimeMinute() int {
	return s.clock.Now().Minute
}
