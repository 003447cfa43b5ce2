package script

import (
	"log/slog"
	"strings"
	"time"

	"github.com/skarn/worldsim/internal/model"
	"github.com/skarn/worldsim/internal/runtime"
)

// QueueGate is the behavior-job-queue view the loop needs: whether anything
// is in flight for the entity, and the ability to request a forced drain.
type QueueGate interface {
	Busy(entityID uint32) bool
	RequestClear(entityID uint32)
}

// LoopConfig tunes the behavior loop.
type LoopConfig struct {
	// Interval is the minimum time between loop invocations per entity.
	Interval time.Duration `yaml:"-"`
	// ForceApplyAfter commits a staged routine change regardless of queue
	// state once this much time passed since staging.
	ForceApplyAfter time.Duration `yaml:"-"`
}

// DefaultLoopConfig returns the standard loop timing.
func DefaultLoopConfig() LoopConfig {
	return LoopConfig{
		Interval:        500 * time.Millisecond,
		ForceApplyAfter: 60 * time.Second,
	}
}

// Loop drives the daily-routine behavior of NPCs: it resolves the active
// routine window, stages routine changes, commits them when the behavior
// queue drains (or on the forced timeout), and dispatches the state's
// entry/loop/end script functions.
type Loop struct {
	interp Interpreter
	queue  QueueGate
	clock  model.Clock
	cfg    LoopConfig
}

// NewLoop creates a behavior loop.
func NewLoop(interp Interpreter, queue QueueGate, clock model.Clock, cfg LoopConfig) *Loop {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultLoopConfig().Interval
	}
	if cfg.ForceApplyAfter <= 0 {
		cfg.ForceApplyAfter = DefaultLoopConfig().ForceApplyAfter
	}
	return &Loop{interp: interp, queue: queue, clock: clock, cfg: cfg}
}

// Run performs one throttled loop invocation for the entity.
func (l *Loop) Run(entityID uint32, rec *model.NpcRecord, f *runtime.Fields, now time.Time) {
	loop := &f.Loop
	if now.Before(loop.NextDueAt) {
		return
	}
	loop.NextDueAt = now.Add(l.cfg.Interval)

	// State time advances every invocation, commit or not.
	if !loop.LastRunAt.IsZero() {
		loop.StateTime += now.Sub(loop.LastRunAt).Seconds()
	}
	loop.LastRunAt = now

	entry, ok := rec.RoutineAt(l.clock.Now())
	if !ok {
		// No matching window: not an error, just no active routine.
		loop.ActiveState = ""
		loop.ActiveKey = ""
		loop.Pending = nil
		return
	}

	desiredKey := entry.Key()
	if desiredKey != loop.ActiveKey {
		if loop.Pending == nil || loop.Pending.Key != desiredKey {
			loop.Pending = &runtime.PendingRoutine{
				Key:         desiredKey,
				State:       entry.State,
				Waypoint:    entry.Waypoint,
				StartMinute: entry.Start.MinuteOfDay(),
				StopMinute:  entry.Stop.MinuteOfDay(),
				Since:       now,
			}
			slog.Debug("routine change staged",
				"entityID", entityID,
				"npc", rec.SymbolName,
				"state", entry.State,
				"waypoint", entry.Waypoint)
		}
	} else {
		loop.Pending = nil
	}

	if p := loop.Pending; p != nil {
		busy := l.queue.Busy(entityID)
		forced := now.Sub(p.Since) >= l.cfg.ForceApplyAfter
		if forced && busy {
			// Forced apply interrupts whatever the queue is doing.
			l.queue.RequestClear(entityID)
		}
		if !busy || forced {
			l.commit(entityID, rec, f, p)
			loop.Pending = nil
		}
	}

	// While jobs are in flight the loop function is suppressed to avoid
	// enqueueing the same job twice.
	if l.queue.Busy(entityID) {
		return
	}
	if loop.ActiveState == "" {
		return
	}
	l.callFirst(entityID, rec, loop.ActiveState,
		loop.ActiveState+"_loop",
		strings.ToUpper(loop.ActiveState)+"_LOOP")
}

// commit applies a staged routine change: old state's end function, state
// bookkeeping, then the new state's entry function. Both calls best-effort.
func (l *Loop) commit(entityID uint32, rec *model.NpcRecord, f *runtime.Fields, p *runtime.PendingRoutine) {
	loop := &f.Loop

	if loop.ActiveState != "" {
		l.callFirst(entityID, rec, loop.ActiveState,
			loop.ActiveState+"_end",
			strings.ToUpper(loop.ActiveState)+"_END")
	}

	loop.ActiveState = p.State
	loop.ActiveKey = p.Key
	loop.StateTime = 0

	slog.Info("routine committed",
		"entityID", entityID,
		"npc", rec.SymbolName,
		"state", p.State,
		"waypoint", p.Waypoint)

	l.callFirst(entityID, rec, p.State, p.State, strings.ToUpper(p.State))
}

// callFirst dispatches the first existing symbol from the candidate list.
// Missing symbols are skipped silently; call errors are logged with context
// and swallowed — one misbehaving script must not halt the simulation.
func (l *Loop) callFirst(entityID uint32, rec *model.NpcRecord, state string, names ...string) {
	l.interp.SetGlobalSelf(rec.SymbolName)
	for _, name := range names {
		if !l.interp.HasSymbol(name) {
			continue
		}
		if err := l.interp.CallFunction(name); err != nil {
			slog.Warn("script call failed",
				"entityID", entityID,
				"npc", rec.SymbolName,
				"state", state,
				"function", name,
				"err", err)
		}
		return
	}
}
