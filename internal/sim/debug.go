package sim

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/skarn/worldsim/internal/runtime"
)

// uiStage updates the rendered handle and the overlay surface of one
// entity.
func (s *Simulation) uiStage(e *Entity, _ *runtime.Fields) {
	if e.Handle != nil {
		e.Handle.Update(s.tickDt)
	}
	if s.ui == nil {
		return
	}
	s.ui.FaceCamera(e.ID)
	if cur, max := s.combat.Health(e.ID); max > 0 {
		s.ui.SetHealthRatio(e.ID, float64(cur)/float64(max))
	}
}

// debugStage emits structured snapshots for the single debugged entity:
// on state change, or on a throttle interval that tightens while the
// entity is falling or sliding. Falling over a bottomless spot also
// raises a rate-limited warning.
func (s *Simulation) debugStage(e *Entity, f *runtime.Fields, now time.Time) {
	if s.debuggedID == 0 || e.ID != s.debuggedID {
		return
	}
	dcfg := s.cfg.Debug

	if f.Falling && !f.HasFloor {
		warnEvery := time.Duration(dcfg.FloorWarnMs) * time.Millisecond
		if f.LastFloorWarnAt.IsZero() || now.Sub(f.LastFloorWarnAt) >= warnEvery {
			f.LastFloorWarnAt = now
			slog.Warn("falling with no floor below",
				"entityID", e.ID,
				"npc", e.Record.SymbolName,
				"pos", e.Position())
		}
	}

	snap := runtime.DebugSnapshot{
		EntityID:    e.ID,
		Symbol:      e.Record.SymbolName,
		Position:    e.Position(),
		Mode:        f.Mode.String(),
		JumpState:   f.JumpMachine.State().String(),
		JumpReason:  f.Jump.LastDecision.Reason,
		ActiveState: f.Loop.ActiveState,
		Falling:     f.Falling,
		Sliding:     f.Sliding,
		EmittedAt:   now,
	}
	if target, ok := s.mover.Target(e.ID); ok {
		snap.Waypoint = target
	}

	interval := time.Duration(dcfg.IntervalMs) * time.Millisecond
	if dcfg.Verbose || f.Falling || f.Sliding {
		interval = time.Duration(dcfg.VerboseIntervalMs) * time.Millisecond
	}
	changed := f.LastSnapshot == nil || snapshotChanged(f.LastSnapshot, &snap)
	if !changed && now.Sub(f.LastSnapshotAt) < interval {
		return
	}
	f.LastSnapshot = &snap
	f.LastSnapshotAt = now

	if s.snapshot != nil {
		s.snapshot(snap)
	}
	if s.ui != nil {
		s.ui.SetDebugText(e.ID, debugText(snap))
	}
}

func snapshotChanged(a, b *runtime.DebugSnapshot) bool {
	return a.Mode != b.Mode ||
		a.JumpState != b.JumpState ||
		a.ActiveState != b.ActiveState ||
		a.Waypoint != b.Waypoint ||
		a.Falling != b.Falling ||
		a.Sliding != b.Sliding
}

func debugText(s runtime.DebugSnapshot) string {
	return fmt.Sprintf("%s #%d\nmode=%s jump=%s\nstate=%s wp=%s\nfall=%v slide=%v",
		s.Symbol, s.EntityID,
		s.Mode, s.JumpState,
		s.ActiveState, s.Waypoint,
		s.Falling, s.Sliding)
}
