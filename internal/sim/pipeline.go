package sim

import (
	"log/slog"
	"time"

	"github.com/skarn/worldsim/internal/model"
)

// stage is one named step of the frame pipeline. The order of the pipeline
// slice IS the frame order; nothing else sequences the stages.
type stage struct {
	name string
	run  func(now time.Time, dt float64)
}

// StageNames returns the pipeline stage names in execution order.
func (s *Simulation) StageNames() []string {
	names := make([]string, len(s.pipeline))
	for i, st := range s.pipeline {
		names[i] = st.name
	}
	return names
}

// Tick runs one frame. While the simulation is disabled only the first
// stage (streaming) runs, so assets keep loading but nothing moves.
func (s *Simulation) Tick(now time.Time, dt float64) {
	s.tickNow = now
	s.tickDt = dt
	s.clock.Advance(dt)

	for i, st := range s.pipeline {
		if !s.enabled && i > 0 {
			break
		}
		st.run(now, dt)
	}
}

// PhysicsFrame returns the streaming stage's frame counter.
func (s *Simulation) PhysicsFrame() uint64 {
	return s.physicsFrame
}

// stageStreaming advances the physics-frame counter and flips entities to
// loaded once their character handle resolves. Handles resolved for an
// entity disposed mid-load are discarded.
func (s *Simulation) stageStreaming(_ time.Time, _ float64) {
	s.physicsFrame++

	for _, e := range s.reg.Entities() {
		if e.Loaded || e.Disposed() {
			continue
		}
		if s.loader != nil && e.Handle == nil {
			h, ok := s.loader(e)
			if !ok {
				continue
			}
			if e.Disposed() {
				continue
			}
			e.Handle = h
		}
		e.Loaded = true
	}
}

// stageWorldPositionSync rebuilds the read-only position snapshot consumed
// by scripts and observers for the rest of the frame.
func (s *Simulation) stageWorldPositionSync(_ time.Time, _ float64) {
	for _, e := range s.reg.Entities() {
		if e.Disposed() {
			continue
		}
		s.positions[e.ID] = e.Position()
	}
}

// stageScriptedBehavior runs the behavior loop for every loaded scripted
// entity, in spawn order. The manually-controlled entity is skipped; it is
// driven by input, not routines.
func (s *Simulation) stageScriptedBehavior(now time.Time, _ float64) {
	for _, e := range s.reg.Entities() {
		if !e.Loaded || e.Disposed() || e.ID == s.controlledID {
			continue
		}
		if e.Record == nil {
			continue
		}
		s.scriptSelf = e.ID
		s.loop.Run(e.ID, e.Record, s.store.Fields(e.ID), now)
	}
	s.scriptSelf = 0
}

// stageDebugTeleport consumes a pending teleport request: the entity is
// placed at the waypoint, its move cancelled and its body snapped down.
func (s *Simulation) stageDebugTeleport(_ time.Time, _ float64) {
	req := s.pendingTeleport
	if req == nil {
		return
	}
	s.pendingTeleport = nil

	e, ok := s.reg.Get(req.entityID)
	if !ok || e.Disposed() {
		return
	}
	wp, ok := s.net.Waypoint(req.waypoint)
	if !ok {
		slog.Warn("teleport to unknown waypoint", "entityID", req.entityID, "waypoint", req.waypoint)
		return
	}
	s.mover.Cancel(req.entityID)
	e.SetPosition(model.Vec3{X: wp.Pos.X, Y: wp.Pos.Y, Z: wp.Pos.Z})
	s.kcc.TrySnapToGround(e)

	slog.Info("entity teleported", "entityID", req.entityID, "waypoint", req.waypoint)
}

// stageEntityTicks runs the per-entity tick (UI, motion, animation, debug
// sub-stages) over every loaded entity in spawn order.
func (s *Simulation) stageEntityTicks(now time.Time, dt float64) {
	for _, e := range s.reg.Entities() {
		if !e.Loaded || e.Disposed() {
			continue
		}
		f := s.store.Fields(e.ID)
		s.uiStage(e, f)
		s.motionStage(e, f, now, dt)
		if e.Disposed() {
			continue
		}
		s.animStage(e, f, now, dt)
		s.debugStage(e, f, now)
	}
}

// stageCombat resolves pending swings and stance transitions.
func (s *Simulation) stageCombat(now time.Time, _ float64) {
	s.combat.Update(now)
}
