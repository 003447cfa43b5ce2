package sim

import (
	"log/slog"
	"time"

	"github.com/skarn/worldsim/internal/anim"
	"github.com/skarn/worldsim/internal/combat"
	"github.com/skarn/worldsim/internal/config"
	"github.com/skarn/worldsim/internal/events"
	"github.com/skarn/worldsim/internal/jump"
	"github.com/skarn/worldsim/internal/model"
	"github.com/skarn/worldsim/internal/physics"
	"github.com/skarn/worldsim/internal/runtime"
	"github.com/skarn/worldsim/internal/script"
	"github.com/skarn/worldsim/internal/waynet"
)

// UISurface is the optional overlay layer updated by the UI stage: camera
// facing of floating elements, health bars, the debug text panel. Nil in
// headless runs.
type UISurface interface {
	FaceCamera(entityID uint32)
	SetHealthRatio(entityID uint32, ratio float64)
	SetDebugText(entityID uint32, text string)
}

// LoaderFunc resolves the rendered character handle of an entity once its
// assets are streamed in. Returning false keeps the entity unloaded; the
// streaming stage retries next frame.
type LoaderFunc func(e *Entity) (anim.Handle, bool)

// SnapshotFunc consumes debug snapshots emitted by the debug stage.
type SnapshotFunc func(runtime.DebugSnapshot)

// Deps wires a Simulation. Registry, Net, Interp, KCC, Resolver and Clock
// are required; everything else is optional.
type Deps struct {
	Cfg      config.Sim
	Registry *Registry
	Net      *waynet.Net
	Interp   script.Interpreter
	KCC      physics.Controller
	Resolver *anim.Resolver
	Clock    *model.DayClock
	UI       UISurface
	Loader   LoaderFunc
	Snapshot SnapshotFunc
}

type teleportRequest struct {
	entityID uint32
	waypoint string
}

// Simulation composes the frame pipeline: streaming, world-position sync,
// scripted behavior, debug teleport, per-entity ticks and combat resolution,
// invoked in that fixed order every frame. All state mutation is
// single-threaded inside Tick.
type Simulation struct {
	cfg    config.Sim
	reg    *Registry
	net    *waynet.Net
	mover  *waynet.Mover
	queue  *events.Manager
	store  *runtime.Store
	loop   *script.Loop
	interp script.Interpreter
	kcc    physics.Controller
	anims  *anim.Resolver
	clock  *model.DayClock
	combat *combat.Runtime

	ui       UISurface
	loader   LoaderFunc
	snapshot SnapshotFunc

	pipeline []stage

	enabled      bool
	physicsFrame uint64
	tickNow      time.Time
	tickDt       float64

	controlledID uint32
	debuggedID   uint32
	input        InputState

	// scriptSelf is the entity the behavior stage is currently dispatching
	// for; builtins resolve "self" through it.
	scriptSelf uint32

	pendingTeleport *teleportRequest

	// positions is the read-only position snapshot rebuilt by the
	// world-position-sync stage.
	positions map[uint32]model.Vec3
}

// New wires a simulation from its dependencies.
func New(deps Deps) *Simulation {
	s := &Simulation{
		cfg:       deps.Cfg,
		reg:       deps.Registry,
		net:       deps.Net,
		interp:    deps.Interp,
		kcc:       deps.KCC,
		anims:     deps.Resolver,
		clock:     deps.Clock,
		ui:        deps.UI,
		loader:    deps.Loader,
		snapshot:  deps.Snapshot,
		enabled:   true,
		positions: make(map[uint32]model.Vec3),
	}
	s.mover = waynet.NewMover(deps.Net)
	s.queue = events.NewManager(s.mover.Moving)
	s.store = runtime.NewStore(deps.Cfg.Locomotion, s.newJumpMachine)
	s.combat = combat.NewRuntime(s.playOneShot, s.onDeath)
	s.loop = script.NewLoop(deps.Interp, s.queue, deps.Clock, script.LoopConfig{
		Interval:        deps.Cfg.Behavior.LoopInterval(),
		ForceApplyAfter: deps.Cfg.Behavior.ForceApply(),
	})
	s.pipeline = []stage{
		{"streaming", s.stageStreaming},
		{"worldPositionSync", s.stageWorldPositionSync},
		{"scriptedBehavior", s.stageScriptedBehavior},
		{"debugTeleport", s.stageDebugTeleport},
		{"entityTicks", s.stageEntityTicks},
		{"combatResolution", s.stageCombat},
	}
	return s
}

// Entities returns all live entities in spawn order.
func (s *Simulation) Entities() []*Entity { return s.reg.Entities() }

// Store exposes the runtime field store (tests, inspector).
func (s *Simulation) Store() *runtime.Store { return s.store }

// Queue exposes the behavior-job queue manager.
func (s *Simulation) Queue() *events.Manager { return s.queue }

// Mover exposes the waypoint mover.
func (s *Simulation) Mover() *waynet.Mover { return s.mover }

// Combat exposes the combat runtime.
func (s *Simulation) Combat() *combat.Runtime { return s.combat }

// SetEnabled toggles the simulation. While disabled only the streaming
// stage runs, so entities keep loading but nothing moves or thinks.
func (s *Simulation) SetEnabled(on bool) { s.enabled = on }

// Enabled reports the pipeline toggle.
func (s *Simulation) Enabled() bool { return s.enabled }

// SetControlled marks the manually-controlled entity; 0 means none.
func (s *Simulation) SetControlled(entityID uint32) { s.controlledID = entityID }

// SetDebugged selects the entity observed by the debug stage; 0 disables.
func (s *Simulation) SetDebugged(entityID uint32) { s.debuggedID = entityID }

// SetInput overwrites the manual-control input snapshot for the next tick.
func (s *Simulation) SetInput(in InputState) { s.input = in }

// SetTimeOfDay jumps the world clock (debug tooling). Routine windows
// re-resolve on the next behavior loop pass.
func (s *Simulation) SetTimeOfDay(t model.TimeOfDay) { s.clock.Set(t) }

// RequestTeleport schedules a debug teleport, applied by the next frame's
// debug-teleport stage.
func (s *Simulation) RequestTeleport(entityID uint32, waypoint string) {
	s.pendingTeleport = &teleportRequest{entityID: entityID, waypoint: waypoint}
}

// Spawn creates an entity for the record at its spawn waypoint (or the
// origin when the waypoint is unknown) and enrolls it in combat.
func (s *Simulation) Spawn(rec *model.NpcRecord) *Entity {
	pos := model.Vec3{}
	if wp, ok := s.net.Waypoint(rec.SpawnPoint); ok {
		pos = wp.Pos
	} else if rec.SpawnPoint != "" {
		slog.Warn("spawn at unknown waypoint", "npc", rec.SymbolName, "waypoint", rec.SpawnPoint)
	}
	e := s.reg.Spawn(rec, pos)
	s.combat.EnsureNpc(e.ID, 0)

	slog.Info("npc spawned",
		"entityID", e.ID,
		"npc", rec.SymbolName,
		"waypoint", rec.SpawnPoint)
	return e
}

// Despawn disposes the entity and tears down every per-entity structure:
// move, claims, job queue, runtime fields, combat enrollment.
func (s *Simulation) Despawn(entityID uint32) {
	s.mover.Cancel(entityID)
	s.net.Release(entityID)
	s.queue.Remove(entityID)
	s.store.Remove(entityID)
	s.combat.Remove(entityID)
	delete(s.positions, entityID)
	s.reg.Despawn(entityID)
}

// StartJump classifies a jump in front of the entity and activates it when
// the classification allows one. Returns the decision either way.
func (s *Simulation) StartJump(entityID uint32) jump.Decision {
	e, ok := s.reg.Get(entityID)
	if !ok {
		return jump.Decision{}
	}
	scan, candidate := s.kcc.ScanLedge(e, e.Heading(), s.cfg.JumpPhases.ScanRange)
	d := jump.Decide(scan, candidate, s.cfg.Jump)

	f := s.store.Fields(entityID)
	f.Jump.LastDecision = d
	if !d.CanJump {
		if jump.IsDebugEnabled() {
			slog.Debug("jump refused", "entityID", entityID, "reason", d.Reason)
		}
		return d
	}
	f.Jump.Active = true
	f.Jump.Type = d.Type
	f.Jump.StartedAt = s.tickNow
	return d
}

// newJumpMachine builds the per-entity jump FSM with its hooks bound to the
// runtime store and the jump phase timings.
func (s *Simulation) newJumpMachine(entityID uint32) *jump.Machine {
	return jump.NewMachine(jump.Hooks{
		OnStart: func(in jump.Inputs) {
			f := s.store.Fields(entityID)
			f.Jump.AnimPlaying = true
			now := s.tickNow
			phases := s.cfg.JumpPhases
			switch in.Type {
			case jump.JumpUpLow:
				f.Jump.LowStandAt = now.Add(time.Duration(phases.LowStandMs) * time.Millisecond)
			case jump.JumpUpMid:
				f.Jump.MidStandAt = now.Add(time.Duration(phases.MidStandMs) * time.Millisecond)
			case jump.JumpUpHigh, jump.ClimbUp:
				f.Jump.HangAt = now.Add(time.Duration(phases.HangMs) * time.Millisecond)
				f.Jump.HighStandAt = f.Jump.HangAt.Add(time.Duration(phases.HighStandMs) * time.Millisecond)
			}
		},
		OnExit: func(jump.Inputs) {
			f := s.store.Fields(entityID)
			f.Jump.AnimPlaying = false
		},
	})
}

// playOneShot plays a non-looping animation on the entity and opens the
// script-animation suppression window for its duration.
func (s *Simulation) playOneShot(entityID uint32, name string) {
	e, ok := s.reg.Get(entityID)
	if !ok {
		return
	}
	modelKey := e.Record.Visual.ModelName
	m := s.anims.ResolveFirst(modelKey, name)
	if e.Handle != nil {
		e.Handle.SetAnimation(anim.RequestFor(m, true))
	}
	f := s.store.Fields(entityID)
	dur := time.Duration(m.DurationMs) * time.Millisecond
	if dur <= 0 {
		dur = time.Second
	}
	f.ScriptAnimUntil = s.tickNow.Add(dur)
	f.ScriptRootRate = 0
	if m.RootMotion != 0 {
		f.ScriptRootRate = m.RootMotion / dur.Seconds()
	}
}

// onDeath parks a dead entity: move cancelled, queue drained, dead pose held.
func (s *Simulation) onDeath(entityID uint32) {
	s.mover.Cancel(entityID)
	s.queue.RequestClear(entityID)
	f := s.store.Fields(entityID)
	f.IdleOverride = "S_DEAD"
	s.playOneShot(entityID, "T_DEAD")
}

// Position returns the last synced position of the entity; zero when the
// sync stage has not seen it yet.
func (s *Simulation) Position(entityID uint32) model.Vec3 {
	return s.positions[entityID]
}
