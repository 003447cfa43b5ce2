package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skarn/worldsim/internal/anim"
	"github.com/skarn/worldsim/internal/config"
	"github.com/skarn/worldsim/internal/jump"
	"github.com/skarn/worldsim/internal/locomotion"
	"github.com/skarn/worldsim/internal/model"
	"github.com/skarn/worldsim/internal/physics"
	"github.com/skarn/worldsim/internal/runtime"
	"github.com/skarn/worldsim/internal/waynet"
)

type fakeHandle struct {
	active string
	sets   []anim.Request
}

func (h *fakeHandle) Update(float64) {}
func (h *fakeHandle) SetAnimation(r anim.Request) {
	h.sets = append(h.sets, r)
	h.active = r.Name
}
func (h *fakeHandle) ActiveAnimation() string { return h.active }

// funcInterp dispatches state functions to plain Go closures.
type funcInterp struct {
	fns  map[string]func()
	self string
}

func (f *funcInterp) HasSymbol(name string) bool {
	_, ok := f.fns[name]
	return ok
}

func (f *funcInterp) CallFunction(name string, _ ...any) error {
	f.fns[name]()
	return nil
}

func (f *funcInterp) SetGlobalSelf(symbol string) { f.self = symbol }

func testNet() *waynet.Net {
	net := waynet.NewNet()
	net.AddWaypoint("WP_SPAWN", model.Vec3{})
	net.AddWaypoint("WP_MARKET", model.Vec3{X: 500})
	net.AddFreepoint("FP_SMALLTALK_01", model.Vec3{X: 300}, 1.0)
	return net
}

func testRecord() *model.NpcRecord {
	return &model.NpcRecord{
		InstanceIndex: 1,
		SymbolName:    "PC_WALKER",
		SpawnPoint:    "WP_SPAWN",
		Routine: []model.RoutineEntry{{
			Start:    model.TimeOfDay{Hour: 0},
			Stop:     model.TimeOfDay{Hour: 0},
			State:    "smalltalk",
			Waypoint: "WP_MARKET",
		}},
		Visual: model.VisualDescriptor{ModelName: "HUMANS"},
	}
}

func testResolver() *anim.Resolver {
	r := anim.NewResolver(anim.Meta{Name: "S_RUN", Model: "HUMANS", Loop: true})
	for _, name := range []string{
		"S_WALKL", "S_RUNL", "S_WALKBL", "S_SLIDE", "S_FALL", "S_FALLDN",
		"T_RUNJUMP", "S_JUMP", "S_HANG",
		"T_JUMPUP", "T_JUMPUPLOW", "T_JUMPUPMID",
		"T_JUMP_2_STAND", "T_JUMPUP_STAND",
		"T_RUNTURNL", "T_RUNTURNR",
	} {
		r.Register(anim.Meta{Name: name, Model: "HUMANS", DurationMs: 400})
	}
	r.Register(anim.Meta{Name: "T_LUNGE", Model: "HUMANS", DurationMs: 500, RootMotion: 60})
	r.Register(anim.Meta{Name: "T_YAWN", Model: "HUMANS", DurationMs: 150})
	return r
}

func newTestSim(interp *funcInterp, snapFn SnapshotFunc) (*Simulation, *waynet.Net) {
	net := testNet()
	s := New(Deps{
		Cfg:      config.DefaultSim(),
		Registry: NewRegistry(),
		Net:      net,
		Interp:   interp,
		KCC:      physics.NewFlatGround(0),
		Resolver: testResolver(),
		Clock:    model.NewDayClock(5400, model.TimeOfDay{Hour: 8}),
		Loader: func(*Entity) (anim.Handle, bool) {
			return &fakeHandle{}, true
		},
		Snapshot: snapFn,
	})
	return s, net
}

func runTicks(s *Simulation, from time.Time, n int, dt float64) time.Time {
	now := from
	for i := 0; i < n; i++ {
		now = now.Add(time.Duration(dt * float64(time.Second)))
		s.Tick(now, dt)
	}
	return now
}

func TestStageOrderIsFixed(t *testing.T) {
	s, _ := newTestSim(&funcInterp{fns: map[string]func(){}}, nil)
	assert.Equal(t, []string{
		"streaming",
		"worldPositionSync",
		"scriptedBehavior",
		"debugTeleport",
		"entityTicks",
		"combatResolution",
	}, s.StageNames())
}

// A scripted entity whose loop function walks to a freepoint: the move must
// be in flight on the frame of the loop call, the queue must stay busy for
// the move's duration (suppressing further loop calls), and arrival must
// apply the freepoint facing while keeping its claim.
func TestScriptedFreepointMove(t *testing.T) {
	entryCalls, loopCalls := 0, 0
	var s *Simulation

	interp := &funcInterp{fns: map[string]func(){}}
	interp.fns["smalltalk"] = func() { entryCalls++ }
	interp.fns["smalltalk_loop"] = func() {
		loopCalls++
		if loopCalls == 1 {
			s.StartMoveToFreepoint(s.SelfEntityID(), "FP_SMALLTALK")
		}
	}

	s, net := newTestSim(interp, nil)
	e := s.Spawn(testRecord())

	base := time.Unix(1000, 0)
	now := runTicks(s, base, 1, 0.05)

	require.Equal(t, 1, entryCalls, "entry function runs on routine commit")
	require.Equal(t, 1, loopCalls)
	assert.Equal(t, waynet.MoveActive, s.Mover().State(e.ID))
	assert.True(t, s.Queue().Busy(e.ID))
	assert.Equal(t, "smalltalk", s.Store().Fields(e.ID).Loop.ActiveState)

	// One second in: still walking, and the loop was suppressed even though
	// its 500ms interval elapsed twice.
	now = runTicks(s, now, 19, 0.05)
	assert.Equal(t, 1, loopCalls, "loop suppressed while the queue is busy")
	assert.True(t, s.Queue().Busy(e.ID))
	assert.Greater(t, e.Position().X, 100.0)

	// Walk out the rest of the move.
	runTicks(s, now, 60, 0.05)
	assert.Equal(t, waynet.MoveDone, s.Mover().State(e.ID))
	assert.False(t, s.Queue().Busy(e.ID))
	assert.InDelta(t, 1.0, e.Heading(), 1e-9, "freepoint facing applied on arrival")
	assert.True(t, net.Occupied("FP_SMALLTALK_01"), "claim survives arrival")
	assert.InDelta(t, 300, e.Position().X, 26)
}

func TestDisabledPipelineOnlyStreams(t *testing.T) {
	s, _ := newTestSim(&funcInterp{fns: map[string]func(){}}, nil)
	e := s.Spawn(testRecord())
	s.SetEnabled(false)

	runTicks(s, time.Unix(1000, 0), 5, 0.05)

	assert.True(t, e.Loaded, "streaming still runs while disabled")
	_, ok := s.Store().Peek(e.ID)
	assert.False(t, ok, "no tick stage touched the entity")
}

func TestManualControlMovesAndAnimates(t *testing.T) {
	s, _ := newTestSim(&funcInterp{fns: map[string]func(){}}, nil)
	e := s.Spawn(testRecord())
	s.SetControlled(e.ID)
	s.SetInput(InputState{MoveForward: true, Run: true})

	runTicks(s, time.Unix(1000, 0), 10, 0.1)

	// Heading 0 faces +Z; one second of run speed.
	cfg := config.DefaultSim()
	assert.InDelta(t, cfg.Motion.RunSpeed, e.Position().Z, 1.0)
	assert.Equal(t, locomotion.ModeRun, s.Store().Fields(e.ID).Mode)
	assert.Equal(t, "S_RUNL", e.ActiveAnimation())
}

func TestManualJumpRequestFiresOnce(t *testing.T) {
	s, _ := newTestSim(&funcInterp{fns: map[string]func(){}}, nil)
	e := s.Spawn(testRecord())
	s.SetControlled(e.ID)

	base := time.Unix(1000, 0)
	runTicks(s, base, 1, 0.05)

	s.SetInput(InputState{JumpRequestID: 1})
	now := runTicks(s, base.Add(50*time.Millisecond), 1, 0.05)

	f := s.Store().Fields(e.ID)
	require.True(t, f.Jump.Active)
	assert.Equal(t, jump.JumpForward, f.Jump.Type)
	assert.Equal(t, jump.AnimStart, f.JumpMachine.State())
	assert.Equal(t, "T_RUNJUMP", e.ActiveAnimation())

	// Same request id held: no second activation after the jump resolves.
	runTicks(s, now, 10, 0.05)
	assert.False(t, f.Jump.Active, "forward jump lands and deactivates")
	assert.Equal(t, jump.AnimIdle, f.JumpMachine.State())
	assert.Equal(t, runtime.JumpFields{}, f.Jump, "jump sub-state reset wholesale")
}

// A one-shot clip with root motion carries the body forward for as long as
// its window is open, then stops dead.
func TestOneShotRootMotionMovesBody(t *testing.T) {
	s, _ := newTestSim(&funcInterp{fns: map[string]func(){}}, nil)
	e := s.Spawn(testRecord())

	base := time.Unix(1000, 0)
	now := runTicks(s, base, 1, 0.05)
	s.playOneShot(e.ID, "T_LUNGE")
	require.Equal(t, "T_LUNGE", e.ActiveAnimation())

	// 500ms clip over 60 units: the ticks inside the window accumulate
	// most of the displacement.
	now = runTicks(s, now, 11, 0.05)
	z := e.Position().Z
	assert.Greater(t, z, 50.0)
	assert.Less(t, z, 60.5)
	assert.Zero(t, s.Store().Fields(e.ID).ScriptRootRate, "rate cleared after the window")

	runTicks(s, now, 10, 0.05)
	assert.Equal(t, z, e.Position().Z, "no drift once the clip ended")
}

// A jump requested mid one-shot stays pending: the FSM is not advanced and
// the clip keeps the pose until its window closes.
func TestOneShotSuppressesJumpUntilDone(t *testing.T) {
	s, _ := newTestSim(&funcInterp{fns: map[string]func(){}}, nil)
	e := s.Spawn(testRecord())
	s.SetControlled(e.ID)

	base := time.Unix(1000, 0)
	now := runTicks(s, base, 1, 0.05)
	s.playOneShot(e.ID, "T_YAWN")

	s.SetInput(InputState{JumpRequestID: 1})
	now = runTicks(s, now, 2, 0.05)

	f := s.Store().Fields(e.ID)
	require.True(t, f.Jump.Active)
	assert.Equal(t, jump.AnimIdle, f.JumpMachine.State(), "FSM frozen while the clip plays")
	assert.Equal(t, "T_YAWN", e.ActiveAnimation())

	// Window closed: the pending jump starts on the next tick.
	runTicks(s, now, 1, 0.05)
	assert.Equal(t, jump.AnimStart, f.JumpMachine.State())
	assert.Equal(t, "T_RUNJUMP", e.ActiveAnimation())
}

func TestDebugSnapshotsThrottleAndChange(t *testing.T) {
	var snaps []runtime.DebugSnapshot
	s, _ := newTestSim(&funcInterp{fns: map[string]func(){}}, func(sn runtime.DebugSnapshot) {
		snaps = append(snaps, sn)
	})
	e := s.Spawn(testRecord())
	s.SetDebugged(e.ID)

	base := time.Unix(1000, 0)
	now := runTicks(s, base, 2, 0.05)
	require.Len(t, snaps, 1, "first snapshot emitted, second suppressed unchanged")

	// The throttle interval elapses without a state change.
	runTicks(s, now, 6, 0.05)
	assert.Len(t, snaps, 2)
}

func TestTeleportAppliedNextFrame(t *testing.T) {
	s, _ := newTestSim(&funcInterp{fns: map[string]func(){}}, nil)
	e := s.Spawn(testRecord())

	s.RequestTeleport(e.ID, "WP_MARKET")
	runTicks(s, time.Unix(1000, 0), 1, 0.05)

	assert.InDelta(t, 500, e.Position().X, 1e-9)
}

func TestDespawnTearsDownEverything(t *testing.T) {
	var s *Simulation
	interp := &funcInterp{fns: map[string]func(){}}
	moved := false
	interp.fns["smalltalk"] = func() {}
	interp.fns["smalltalk_loop"] = func() {
		if !moved {
			moved = true
			s.StartMoveToFreepoint(s.SelfEntityID(), "FP_SMALLTALK")
		}
	}

	s, net := newTestSim(interp, nil)
	e := s.Spawn(testRecord())
	runTicks(s, time.Unix(1000, 0), 5, 0.05)
	require.True(t, s.Mover().Moving(e.ID))

	s.Despawn(e.ID)

	assert.False(t, s.Mover().Moving(e.ID))
	assert.False(t, s.Queue().Busy(e.ID))
	assert.False(t, net.Occupied("FP_SMALLTALK_01"))
	_, ok := s.Store().Peek(e.ID)
	assert.False(t, ok)
	assert.Equal(t, 0, s.reg.Len())
}
