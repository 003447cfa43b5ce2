package waynet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skarn/worldsim/internal/model"
)

type fakeLocomotor struct {
	pos     model.Vec3
	heading float64
}

func (f *fakeLocomotor) Position() model.Vec3     { return f.pos }
func (f *fakeLocomotor) SetPosition(p model.Vec3) { f.pos = p }
func (f *fakeLocomotor) SetHeading(h float64)     { f.heading = h }

func testNet() *Net {
	n := NewNet()
	n.AddWaypoint("WP_MARKET", model.NewVec3(1000, 0, 0))
	n.AddWaypoint("WP_GATE", model.NewVec3(0, 0, 2000))
	n.AddFreepoint("FP_SMITH_ANVIL_01", model.NewVec3(500, 0, 500), 1.5)
	n.AddFreepoint("FP_SMITH_ANVIL_02", model.NewVec3(5000, 0, 5000), 0)
	n.AddFreepoint("FP_BENCH_01", model.NewVec3(100, 0, 100), 0)
	return n
}

func TestMover_WalkToWaypoint(t *testing.T) {
	m := NewMover(testNet())
	e := &fakeLocomotor{}

	require.True(t, m.StartMoveToWaypoint(1, e, "wp_market", Options{Speed: 200}))
	assert.Equal(t, MoveActive, m.State(1))
	assert.True(t, m.Moving(1))

	// 1000cm at 200cm/s: 5 seconds of 0.5s steps.
	done := false
	for range 12 {
		if m.Advance(1, 0.5) {
			done = true
			break
		}
	}

	require.True(t, done, "move never arrived")
	assert.Equal(t, MoveDone, m.State(1))
	assert.InDelta(t, 1000, e.pos.X, 0.001)
}

func TestMover_UnknownWaypointFails(t *testing.T) {
	m := NewMover(testNet())
	e := &fakeLocomotor{}

	assert.False(t, m.StartMoveToWaypoint(1, e, "WP_NOWHERE", Options{}))
	assert.Equal(t, MoveFailed, m.State(1))
	assert.False(t, m.Moving(1))
}

func TestMover_FreepointClaimAndFacing(t *testing.T) {
	net := testNet()
	m := NewMover(net)
	e := &fakeLocomotor{pos: model.NewVec3(400, 0, 400)}

	require.True(t, m.StartMoveToFreepoint(1, e, "SMITH", Options{Speed: 1000}))

	// Nearest matching anvil is claimed immediately.
	assert.True(t, net.Occupied("FP_SMITH_ANVIL_01"))

	for !m.Advance(1, 0.25) {
	}
	assert.InDelta(t, 1.5, e.heading, 0.001, "arrival applies the freepoint facing")

	// Second entity gets the other anvil.
	e2 := &fakeLocomotor{}
	require.True(t, m.StartMoveToFreepoint(2, e2, "SMITH", Options{}))
	target, ok := m.Target(2)
	require.True(t, ok)
	assert.Equal(t, "FP_SMITH_ANVIL_02", target)
}

func TestMover_CancelReleasesFreepoint(t *testing.T) {
	net := testNet()
	m := NewMover(net)
	e := &fakeLocomotor{}

	require.True(t, m.StartMoveToFreepoint(4, e, "BENCH", Options{}))
	require.True(t, net.Occupied("FP_BENCH_01"))

	m.Cancel(4)

	assert.Equal(t, MoveDone, m.State(4))
	assert.False(t, net.Occupied("FP_BENCH_01"))
}

func TestNet_NearestFreepointSkipsOccupied(t *testing.T) {
	net := testNet()
	require.NoError(t, net.Claim("FP_SMITH_ANVIL_01", 9))

	fp, ok := net.NearestFreepoint("SMITH", model.NewVec3(0, 0, 0))
	require.True(t, ok)
	assert.Equal(t, "FP_SMITH_ANVIL_02", fp.Name)
}
