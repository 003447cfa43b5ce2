package combat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuntime_AttackLifecycle(t *testing.T) {
	r := NewRuntime(nil, nil)
	r.EnsureNpc(1, 100)
	r.EnsureNpc(2, 100)
	now := time.Now()

	var hits []Hit
	r.SetHitObserver(func(h Hit) { hits = append(hits, h) })

	ok := r.RequestMeleeAttack(1, AttackOptions{TargetID: 2, Damage: 30, WindupMs: 400, RecoverMs: 600}, now)
	require.True(t, ok)
	assert.Equal(t, StateWindup, r.State(1))

	// Mid-windup: second request refused, no hit yet.
	assert.False(t, r.RequestMeleeAttack(1, AttackOptions{TargetID: 2}, now.Add(100*time.Millisecond)))
	r.Update(now.Add(200 * time.Millisecond))
	assert.Empty(t, hits)

	// Windup elapses: hit resolves, stance moves to recover.
	r.Update(now.Add(450 * time.Millisecond))
	require.Len(t, hits, 1)
	assert.Equal(t, uint32(1), hits[0].AttackerID)
	assert.Equal(t, uint32(2), hits[0].TargetID)
	assert.Equal(t, StateRecover, r.State(1))

	// Recover elapses: idle again.
	r.Update(now.Add(1200 * time.Millisecond))
	assert.Equal(t, StateIdle, r.State(1))
}

func TestRuntime_DamageAndDeath(t *testing.T) {
	died := []uint32{}
	r := NewRuntime(nil, func(id uint32) { died = append(died, id) })
	r.EnsureNpc(1, 1000)
	r.EnsureNpc(2, 10)
	now := time.Now()

	// Swing until the hit lands (miss roll may spare the target once).
	for i := 0; r.State(2) != StateDead && i < 20; i++ {
		step := time.Duration(i) * 2 * time.Second
		r.RequestMeleeAttack(1, AttackOptions{TargetID: 2, Damage: 50, WindupMs: 100, RecoverMs: 100}, now.Add(step))
		r.Update(now.Add(step + 150*time.Millisecond))
		r.Update(now.Add(step + 400*time.Millisecond))
	}

	require.Equal(t, StateDead, r.State(2))
	cur, _ := r.Health(2)
	assert.Zero(t, cur)
	assert.Equal(t, []uint32{2}, died)

	// Dead entities refuse attacks.
	assert.False(t, r.RequestMeleeAttack(2, AttackOptions{TargetID: 1}, now))
}

func TestRuntime_EnsureIdempotent(t *testing.T) {
	r := NewRuntime(nil, nil)
	r.EnsureNpc(5, 80)
	now := time.Now()

	// Damage then re-ensure: health is preserved.
	r.EnsureNpc(6, 1000)
	for i := 0; i < 20; i++ {
		step := time.Duration(i) * 2 * time.Second
		r.RequestMeleeAttack(6, AttackOptions{TargetID: 5, Damage: 10, WindupMs: 50, RecoverMs: 50}, now.Add(step))
		r.Update(now.Add(step + 60*time.Millisecond))
		r.Update(now.Add(step + 120*time.Millisecond))
		if cur, _ := r.Health(5); cur < 80 {
			break
		}
	}
	cur, _ := r.Health(5)
	require.Less(t, cur, int32(80))

	r.EnsureNpc(5, 80)
	again, max := r.Health(5)
	assert.Equal(t, cur, again)
	assert.Equal(t, int32(80), max)
}

func TestRuntime_AttackAnimRequested(t *testing.T) {
	var anims []string
	r := NewRuntime(func(id uint32, name string) { anims = append(anims, name) }, nil)
	r.EnsureNpc(1, 100)

	r.RequestMeleeAttack(1, AttackOptions{TargetID: 2}, time.Now())

	assert.Equal(t, []string{"T_ATTACK"}, anims)
}
