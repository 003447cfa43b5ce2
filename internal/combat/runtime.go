// Package combat resolves melee attacks between entities: windup, hit
// application with miss/crit rolls, and the recover stance. Attacks are
// requested by scripts or the manual-control motion stage and resolved once
// per frame at the end of the pipeline.
package combat

import (
	"log/slog"
	"math/rand/v2"
	"time"
)

// State is the combat stance of one entity.
type State int32

const (
	// StateIdle - not attacking
	StateIdle State = iota
	// StateWindup - swing started, damage pending
	StateWindup
	// StateRecover - post-hit stance, no new attack accepted
	StateRecover
	// StateDead - out of combat permanently
	StateDead
)

// String returns human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateWindup:
		return "WINDUP"
	case StateRecover:
		return "RECOVER"
	case StateDead:
		return "DEAD"
	default:
		return "UNKNOWN"
	}
}

// Hit is the observable result of one resolved attack.
type Hit struct {
	AttackerID uint32
	TargetID   uint32
	Damage     int32
	Miss       bool
	Crit       bool
}

// AttackOptions tune one melee attack request.
type AttackOptions struct {
	TargetID  uint32
	Damage    int32 // base damage before rolls; 0 uses the default
	WindupMs  int   // 0 uses the default
	RecoverMs int   // 0 uses the default
}

const (
	defaultDamage    = 25
	defaultWindupMs  = 450
	defaultRecoverMs = 800
	missChance       = 0.08
	critChance       = 0.10
)

type npcCombat struct {
	hp, maxHP    int32
	state        State
	target       uint32
	pendingDmg   int32
	windupUntil  time.Time
	recoverUntil time.Time
}

// AnimFunc plays a one-shot combat animation on the entity.
// Injected by the wiring layer to avoid an import cycle with the tick stages.
type AnimFunc func(entityID uint32, name string)

// DeathFunc is invoked once when an entity's health reaches zero.
type DeathFunc func(entityID uint32)

// Runtime tracks combat state for all enrolled entities.
type Runtime struct {
	npcs        map[uint32]*npcCombat
	animFn      AnimFunc
	deathFn     DeathFunc
	hitObserver func(Hit)
}

// NewRuntime creates an empty combat runtime. Both callbacks may be nil.
func NewRuntime(animFn AnimFunc, deathFn DeathFunc) *Runtime {
	return &Runtime{
		npcs:    make(map[uint32]*npcCombat),
		animFn:  animFn,
		deathFn: deathFn,
	}
}

// SetHitObserver sets a callback observing resolved attacks (tests).
func (r *Runtime) SetHitObserver(fn func(Hit)) {
	r.hitObserver = fn
}

// EnsureNpc enrolls the entity with the given health pool. Idempotent;
// re-enrolling an existing entity keeps its current health.
func (r *Runtime) EnsureNpc(entityID uint32, maxHP int32) {
	if _, ok := r.npcs[entityID]; ok {
		return
	}
	if maxHP <= 0 {
		maxHP = 100
	}
	r.npcs[entityID] = &npcCombat{hp: maxHP, maxHP: maxHP, state: StateIdle}
}

// Remove drops the entity from combat tracking (despawn).
func (r *Runtime) Remove(entityID uint32) {
	delete(r.npcs, entityID)
}

// State returns the entity's combat stance.
func (r *Runtime) State(entityID uint32) State {
	c, ok := r.npcs[entityID]
	if !ok {
		return StateIdle
	}
	return c.state
}

// Health returns current and max health.
func (r *Runtime) Health(entityID uint32) (cur, max int32) {
	c, ok := r.npcs[entityID]
	if !ok {
		return 0, 0
	}
	return c.hp, c.maxHP
}

// RequestMeleeAttack starts a swing. Refused (false) while the attacker is
// mid-swing, recovering, dead, or not enrolled.
func (r *Runtime) RequestMeleeAttack(entityID uint32, opts AttackOptions, now time.Time) bool {
	c, ok := r.npcs[entityID]
	if !ok || c.state != StateIdle {
		return false
	}

	dmg := opts.Damage
	if dmg <= 0 {
		dmg = defaultDamage
	}
	windup := opts.WindupMs
	if windup <= 0 {
		windup = defaultWindupMs
	}

	c.state = StateWindup
	c.target = opts.TargetID
	c.pendingDmg = dmg
	c.windupUntil = now.Add(time.Duration(windup) * time.Millisecond)
	recover := opts.RecoverMs
	if recover <= 0 {
		recover = defaultRecoverMs
	}
	c.recoverUntil = c.windupUntil.Add(time.Duration(recover) * time.Millisecond)

	if r.animFn != nil {
		r.animFn(entityID, "T_ATTACK")
	}

	if IsDebugEnabled() {
		slog.Debug("melee attack started",
			"attackerID", entityID,
			"targetID", opts.TargetID,
			"damage", dmg)
	}
	return true
}

// Update resolves all pending swings and stance transitions for this frame.
func (r *Runtime) Update(now time.Time) {
	for id, c := range r.npcs {
		switch c.state {
		case StateWindup:
			if now.Before(c.windupUntil) {
				continue
			}
			r.resolveHit(id, c)
			c.state = StateRecover
		case StateRecover:
			if !now.Before(c.recoverUntil) {
				c.state = StateIdle
				c.target = 0
				c.pendingDmg = 0
			}
		}
	}
}

func (r *Runtime) resolveHit(attackerID uint32, c *npcCombat) {
	hit := Hit{AttackerID: attackerID, TargetID: c.target, Damage: c.pendingDmg}

	if rand.Float64() < missChance {
		hit.Miss = true
		hit.Damage = 0
	} else if rand.Float64() < critChance {
		hit.Crit = true
		hit.Damage *= 2
	}

	if !hit.Miss {
		if target, ok := r.npcs[c.target]; ok && target.state != StateDead {
			target.hp -= hit.Damage
			if target.hp <= 0 {
				target.hp = 0
				target.state = StateDead
				slog.Info("entity died in combat", "entityID", c.target, "killerID", attackerID)
				if r.deathFn != nil {
					r.deathFn(c.target)
				}
			}
		}
	}

	if r.hitObserver != nil {
		r.hitObserver(hit)
	}

	if IsDebugEnabled() {
		slog.Debug("melee hit resolved",
			"attackerID", hit.AttackerID,
			"targetID", hit.TargetID,
			"damage", hit.Damage,
			"miss", hit.Miss,
			"crit", hit.Crit)
	}
}
