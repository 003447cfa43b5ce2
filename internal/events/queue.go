// Package events is the per-entity behavior-job queue: a best-effort queue
// of in-progress and pending one-shot actions (attacks, scripted animations,
// waypoint moves). It progresses independently of the scripted-behavior
// loop, which only inspects it to avoid interrupting in-flight actions.
package events

import (
	"log/slog"
	"sync/atomic"
	"time"
)

// Kind classifies a behavior job.
type Kind int32

const (
	// KindMove - walk to a waypoint or freepoint
	KindMove Kind = iota
	// KindAttack - one melee attack swing
	KindAttack
	// KindPlayAnim - one-shot scripted animation
	KindPlayAnim
	// KindWait - scripted pause
	KindWait
)

// String returns human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindMove:
		return "MOVE"
	case KindAttack:
		return "ATTACK"
	case KindPlayAnim:
		return "PLAY_ANIM"
	case KindWait:
		return "WAIT"
	default:
		return "UNKNOWN"
	}
}

// Job is one queued behavior action. Step is invoked once per queue tick
// while the job is active and reports completion; nil Step jobs complete
// immediately.
type Job struct {
	ID     uint64
	Kind   Kind
	Target string // waypoint/freepoint/victim name, informational
	Step   func(now time.Time) bool
	Cancel func()
}

type entityQueue struct {
	active       *Job
	queued       []*Job
	clearPending bool
}

// MoveStateFunc reports whether the entity has an in-flight waypoint move.
// Injected by the wiring layer to avoid an import cycle with the mover.
type MoveStateFunc func(entityID uint32) bool

// Manager owns the behavior-job queues of all entities.
type Manager struct {
	queues      map[uint32]*entityQueue
	moveInFly   MoveStateFunc
	jobIDSource atomic.Uint64
}

// NewManager creates an empty job manager. moveInFlight may be nil.
func NewManager(moveInFlight MoveStateFunc) *Manager {
	return &Manager{
		queues:    make(map[uint32]*entityQueue),
		moveInFly: moveInFlight,
	}
}

// NextJobID returns a unique job id.
func (m *Manager) NextJobID() uint64 {
	return m.jobIDSource.Add(1)
}

func (m *Manager) queue(entityID uint32) *entityQueue {
	q, ok := m.queues[entityID]
	if !ok {
		q = &entityQueue{}
		m.queues[entityID] = q
	}
	return q
}

// Push appends a job for the entity.
func (m *Manager) Push(entityID uint32, job *Job) {
	if job.ID == 0 {
		job.ID = m.NextJobID()
	}
	m.queue(entityID).queued = append(m.queue(entityID).queued, job)
}

// ActiveJob returns the currently running job, if any.
func (m *Manager) ActiveJob(entityID uint32) (*Job, bool) {
	q, ok := m.queues[entityID]
	if !ok || q.active == nil {
		return nil, false
	}
	return q.active, true
}

// QueuedCount returns the number of jobs waiting behind the active one.
func (m *Manager) QueuedCount(entityID uint32) int {
	q, ok := m.queues[entityID]
	if !ok {
		return 0
	}
	return len(q.queued)
}

// RequestClear signals that all jobs of the entity should be dropped at the
// next queue tick. Until processed the queue still counts as busy.
func (m *Manager) RequestClear(entityID uint32) {
	m.queue(entityID).clearPending = true
}

// ClearRequested reports a not-yet-processed clear request.
func (m *Manager) ClearRequested(entityID uint32) bool {
	q, ok := m.queues[entityID]
	return ok && q.clearPending
}

// Busy reports whether anything blocks a routine change for this entity:
// an active job, queued items, an in-flight waypoint move, or a pending
// clear request.
func (m *Manager) Busy(entityID uint32) bool {
	q, ok := m.queues[entityID]
	if ok && (q.active != nil || len(q.queued) > 0 || q.clearPending) {
		return true
	}
	if m.moveInFly != nil && m.moveInFly(entityID) {
		return true
	}
	return false
}

// Tick progresses one entity's queue: processes a pending clear, promotes
// the next queued job, and steps the active job to completion.
func (m *Manager) Tick(entityID uint32, now time.Time) {
	q, ok := m.queues[entityID]
	if !ok {
		return
	}

	if q.clearPending {
		m.drain(entityID, q)
		return
	}

	if q.active == nil && len(q.queued) > 0 {
		q.active = q.queued[0]
		q.queued = q.queued[1:]

		if IsDebugEnabled() {
			slog.Debug("behavior job started",
				"entityID", entityID,
				"jobID", q.active.ID,
				"kind", q.active.Kind,
				"target", q.active.Target)
		}
	}

	if q.active == nil {
		return
	}

	done := true
	if q.active.Step != nil {
		done = q.active.Step(now)
	}
	if done {
		if IsDebugEnabled() {
			slog.Debug("behavior job finished",
				"entityID", entityID,
				"jobID", q.active.ID,
				"kind", q.active.Kind)
		}
		q.active = nil
	}
}

// Remove drops the entity's queue wholesale (despawn).
func (m *Manager) Remove(entityID uint32) {
	if q, ok := m.queues[entityID]; ok {
		m.drain(entityID, q)
	}
	delete(m.queues, entityID)
}

func (m *Manager) drain(entityID uint32, q *entityQueue) {
	if q.active != nil && q.active.Cancel != nil {
		q.active.Cancel()
	}
	for _, job := range q.queued {
		if job.Cancel != nil {
			job.Cancel()
		}
	}
	dropped := len(q.queued)
	if q.active != nil {
		dropped++
	}
	q.active = nil
	q.queued = nil
	q.clearPending = false

	if dropped > 0 && IsDebugEnabled() {
		slog.Debug("behavior queue cleared", "entityID", entityID, "dropped", dropped)
	}
}
