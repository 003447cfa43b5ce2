package sim

import (
	"sort"
	"sync/atomic"

	"github.com/skarn/worldsim/internal/model"
)

// Registry owns all live entities in stable spawn order: by spawn id, falling
// back to script instance index, so script side effects are deterministic
// across runs with identical input.
type Registry struct {
	byID    map[uint32]*Entity
	ordered []*Entity
	nextID  atomic.Uint32
}

// NewRegistry creates an empty registry. Entity ids start above the range
// reserved for the manually-controlled character.
func NewRegistry() *Registry {
	r := &Registry{byID: make(map[uint32]*Entity)}
	r.nextID.Store(1000)
	return r
}

// Spawn creates an entity for the record at the given position.
func (r *Registry) Spawn(rec *model.NpcRecord, pos model.Vec3) *Entity {
	e := &Entity{
		ID:     r.nextID.Add(1),
		Record: rec,
		pos:    pos,
	}
	r.byID[e.ID] = e
	r.ordered = append(r.ordered, e)
	r.sortOrdered()
	return e
}

// Despawn disposes and removes the entity.
func (r *Registry) Despawn(entityID uint32) {
	e, ok := r.byID[entityID]
	if !ok {
		return
	}
	e.Dispose()
	delete(r.byID, entityID)
	for i, o := range r.ordered {
		if o.ID == entityID {
			r.ordered = append(r.ordered[:i], r.ordered[i+1:]...)
			break
		}
	}
}

// Get looks up an entity by id.
func (r *Registry) Get(entityID uint32) (*Entity, bool) {
	e, ok := r.byID[entityID]
	return e, ok
}

// BySymbol looks up an entity by its script symbol name.
func (r *Registry) BySymbol(symbol string) (*Entity, bool) {
	for _, e := range r.ordered {
		if e.Record != nil && e.Record.SymbolName == symbol {
			return e, true
		}
	}
	return nil, false
}

// Entities returns all live entities in spawn order. The slice is owned by
// the registry; callers must not mutate it.
func (r *Registry) Entities() []*Entity {
	return r.ordered
}

// Len returns the number of live entities.
func (r *Registry) Len() int {
	return len(r.byID)
}

func (r *Registry) sortOrdered() {
	sort.SliceStable(r.ordered, func(i, j int) bool {
		a, b := r.ordered[i].Record, r.ordered[j].Record
		if a == nil || b == nil {
			return r.ordered[i].ID < r.ordered[j].ID
		}
		if a.SpawnID != b.SpawnID && a.SpawnID != 0 && b.SpawnID != 0 {
			return a.SpawnID < b.SpawnID
		}
		return a.InstanceIndex < b.InstanceIndex
	})
}
