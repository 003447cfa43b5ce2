package runtime

import (
	"github.com/skarn/worldsim/internal/jump"
	"github.com/skarn/worldsim/internal/locomotion"
)

// Store owns the runtime fields of all live entities, keyed by entity id.
// Field lifetime matches the entity: created lazily on first access, cleared
// wholesale on despawn. No cross-entity sharing.
//
// Single-threaded by design: all access happens inside the tick pipeline.
type Store struct {
	fields  map[uint32]*Fields
	lcfg    locomotion.Config
	machine func(entityID uint32) *jump.Machine
}

// NewStore creates an empty store. machineFactory builds the per-entity jump
// animation machine with its hooks bound; nil leaves JumpMachine unset.
func NewStore(lcfg locomotion.Config, machineFactory func(entityID uint32) *jump.Machine) *Store {
	return &Store{
		fields:  make(map[uint32]*Fields),
		lcfg:    lcfg,
		machine: machineFactory,
	}
}

// Fields returns the runtime fields of the entity, creating them on first use.
func (s *Store) Fields(entityID uint32) *Fields {
	f, ok := s.fields[entityID]
	if !ok {
		f = &Fields{Locomotion: locomotion.NewResolver(s.lcfg)}
		if s.machine != nil {
			f.JumpMachine = s.machine(entityID)
		}
		s.fields[entityID] = f
	}
	return f
}

// Peek returns the fields without creating them.
func (s *Store) Peek(entityID uint32) (*Fields, bool) {
	f, ok := s.fields[entityID]
	return f, ok
}

// Remove clears the entity's fields wholesale (despawn).
func (s *Store) Remove(entityID uint32) {
	delete(s.fields, entityID)
}

// Len returns the number of entities with live fields.
func (s *Store) Len() int {
	return len(s.fields)
}
