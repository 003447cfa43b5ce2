package model

// VisualDescriptor describes the rendered appearance of an NPC.
// Consumed by the external asset/mesh pipeline; opaque to the simulation.
type VisualDescriptor struct {
	Body      string
	BodyTex   int
	Head      string
	HeadTex   int
	Armor     string
	ModelName string // skeleton/animation set key, e.g. "HUMANS"
}

// NpcRecord is the static identity of a spawned NPC: script symbol, spawn
// point, daily routine table and visual descriptor. Created on spawn,
// destroyed on despawn; owned by the entity registry.
type NpcRecord struct {
	InstanceIndex int32  // script symbol index of the NPC instance
	SymbolName    string // script symbol name, e.g. "PC_THIEF"
	SpawnID       int64  // persistent spawn row id; 0 for transient spawns
	SpawnPoint    string // waypoint name the NPC spawns at
	Routine       []RoutineEntry
	Visual        VisualDescriptor
}

// RoutineAt returns the routine entry active at time t, if any.
func (n *NpcRecord) RoutineAt(t TimeOfDay) (RoutineEntry, bool) {
	return ActiveRoutine(n.Routine, t)
}
