// Package data loads the static world content from YAML: NPC definitions
// with their daily routines, the waynet graph, and animation metadata.
package data

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/skarn/worldsim/internal/model"
)

type routineDef struct {
	Start    string `yaml:"start"` // "HH:MM"
	Stop     string `yaml:"stop"`
	State    string `yaml:"state"`
	Waypoint string `yaml:"waypoint"`
}

type visualDef struct {
	Body    string `yaml:"body"`
	BodyTex int    `yaml:"body_tex"`
	Head    string `yaml:"head"`
	HeadTex int    `yaml:"head_tex"`
	Armor   string `yaml:"armor"`
	Model   string `yaml:"model"`
}

type npcDef struct {
	Symbol        string       `yaml:"symbol"`
	InstanceIndex int32        `yaml:"instance_index"`
	SpawnPoint    string       `yaml:"spawn_point"`
	Visual        visualDef    `yaml:"visual"`
	Routine       []routineDef `yaml:"routine"`
}

type npcFile struct {
	Npcs []npcDef `yaml:"npcs"`
}

// NpcTable holds all loaded NPC definitions keyed by script symbol.
type NpcTable struct {
	bySymbol map[string]*model.NpcRecord
	ordered  []*model.NpcRecord
}

// Get returns the record for a symbol, or nil.
func (t *NpcTable) Get(symbol string) *model.NpcRecord {
	return t.bySymbol[symbol]
}

// All returns the records in file order.
func (t *NpcTable) All() []*model.NpcRecord {
	return t.ordered
}

// Len returns the number of loaded definitions.
func (t *NpcTable) Len() int {
	return len(t.ordered)
}

// LoadNpcs reads npcs.yaml from the data directory.
func LoadNpcs(dataDir string) (*NpcTable, error) {
	path := filepath.Join(dataDir, "npcs.yaml")
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var file npcFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	table := &NpcTable{bySymbol: make(map[string]*model.NpcRecord, len(file.Npcs))}
	for i, def := range file.Npcs {
		if def.Symbol == "" {
			return nil, fmt.Errorf("%s: npc %d has no symbol", path, i)
		}
		rec, err := def.toRecord()
		if err != nil {
			return nil, fmt.Errorf("%s: npc %q: %w", path, def.Symbol, err)
		}
		if _, dup := table.bySymbol[rec.SymbolName]; dup {
			return nil, fmt.Errorf("%s: duplicate npc symbol %q", path, def.Symbol)
		}
		table.bySymbol[rec.SymbolName] = rec
		table.ordered = append(table.ordered, rec)
	}

	slog.Info("loaded NPC definitions", "count", table.Len(), "path", path)
	return table, nil
}

func (d npcDef) toRecord() (*model.NpcRecord, error) {
	rec := &model.NpcRecord{
		InstanceIndex: d.InstanceIndex,
		SymbolName:    d.Symbol,
		SpawnPoint:    d.SpawnPoint,
		Visual: model.VisualDescriptor{
			Body:      d.Visual.Body,
			BodyTex:   d.Visual.BodyTex,
			Head:      d.Visual.Head,
			HeadTex:   d.Visual.HeadTex,
			Armor:     d.Visual.Armor,
			ModelName: d.Visual.Model,
		},
	}
	if rec.Visual.ModelName == "" {
		rec.Visual.ModelName = "HUMANS"
	}

	for _, r := range d.Routine {
		start, err := parseTimeOfDay(r.Start)
		if err != nil {
			return nil, fmt.Errorf("routine start %q: %w", r.Start, err)
		}
		stop, err := parseTimeOfDay(r.Stop)
		if err != nil {
			return nil, fmt.Errorf("routine stop %q: %w", r.Stop, err)
		}
		if r.State == "" {
			return nil, fmt.Errorf("routine %s-%s has no state", r.Start, r.Stop)
		}
		rec.Routine = append(rec.Routine, model.RoutineEntry{
			Start:    start,
			Stop:     stop,
			State:    r.State,
			Waypoint: r.Waypoint,
		})
	}
	return rec, nil
}

func parseTimeOfDay(s string) (model.TimeOfDay, error) {
	var t model.TimeOfDay
	if _, err := fmt.Sscanf(s, "%d:%d", &t.Hour, &t.Minute); err != nil {
		return t, fmt.Errorf("expected HH:MM: %w", err)
	}
	if t.Hour < 0 || t.Hour > 23 || t.Minute < 0 || t.Minute > 59 {
		return t, fmt.Errorf("out of range: %02d:%02d", t.Hour, t.Minute)
	}
	return t, nil
}
