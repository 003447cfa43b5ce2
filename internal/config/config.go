package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/skarn/worldsim/internal/jump"
	"github.com/skarn/worldsim/internal/locomotion"
)

// Server holds all configuration for the world simulation server.
type Server struct {
	LogLevel string `yaml:"log_level"`

	// Simulation tick rate (frames per second).
	TickRateHz int `yaml:"tick_rate_hz"`

	// Data files
	ScriptsDir string `yaml:"scripts_dir"`
	DataDir    string `yaml:"data_dir"`

	// Database
	Database DatabaseConfig `yaml:"database"`
	// PersistIntervalSeconds between position checkpoints; 0 disables.
	PersistIntervalSeconds int `yaml:"persist_interval_seconds"`

	// Inspector websocket feed; empty disables.
	InspectorAddr string `yaml:"inspector_addr"`

	Sim Sim `yaml:"sim"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// Sim holds every simulation tuning knob.
type Sim struct {
	// DayLengthSeconds of real time per game day.
	DayLengthSeconds float64 `yaml:"day_length_seconds"`

	Jump       jump.Config       `yaml:"jump"`
	JumpPhases JumpPhases        `yaml:"jump_phases"`
	Locomotion locomotion.Config `yaml:"locomotion"`
	Motion     Motion            `yaml:"motion"`
	Behavior   Behavior          `yaml:"behavior"`
	Debug      Debug             `yaml:"debug"`
}

// JumpPhases are the jump animation phase timings.
type JumpPhases struct {
	ScanRange   float64 `yaml:"scan_range"`
	LowStandMs  int     `yaml:"low_stand_ms"`
	MidStandMs  int     `yaml:"mid_stand_ms"`
	HighStandMs int     `yaml:"high_stand_ms"`
	HangMs      int     `yaml:"hang_ms"`
}

// Motion tunes the manual-control motion stage.
type Motion struct {
	WalkSpeed     float64 `yaml:"walk_speed"`     // cm/s
	RunSpeed      float64 `yaml:"run_speed"`      // cm/s
	BackSpeed     float64 `yaml:"back_speed"`     // cm/s
	TurnSpeed     float64 `yaml:"turn_speed"`     // rad/s
	MaxLeanRoll   float64 `yaml:"max_lean_roll"`  // radians
	LeanSharpness float64 `yaml:"lean_sharpness"` // 1/s, exponential smoothing
	SubStepMs     int     `yaml:"sub_step_ms"`    // fixed integration sub-step
	MaxSubSteps   int     `yaml:"max_sub_steps"`  // per tick
	TurnGraceMs   int     `yaml:"turn_grace_ms"`  // turn-in-place window
}

// Behavior tunes the scripted-behavior loop.
type Behavior struct {
	LoopIntervalMs int `yaml:"loop_interval_ms"`
	ForceApplyMs   int `yaml:"force_apply_ms"`
}

// LoopInterval returns the loop interval as a duration.
func (b Behavior) LoopInterval() time.Duration {
	return time.Duration(b.LoopIntervalMs) * time.Millisecond
}

// ForceApply returns the forced-apply timeout as a duration.
func (b Behavior) ForceApply() time.Duration {
	return time.Duration(b.ForceApplyMs) * time.Millisecond
}

// Debug tunes the debug stage emission throttling.
type Debug struct {
	Verbose           bool `yaml:"verbose"`
	VerboseIntervalMs int  `yaml:"verbose_interval_ms"`
	IntervalMs        int  `yaml:"interval_ms"`
	FloorWarnMs       int  `yaml:"floor_warn_ms"`
}

// DefaultServer returns Server config with sensible defaults.
func DefaultServer() Server {
	return Server{
		LogLevel:               "info",
		TickRateHz:             60,
		ScriptsDir:             "scripts",
		DataDir:                "data",
		PersistIntervalSeconds: 60,
		InspectorAddr:          "127.0.0.1:8777",
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "worldsim",
			Password: "worldsim",
			DBName:   "worldsim",
			SSLMode:  "disable",
		},
		Sim: DefaultSim(),
	}
}

// DefaultSim returns the standard simulation tuning.
func DefaultSim() Sim {
	return Sim{
		DayLengthSeconds: 5400, // 90 real minutes per game day
		Jump:             jump.DefaultConfig(),
		JumpPhases: JumpPhases{
			ScanRange:   300,
			LowStandMs:  350,
			MidStandMs:  500,
			HighStandMs: 900,
			HangMs:      1200,
		},
		Locomotion: locomotion.DefaultConfig(),
		Motion: Motion{
			WalkSpeed:     150,
			RunSpeed:      350,
			BackSpeed:     100,
			TurnSpeed:     2.5,
			MaxLeanRoll:   0.18,
			LeanSharpness: 8,
			SubStepMs:     50,
			MaxSubSteps:   8,
			TurnGraceMs:   300,
		},
		Behavior: Behavior{
			LoopIntervalMs: 500,
			ForceApplyMs:   60000,
		},
		Debug: Debug{
			VerboseIntervalMs: 100,
			IntervalMs:        250,
			FloorWarnMs:       500,
		},
	}
}

// LoadServer loads server config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadServer(path string) (Server, error) {
	cfg := DefaultServer()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}
