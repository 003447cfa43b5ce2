package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/skarn/worldsim/internal/combat"
	"github.com/skarn/worldsim/internal/config"
	"github.com/skarn/worldsim/internal/data"
	"github.com/skarn/worldsim/internal/db"
	"github.com/skarn/worldsim/internal/events"
	"github.com/skarn/worldsim/internal/inspector"
	"github.com/skarn/worldsim/internal/jump"
	"github.com/skarn/worldsim/internal/locomotion"
	"github.com/skarn/worldsim/internal/model"
	"github.com/skarn/worldsim/internal/physics"
	"github.com/skarn/worldsim/internal/runtime"
	"github.com/skarn/worldsim/internal/script"
	"github.com/skarn/worldsim/internal/sim"
	"github.com/skarn/worldsim/internal/waynet"
)

const ConfigPath = "config/worldserver.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgPath := ConfigPath
	if p := os.Getenv("WORLDSIM_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadServer(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := parseLogLevel(cfg.LogLevel)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))

	debug := logLevel == slog.LevelDebug
	jump.EnableDebugLogging(debug)
	locomotion.EnableDebugLogging(debug)
	events.EnableDebugLogging(debug)
	waynet.EnableDebugLogging(debug)
	combat.EnableDebugLogging(debug)

	slog.Info("worldsim server starting", "log_level", cfg.LogLevel, "tick_rate", cfg.TickRateHz)

	// Static world content.
	dataDir := data.DataDirOrDefault(cfg.DataDir)
	net, err := data.LoadWaynet(dataDir)
	if err != nil {
		return fmt.Errorf("loading waynet: %w", err)
	}
	npcs, err := data.LoadNpcs(dataDir)
	if err != nil {
		return fmt.Errorf("loading npcs: %w", err)
	}
	anims, err := data.LoadAnimations(dataDir)
	if err != nil {
		return fmt.Errorf("loading animations: %w", err)
	}

	// Persistence is optional: without a database host the world runs
	// transient.
	var (
		database  *db.DB
		spawnRepo *db.SpawnRepository
		posRepo   *db.PositionRepository
	)
	if cfg.Database.Host != "" {
		database, err = db.New(ctx, cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer database.Close()

		if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		slog.Info("database connected, migrations applied")

		spawnRepo = db.NewSpawnRepository(database.Pool())
		posRepo = db.NewPositionRepository(database.Pool())
	} else {
		slog.Warn("no database configured, world state is transient")
	}

	// Scripted behavior.
	interp := script.NewLuaInterpreter()
	clock := model.NewDayClock(cfg.Sim.DayLengthSeconds, model.TimeOfDay{Hour: 8})

	// mu guards every simulation access outside the tick goroutine.
	var mu sync.Mutex

	var feed *inspector.Server

	simulation := sim.New(sim.Deps{
		Cfg:      cfg.Sim,
		Registry: sim.NewRegistry(),
		Net:      net,
		Interp:   interp,
		KCC:      physics.NewFlatGround(0),
		Resolver: anims,
		Clock:    clock,
		Snapshot: func(snap runtime.DebugSnapshot) {
			if feed != nil {
				feed.Publish(snap)
			}
		},
	})

	script.RegisterBuiltins(interp, simulation)
	if err := interp.LoadDir(cfg.ScriptsDir); err != nil {
		slog.Warn("no behavior scripts loaded", "dir", cfg.ScriptsDir, "err", err)
	}

	if err := spawnWorld(ctx, simulation, npcs, spawnRepo, posRepo); err != nil {
		return fmt.Errorf("spawning world: %w", err)
	}

	if cfg.InspectorAddr != "" {
		feed = inspector.NewServer(cfg.InspectorAddr, func(cmd inspector.Command) {
			mu.Lock()
			defer mu.Unlock()
			switch cmd.Op {
			case "debug":
				simulation.SetDebugged(cmd.EntityID)
			case "teleport":
				simulation.RequestTeleport(cmd.EntityID, cmd.Waypoint)
			case "clock":
				simulation.SetTimeOfDay(model.TimeOfDay{Hour: cmd.Hour, Minute: cmd.Minute})
			default:
				slog.Warn("unknown inspector op", "op", cmd.Op)
			}
		})
	}

	g, gctx := errgroup.WithContext(ctx)

	// Fixed-rate tick driver.
	g.Go(func() error {
		rate := cfg.TickRateHz
		if rate <= 0 {
			rate = 60
		}
		ticker := time.NewTicker(time.Second / time.Duration(rate))
		defer ticker.Stop()

		slog.Info("tick loop started", "rate_hz", rate)
		last := time.Now()
		for {
			select {
			case <-gctx.Done():
				return nil
			case now := <-ticker.C:
				dt := now.Sub(last).Seconds()
				last = now
				// A long stall (debugger, GC pause) must not turn into one
				// giant integration step.
				if dt > 0.25 {
					dt = 0.25
				}
				mu.Lock()
				simulation.Tick(now, dt)
				mu.Unlock()
			}
		}
	})

	// Inspector feed.
	if feed != nil {
		g.Go(func() error {
			return feed.Run(gctx)
		})
	}

	// Position checkpoints.
	if posRepo != nil && cfg.PersistIntervalSeconds > 0 {
		checkpointer := db.NewCheckpointer(posRepo, func() []db.PositionRow {
			mu.Lock()
			defer mu.Unlock()
			return collectPositions(simulation)
		}, time.Duration(cfg.PersistIntervalSeconds)*time.Second)
		g.Go(func() error {
			return checkpointer.Run(gctx)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("worldsim server stopped")
	return nil
}

// spawnWorld populates the simulation: persistent spawn rows first (with
// checkpointed positions restored), then first-boot inserts for table
// entries that have no row yet. Without a database everything spawns
// transient.
func spawnWorld(ctx context.Context, simulation *sim.Simulation, npcs *data.NpcTable, spawnRepo *db.SpawnRepository, posRepo *db.PositionRepository) error {
	if spawnRepo == nil {
		for _, rec := range npcs.All() {
			simulation.Spawn(rec)
		}
		return nil
	}

	rows, err := spawnRepo.LoadEnabled(ctx)
	if err != nil {
		return err
	}
	positions, err := posRepo.LoadAll(ctx)
	if err != nil {
		return err
	}

	spawned := make(map[string]bool, len(rows))
	for _, row := range rows {
		rec := npcs.Get(row.SymbolName)
		if rec == nil {
			slog.Warn("spawn row without npc definition", "spawnID", row.SpawnID, "symbol", row.SymbolName)
			continue
		}
		clone := *rec
		clone.SpawnID = row.SpawnID
		if row.SpawnPoint != "" {
			clone.SpawnPoint = row.SpawnPoint
		}
		e := simulation.Spawn(&clone)
		if p, ok := positions[row.SpawnID]; ok {
			e.SetPosition(p.Pos)
			e.SetHeading(p.Heading)
		}
		spawned[row.SymbolName] = true
	}

	for _, rec := range npcs.All() {
		if spawned[rec.SymbolName] {
			continue
		}
		id, err := spawnRepo.Insert(ctx, db.SpawnRow{
			SymbolName:    rec.SymbolName,
			InstanceIndex: rec.InstanceIndex,
			SpawnPoint:    rec.SpawnPoint,
			Enabled:       true,
		})
		if err != nil {
			return err
		}
		clone := *rec
		clone.SpawnID = id
		simulation.Spawn(&clone)
	}
	return nil
}

// collectPositions snapshots the positions of all persistent entities.
func collectPositions(simulation *sim.Simulation) []db.PositionRow {
	entities := simulation.Entities()
	rows := make([]db.PositionRow, 0, len(entities))
	for _, e := range entities {
		if e.Record == nil || e.Record.SpawnID == 0 {
			continue
		}
		rows = append(rows, db.PositionRow{
			SpawnID: e.Record.SpawnID,
			Pos:     e.Position(),
			Heading: e.Heading(),
		})
	}
	return rows
}

// parseLogLevel converts string log level to slog.Level.
// Supported: debug, info, warn, error. Defaults to info.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
