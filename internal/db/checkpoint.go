package db

import (
	"context"
	"log/slog"
	"time"
)

// PositionSnapshotFunc collects the current positions of all persistent
// entities. Called from the checkpointer goroutine; implementations must
// read through whatever synchronization the tick loop provides.
type PositionSnapshotFunc func() []PositionRow

// Checkpointer periodically saves NPC positions so a restart resumes the
// world roughly where it left off. A final checkpoint runs on shutdown.
type Checkpointer struct {
	repo     *PositionRepository
	snapshot PositionSnapshotFunc
	interval time.Duration
}

// NewCheckpointer creates a checkpointer. interval <= 0 disables the
// periodic save; only the shutdown checkpoint remains.
func NewCheckpointer(repo *PositionRepository, snapshot PositionSnapshotFunc, interval time.Duration) *Checkpointer {
	return &Checkpointer{repo: repo, snapshot: snapshot, interval: interval}
}

// Run checkpoints until the context is cancelled, then saves once more.
func (c *Checkpointer) Run(ctx context.Context) error {
	if c.interval > 0 {
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return c.final()
			case <-ticker.C:
				c.save(ctx)
			}
		}
	}

	<-ctx.Done()
	return c.final()
}

func (c *Checkpointer) save(ctx context.Context) {
	batch := c.snapshot()
	if len(batch) == 0 {
		return
	}
	if err := c.repo.SaveAll(ctx, batch); err != nil {
		slog.Error("position checkpoint failed", "count", len(batch), "err", err)
		return
	}
	slog.Debug("positions checkpointed", "count", len(batch))
}

// final runs the shutdown checkpoint on a fresh context; the run context
// is already cancelled.
func (c *Checkpointer) final() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	batch := c.snapshot()
	if len(batch) == 0 {
		return nil
	}
	if err := c.repo.SaveAll(ctx, batch); err != nil {
		return err
	}
	slog.Info("final position checkpoint saved", "count", len(batch))
	return nil
}
