package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skarn/worldsim/internal/model"
)

// PositionRow is one checkpointed NPC position.
type PositionRow struct {
	SpawnID int64
	Pos     model.Vec3
	Heading float64
	SavedAt time.Time
}

// PositionRepository handles NPC position checkpoints.
type PositionRepository struct {
	pool *pgxpool.Pool
}

// NewPositionRepository creates a new position repository.
func NewPositionRepository(pool *pgxpool.Pool) *PositionRepository {
	return &PositionRepository{pool: pool}
}

// LoadAll loads every checkpointed position keyed by spawn id.
func (r *PositionRepository) LoadAll(ctx context.Context) (map[int64]PositionRow, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT spawn_id, x, y, z, heading, saved_at FROM npc_positions`)
	if err != nil {
		return nil, fmt.Errorf("loading positions: %w", err)
	}
	defer rows.Close()

	positions := make(map[int64]PositionRow, 64)
	for rows.Next() {
		var p PositionRow
		if err := rows.Scan(&p.SpawnID, &p.Pos.X, &p.Pos.Y, &p.Pos.Z, &p.Heading, &p.SavedAt); err != nil {
			return nil, fmt.Errorf("scanning position row: %w", err)
		}
		positions[p.SpawnID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating position rows: %w", err)
	}
	return positions, nil
}

// SaveAll upserts a batch of position checkpoints in one transaction.
func (r *PositionRepository) SaveAll(ctx context.Context, batch []PositionRow) error {
	if len(batch) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin position checkpoint: %w", err)
	}
	// Rollback after a successful commit is a no-op.
	defer func() { _ = tx.Rollback(ctx) }()

	for _, p := range batch {
		_, err := tx.Exec(ctx, `
			INSERT INTO npc_positions (spawn_id, x, y, z, heading, saved_at)
			VALUES ($1, $2, $3, $4, $5, now())
			ON CONFLICT (spawn_id) DO UPDATE
			SET x = EXCLUDED.x, y = EXCLUDED.y, z = EXCLUDED.z,
			    heading = EXCLUDED.heading, saved_at = now()`,
			p.SpawnID, p.Pos.X, p.Pos.Y, p.Pos.Z, p.Heading)
		if err != nil {
			return fmt.Errorf("upserting position for spawn %d: %w", p.SpawnID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit position checkpoint: %w", err)
	}
	return nil
}

// Delete drops the checkpoint of one spawn.
func (r *PositionRepository) Delete(ctx context.Context, spawnID int64) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM npc_positions WHERE spawn_id = $1`, spawnID)
	if err != nil {
		return fmt.Errorf("deleting position for spawn %d: %w", spawnID, err)
	}
	return nil
}
