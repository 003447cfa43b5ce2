package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SpawnRow is one persistent spawn record.
type SpawnRow struct {
	SpawnID       int64
	SymbolName    string
	InstanceIndex int32
	SpawnPoint    string
	Enabled       bool
}

// SpawnRepository handles spawn CRUD operations.
type SpawnRepository struct {
	pool *pgxpool.Pool
}

// NewSpawnRepository creates a new spawn repository.
func NewSpawnRepository(pool *pgxpool.Pool) *SpawnRepository {
	return &SpawnRepository{pool: pool}
}

// LoadEnabled loads all enabled spawns in spawn_id order.
func (r *SpawnRepository) LoadEnabled(ctx context.Context) ([]SpawnRow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT spawn_id, symbol_name, instance_index, spawn_point, enabled
		FROM spawns
		WHERE enabled
		ORDER BY spawn_id`)
	if err != nil {
		return nil, fmt.Errorf("loading spawns: %w", err)
	}
	defer rows.Close()

	spawns := make([]SpawnRow, 0, 64)
	for rows.Next() {
		var s SpawnRow
		if err := rows.Scan(&s.SpawnID, &s.SymbolName, &s.InstanceIndex, &s.SpawnPoint, &s.Enabled); err != nil {
			return nil, fmt.Errorf("scanning spawn row: %w", err)
		}
		spawns = append(spawns, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating spawn rows: %w", err)
	}
	return spawns, nil
}

// Insert creates a spawn record and returns its id.
func (r *SpawnRepository) Insert(ctx context.Context, s SpawnRow) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO spawns (symbol_name, instance_index, spawn_point, enabled)
		VALUES ($1, $2, $3, $4)
		RETURNING spawn_id`,
		s.SymbolName, s.InstanceIndex, s.SpawnPoint, s.Enabled,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting spawn %q: %w", s.SymbolName, err)
	}
	return id, nil
}

// LoadByID loads one spawn. Returns nil, nil when absent.
func (r *SpawnRepository) LoadByID(ctx context.Context, spawnID int64) (*SpawnRow, error) {
	var s SpawnRow
	err := r.pool.QueryRow(ctx, `
		SELECT spawn_id, symbol_name, instance_index, spawn_point, enabled
		FROM spawns
		WHERE spawn_id = $1`, spawnID,
	).Scan(&s.SpawnID, &s.SymbolName, &s.InstanceIndex, &s.SpawnPoint, &s.Enabled)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying spawn %d: %w", spawnID, err)
	}
	return &s, nil
}

// SetEnabled toggles a spawn.
func (r *SpawnRepository) SetEnabled(ctx context.Context, spawnID int64, enabled bool) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE spawns SET enabled = $2 WHERE spawn_id = $1`, spawnID, enabled)
	if err != nil {
		return fmt.Errorf("toggling spawn %d: %w", spawnID, err)
	}
	return nil
}
