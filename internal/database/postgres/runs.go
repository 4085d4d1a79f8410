package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/kozaktomas/face-morph/internal/chain"
	"github.com/kozaktomas/face-morph/internal/database"
	"github.com/lib/pq"
)

// RunRepository provides PostgreSQL-backed chain run history
type RunRepository struct {
	pool *Pool
}

// NewRunRepository creates a new PostgreSQL run repository
func NewRunRepository(pool *Pool) *RunRepository {
	return &RunRepository{pool: pool}
}

var _ database.RunRepository = (*RunRepository)(nil)

// SaveRun stores a run together with its entries in one transaction
func (r *RunRepository) SaveRun(ctx context.Context, run database.Run) error {
	tx, err := r.pool.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO chain_runs (id, reference, age_weight) VALUES ($1, $2, $3)",
		run.ID, run.Reference, run.AgeWeight)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	if len(run.Entries) > 0 {
		ids := make([]string, len(run.Entries))
		distances := make([]float64, len(run.Entries))
		for i, e := range run.Entries {
			ids[i] = e.ID
			distances[i] = e.Distance
		}

		query := `
			INSERT INTO chain_run_entries (run_id, position, photo_id, distance)
			SELECT $1, t.ord - 1, t.photo_id, t.distance
			FROM unnest($2::text[], $3::float8[]) WITH ORDINALITY AS t(photo_id, distance, ord)
		`
		if _, err := tx.ExecContext(ctx, query, run.ID, pq.Array(ids), pq.Array(distances)); err != nil {
			return fmt.Errorf("insert run entries: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

// GetRun retrieves a run with its entries, returns nil if not found
func (r *RunRepository) GetRun(ctx context.Context, id uuid.UUID) (*database.Run, error) {
	var run database.Run
	err := r.pool.db.QueryRowContext(ctx,
		"SELECT id, reference, age_weight, created_at FROM chain_runs WHERE id = $1", id).
		Scan(&run.ID, &run.Reference, &run.AgeWeight, &run.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query run: %w", err)
	}

	rows, err := r.pool.db.QueryContext(ctx,
		"SELECT photo_id, distance FROM chain_run_entries WHERE run_id = $1 ORDER BY position", id)
	if err != nil {
		return nil, fmt.Errorf("query run entries: %w", err)
	}
	defer rows.Close()

	run.Entries = []chain.Entry{}
	for rows.Next() {
		var e chain.Entry
		if err := rows.Scan(&e.ID, &e.Distance); err != nil {
			return nil, fmt.Errorf("scan run entry: %w", err)
		}
		run.Entries = append(run.Entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run entries: %w", err)
	}
	return &run, nil
}

// ListRuns returns the most recent runs without entries, newest first
func (r *RunRepository) ListRuns(ctx context.Context, limit int) ([]database.Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.pool.db.QueryContext(ctx,
		"SELECT id, reference, age_weight, created_at FROM chain_runs ORDER BY created_at DESC, id LIMIT $1", limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []database.Run
	for rows.Next() {
		var run database.Run
		if err := rows.Scan(&run.ID, &run.Reference, &run.AgeWeight, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}
