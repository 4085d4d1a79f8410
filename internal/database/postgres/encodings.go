package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kozaktomas/face-morph/internal/database"
	"github.com/pgvector/pgvector-go"
)

// EncodingRepository provides PostgreSQL-backed encoding storage
type EncodingRepository struct {
	pool *Pool
}

// NewEncodingRepository creates a new PostgreSQL encoding repository
func NewEncodingRepository(pool *Pool) *EncodingRepository {
	return &EncodingRepository{pool: pool}
}

var _ database.EncodingWriter = (*EncodingRepository)(nil)

// Get retrieves an encoding by content hash and model, returns nil if not found
func (r *EncodingRepository) Get(ctx context.Context, contentHash, model string) (*database.StoredEncoding, error) {
	query := `
		SELECT content_hash, model, file_name, embedding, dim, created_at
		FROM encodings
		WHERE content_hash = $1 AND model = $2
	`

	enc, err := scanEncoding(r.pool.db.QueryRowContext(ctx, query, contentHash, model))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query encoding: %w", err)
	}
	return enc, nil
}

// Count returns the total number of encodings stored
func (r *EncodingRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM encodings").Scan(&count); err != nil {
		return 0, fmt.Errorf("count encodings: %w", err)
	}
	return count, nil
}

// List returns all encodings produced by model, ordered by file name
func (r *EncodingRepository) List(ctx context.Context, model string) ([]database.StoredEncoding, error) {
	query := `
		SELECT content_hash, model, file_name, embedding, dim, created_at
		FROM encodings
		WHERE model = $1
		ORDER BY file_name, content_hash
	`

	rows, err := r.pool.db.QueryContext(ctx, query, model)
	if err != nil {
		return nil, fmt.Errorf("query encodings: %w", err)
	}
	defer rows.Close()

	var out []database.StoredEncoding
	for rows.Next() {
		enc, err := scanEncoding(rows)
		if err != nil {
			return nil, fmt.Errorf("scan encoding: %w", err)
		}
		out = append(out, *enc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate encodings: %w", err)
	}
	return out, nil
}

// Save stores an encoding, replacing an existing one with the same hash and model
func (r *EncodingRepository) Save(ctx context.Context, enc database.StoredEncoding) error {
	query := `
		INSERT INTO encodings (content_hash, model, file_name, embedding, dim)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (content_hash, model) DO UPDATE SET
			file_name = EXCLUDED.file_name,
			embedding = EXCLUDED.embedding,
			dim = EXCLUDED.dim
	`

	dim := enc.Dim
	if dim == 0 {
		dim = len(enc.Embedding)
	}

	_, err := r.pool.db.ExecContext(ctx, query, enc.ContentHash, enc.Model, enc.FileName, pgvector.NewVector(enc.Embedding), dim)
	if err != nil {
		return fmt.Errorf("save encoding: %w", err)
	}
	return nil
}

// Delete removes the encoding for a content hash and model
func (r *EncodingRepository) Delete(ctx context.Context, contentHash, model string) error {
	_, err := r.pool.db.ExecContext(ctx, "DELETE FROM encodings WHERE content_hash = $1 AND model = $2", contentHash, model)
	if err != nil {
		return fmt.Errorf("delete encoding: %w", err)
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEncoding(row rowScanner) (*database.StoredEncoding, error) {
	var enc database.StoredEncoding
	var vec pgvector.Vector
	if err := row.Scan(&enc.ContentHash, &enc.Model, &enc.FileName, &vec, &enc.Dim, &enc.CreatedAt); err != nil {
		return nil, err
	}
	enc.Embedding = vec.Slice()
	return &enc, nil
}
