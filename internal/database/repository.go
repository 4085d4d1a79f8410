package database

import (
	"context"

	"github.com/google/uuid"
)

// EncodingReader provides read-only access to cached face encodings
type EncodingReader interface {
	// Get retrieves an encoding by content hash and model, returns nil if not found
	Get(ctx context.Context, contentHash, model string) (*StoredEncoding, error)
	// Count returns the total number of encodings stored
	Count(ctx context.Context) (int, error)
	// List returns all encodings produced by model
	List(ctx context.Context, model string) ([]StoredEncoding, error)
}

// EncodingWriter provides write access to cached face encodings
type EncodingWriter interface {
	EncodingReader

	// Save stores an encoding, replacing an existing one with the same hash and model
	Save(ctx context.Context, enc StoredEncoding) error
	// Delete removes the encoding for a content hash and model
	Delete(ctx context.Context, contentHash, model string) error
}

// RunRepository stores chain orderings
type RunRepository interface {
	// SaveRun stores a run together with its entries
	SaveRun(ctx context.Context, run Run) error
	// GetRun retrieves a run by id, returns nil if not found
	GetRun(ctx context.Context, id uuid.UUID) (*Run, error)
	// ListRuns returns the most recent runs without entries, newest first
	ListRuns(ctx context.Context, limit int) ([]Run, error)
}
