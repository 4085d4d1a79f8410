// Package mock provides in-memory implementations of database interfaces for testing.
package mock

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/kozaktomas/face-morph/internal/database"
)

type encodingKey struct {
	hash  string
	model string
}

// EncodingStore is an in-memory database.EncodingWriter
type EncodingStore struct {
	mu        sync.RWMutex
	encodings map[encodingKey]database.StoredEncoding

	// Error injection
	GetError    error
	CountError  error
	ListError   error
	SaveError   error
	DeleteError error

	// SaveCalls counts successful saves
	SaveCalls int
}

var _ database.EncodingWriter = (*EncodingStore)(nil)

// NewEncodingStore creates an empty in-memory encoding store
func NewEncodingStore() *EncodingStore {
	return &EncodingStore{encodings: make(map[encodingKey]database.StoredEncoding)}
}

// Get retrieves an encoding by content hash and model
func (m *EncodingStore) Get(_ context.Context, contentHash, model string) (*database.StoredEncoding, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	enc, ok := m.encodings[encodingKey{contentHash, model}]
	if !ok {
		return nil, nil
	}
	return &enc, nil
}

// Count returns the number of stored encodings
func (m *EncodingStore) Count(_ context.Context) (int, error) {
	if m.CountError != nil {
		return 0, m.CountError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.encodings), nil
}

// List returns encodings for model ordered by file name
func (m *EncodingStore) List(_ context.Context, model string) ([]database.StoredEncoding, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []database.StoredEncoding
	for k, enc := range m.encodings {
		if k.model == model {
			out = append(out, enc)
		}
	}
	slices.SortFunc(out, func(a, b database.StoredEncoding) int {
		return cmp.Or(cmp.Compare(a.FileName, b.FileName), cmp.Compare(a.ContentHash, b.ContentHash))
	})
	return out, nil
}

// Save stores or replaces an encoding
func (m *EncodingStore) Save(_ context.Context, enc database.StoredEncoding) error {
	if m.SaveError != nil {
		return m.SaveError
	}
	if enc.Dim == 0 {
		enc.Dim = len(enc.Embedding)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.encodings[encodingKey{enc.ContentHash, enc.Model}] = enc
	m.SaveCalls++
	return nil
}

// Delete removes an encoding
func (m *EncodingStore) Delete(_ context.Context, contentHash, model string) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.encodings, encodingKey{contentHash, model})
	return nil
}

// RunStore is an in-memory database.RunRepository
type RunStore struct {
	mu    sync.RWMutex
	runs  map[uuid.UUID]database.Run
	order []uuid.UUID

	// Error injection
	SaveError error
	GetError  error
	ListError error
}

var _ database.RunRepository = (*RunStore)(nil)

// NewRunStore creates an empty in-memory run store
func NewRunStore() *RunStore {
	return &RunStore{runs: make(map[uuid.UUID]database.Run)}
}

// SaveRun stores a run
func (m *RunStore) SaveRun(_ context.Context, run database.Run) error {
	if m.SaveError != nil {
		return m.SaveError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.runs[run.ID]; !ok {
		m.order = append(m.order, run.ID)
	}
	run.Entries = slices.Clone(run.Entries)
	m.runs[run.ID] = run
	return nil
}

// GetRun retrieves a run by id
func (m *RunStore) GetRun(_ context.Context, id uuid.UUID) (*database.Run, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	run, ok := m.runs[id]
	if !ok {
		return nil, nil
	}
	return &run, nil
}

// ListRuns returns runs newest first, without entries
func (m *RunStore) ListRuns(_ context.Context, limit int) ([]database.Run, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []database.Run
	for i := len(m.order) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		run := m.runs[m.order[i]]
		run.Entries = nil
		out = append(out, run)
	}
	return out, nil
}
