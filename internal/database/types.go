package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/kozaktomas/face-morph/internal/chain"
)

// StoredEncoding represents a face encoding cached in the database.
// Encodings are keyed by image content hash and model, so a renamed file
// is still a cache hit and a re-cropped one is not.
type StoredEncoding struct {
	ContentHash string // hex sha256 of the image bytes
	Model       string
	FileName    string // name the image had when it was encoded
	Embedding   []float32
	Dim         int
	CreatedAt   time.Time
}

// Run is one persisted chain ordering.
type Run struct {
	ID        uuid.UUID
	Reference string // label of the reference image
	AgeWeight float64
	Entries   []chain.Entry
	CreatedAt time.Time
}

// Neighbor is a search hit from the encoding index.
type Neighbor struct {
	Encoding StoredEncoding
	Distance float64 // Euclidean
}
