package database

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/coder/hnsw"
	"github.com/kozaktomas/face-morph/internal/chain"
)

// ErrIndexEmpty is returned when searching an index with no encodings.
var ErrIndexEmpty = errors.New("index not initialized")

// EncodingIndex wraps the HNSW graph for approximate nearest-neighbour
// lookups over cached encodings. Keys are content hashes.
type EncodingIndex struct {
	graph  *hnsw.Graph[string]
	byHash map[string]*StoredEncoding
	dim    int
	mu     sync.RWMutex
}

// NewEncodingIndex creates a new empty index.
func NewEncodingIndex() *EncodingIndex {
	return &EncodingIndex{byHash: make(map[string]*StoredEncoding)}
}

func newGraph() *hnsw.Graph[string] {
	g := hnsw.NewGraph[string]()
	g.M = HNSWMaxNeighbors
	g.Ml = 1.0 / float64(HNSWMaxNeighbors) // Standard HNSW formula
	g.EfSearch = HNSWEfSearch
	g.Distance = hnsw.EuclideanDistance
	return g
}

// Build replaces the index content with encodings. All encodings must share
// one dimensionality; the graph panics otherwise, so it is checked up front.
func (h *EncodingIndex) Build(encodings []StoredEncoding) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.graph = nil
	h.dim = 0
	h.byHash = make(map[string]*StoredEncoding, len(encodings))
	if len(encodings) == 0 {
		return nil
	}

	dim := len(encodings[0].Embedding)
	for i := range encodings {
		if len(encodings[i].Embedding) != dim {
			return fmt.Errorf("%w: %s has %d dimensions, expected %d",
				chain.ErrDimensionMismatch, encodings[i].FileName, len(encodings[i].Embedding), dim)
		}
	}

	g := newGraph()
	for i := range encodings {
		enc := &encodings[i]
		if len(enc.Embedding) == 0 {
			continue
		}
		if _, dup := h.byHash[enc.ContentHash]; dup {
			continue
		}
		g.Add(hnsw.MakeNode(enc.ContentHash, enc.Embedding))
		h.byHash[enc.ContentHash] = enc
	}

	h.graph = g
	h.dim = dim
	return nil
}

// Count returns the number of indexed encodings.
func (h *EncodingIndex) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byHash)
}

// Search returns up to k encodings closest to query, nearest first.
// Distances are recomputed exactly so ties and ordering are stable.
func (h *EncodingIndex) Search(query chain.Vector, k int) ([]Neighbor, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.graph == nil || len(h.byHash) == 0 {
		return nil, ErrIndexEmpty
	}
	if len(query) != h.dim {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d", chain.ErrDimensionMismatch, len(query), h.dim)
	}
	if k <= 0 {
		return []Neighbor{}, nil
	}

	searchK := min(k*HNSWSearchMultiplier, len(h.byHash))
	nodes := h.graph.Search([]float32(query), searchK)

	out := make([]Neighbor, 0, len(nodes))
	for _, n := range nodes {
		enc, ok := h.byHash[n.Key]
		if !ok {
			continue
		}
		d, err := chain.Distance(query, enc.Embedding)
		if err != nil {
			continue
		}
		out = append(out, Neighbor{Encoding: *enc, Distance: d})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		return out[i].Encoding.FileName < out[j].Encoding.FileName
	})
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}
