package database

import (
	"errors"
	"testing"

	"github.com/kozaktomas/face-morph/internal/chain"
)

func encodings() []StoredEncoding {
	return []StoredEncoding{
		{ContentHash: "h1", FileName: "a.jpg", Embedding: []float32{0, 0}},
		{ContentHash: "h2", FileName: "b.jpg", Embedding: []float32{1, 0}},
		{ContentHash: "h3", FileName: "c.jpg", Embedding: []float32{5, 5}},
		{ContentHash: "h4", FileName: "d.jpg", Embedding: []float32{0, 2}},
	}
}

func TestEncodingIndex_Search(t *testing.T) {
	idx := NewEncodingIndex()
	if err := idx.Build(encodings()); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if idx.Count() != 4 {
		t.Fatalf("Count() = %d, want 4", idx.Count())
	}

	got, err := idx.Search(chain.Vector{0, 0}, 2)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 neighbors, got %d", len(got))
	}
	if got[0].Encoding.FileName != "a.jpg" || got[0].Distance != 0 {
		t.Errorf("first neighbor = %s (%v), want a.jpg (0)", got[0].Encoding.FileName, got[0].Distance)
	}
	if got[1].Encoding.FileName != "b.jpg" || got[1].Distance != 1 {
		t.Errorf("second neighbor = %s (%v), want b.jpg (1)", got[1].Encoding.FileName, got[1].Distance)
	}
}

func TestEncodingIndex_SearchMoreThanIndexed(t *testing.T) {
	idx := NewEncodingIndex()
	if err := idx.Build(encodings()); err != nil {
		t.Fatal(err)
	}
	got, err := idx.Search(chain.Vector{5, 5}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) == 0 || got[0].Encoding.FileName != "c.jpg" {
		t.Errorf("expected c.jpg first, got %v", got)
	}
	for i := 1; i < len(got); i++ {
		if got[i].Distance < got[i-1].Distance {
			t.Errorf("results not sorted by distance: %v", got)
		}
	}
}

func TestEncodingIndex_Errors(t *testing.T) {
	idx := NewEncodingIndex()
	if _, err := idx.Search(chain.Vector{0, 0}, 1); !errors.Is(err, ErrIndexEmpty) {
		t.Errorf("expected ErrIndexEmpty, got %v", err)
	}

	mixed := append(encodings(), StoredEncoding{ContentHash: "h5", FileName: "e.jpg", Embedding: []float32{1, 2, 3}})
	if err := idx.Build(mixed); !errors.Is(err, chain.ErrDimensionMismatch) {
		t.Errorf("expected dimension mismatch on build, got %v", err)
	}

	if err := idx.Build(encodings()); err != nil {
		t.Fatal(err)
	}
	if _, err := idx.Search(chain.Vector{0, 0, 0}, 1); !errors.Is(err, chain.ErrDimensionMismatch) {
		t.Errorf("expected dimension mismatch on search, got %v", err)
	}
}

func TestEncodingIndex_DuplicateHashes(t *testing.T) {
	idx := NewEncodingIndex()
	encs := append(encodings(), StoredEncoding{ContentHash: "h1", FileName: "copy-of-a.jpg", Embedding: []float32{0, 0}})
	if err := idx.Build(encs); err != nil {
		t.Fatal(err)
	}
	if idx.Count() != 4 {
		t.Errorf("duplicate content hash should be indexed once, Count() = %d", idx.Count())
	}
}

func TestEncodingIndex_BuildEmpty(t *testing.T) {
	idx := NewEncodingIndex()
	if err := idx.Build(nil); err != nil {
		t.Fatal(err)
	}
	if idx.Count() != 0 {
		t.Errorf("Count() = %d, want 0", idx.Count())
	}
}
