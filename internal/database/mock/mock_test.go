package mock

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/kozaktomas/face-morph/internal/chain"
	"github.com/kozaktomas/face-morph/internal/database"
)

func TestEncodingStore(t *testing.T) {
	ctx := context.Background()
	store := NewEncodingStore()

	_ = store.Save(ctx, database.StoredEncoding{ContentHash: "h2", Model: "m", FileName: "b.jpg", Embedding: []float32{1, 2}})
	_ = store.Save(ctx, database.StoredEncoding{ContentHash: "h1", Model: "m", FileName: "a.jpg", Embedding: []float32{3, 4}})
	_ = store.Save(ctx, database.StoredEncoding{ContentHash: "h1", Model: "other", FileName: "a.jpg", Embedding: []float32{5}})

	got, err := store.Get(ctx, "h1", "m")
	if err != nil || got == nil {
		t.Fatalf("Get = %v, %v", got, err)
	}
	if got.Dim != 2 {
		t.Errorf("Dim = %d, want 2", got.Dim)
	}

	list, _ := store.List(ctx, "m")
	if len(list) != 2 || list[0].FileName != "a.jpg" {
		t.Errorf("List = %+v, want a.jpg then b.jpg", list)
	}

	_ = store.Delete(ctx, "h1", "m")
	if got, _ := store.Get(ctx, "h1", "m"); got != nil {
		t.Error("expected deleted encoding to be gone")
	}
	if n, _ := store.Count(ctx); n != 2 {
		t.Errorf("Count = %d, want 2", n)
	}

	store.GetError = errors.New("boom")
	if _, err := store.Get(ctx, "h2", "m"); err == nil {
		t.Error("expected injected error")
	}
}

func TestRunStore(t *testing.T) {
	ctx := context.Background()
	store := NewRunStore()

	first := database.Run{ID: uuid.New(), Reference: "r1", Entries: []chain.Entry{{ID: "a", Distance: 1}}}
	second := database.Run{ID: uuid.New(), Reference: "r2"}
	_ = store.SaveRun(ctx, first)
	_ = store.SaveRun(ctx, second)

	got, _ := store.GetRun(ctx, first.ID)
	if got == nil || len(got.Entries) != 1 {
		t.Fatalf("GetRun = %+v", got)
	}

	runs, _ := store.ListRuns(ctx, 1)
	if len(runs) != 1 || runs[0].ID != second.ID {
		t.Errorf("ListRuns = %+v, want newest only", runs)
	}
	if runs[0].Entries != nil {
		t.Error("ListRuns should omit entries")
	}

	if missing, _ := store.GetRun(ctx, uuid.New()); missing != nil {
		t.Error("expected nil for unknown run")
	}
}
