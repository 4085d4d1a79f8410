package cmd

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/kozaktomas/face-morph/internal/chain"
	"github.com/kozaktomas/face-morph/internal/config"
	"github.com/kozaktomas/face-morph/internal/logger"
)

func TestChainOptions(t *testing.T) {
	cfg := config.Defaults()
	cfg.Chain.AgeWeight = 0.03
	cfg.Chain.Workers = 4
	ctx := context.Background()

	tests := []struct {
		name     string
		debug    bool
		observed bool
	}{
		{"info level skips round reports", false, false},
		{"debug level observes rounds", true, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			log := logger.New(logger.WithWriter(io.Discard), logger.WithDebug(tc.debug))
			opts := chainOptions(ctx, cfg, log)
			if opts.AgeWeight != 0.03 || opts.Workers != 4 {
				t.Errorf("options = %+v, want age weight 0.03 and 4 workers", opts)
			}
			if (opts.OnRound != nil) != tc.observed {
				t.Errorf("OnRound set = %v, want %v", opts.OnRound != nil, tc.observed)
			}
		})
	}
}

func TestWithoutReference(t *testing.T) {
	dir := t.TempDir()
	pool := []chain.Candidate{{ID: "a.jpg"}, {ID: "ref.jpg"}, {ID: "b.jpg"}}

	got := withoutReference(pool, filepath.Join(dir, "ref.jpg"), dir)
	if len(got) != 2 || got[0].ID != "a.jpg" || got[1].ID != "b.jpg" {
		t.Errorf("reference in input dir: got %v", got)
	}

	other := filepath.Join(t.TempDir(), "ref.jpg")
	if err := os.WriteFile(other, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if got := withoutReference(pool, other, dir); len(got) != 3 {
		t.Errorf("reference elsewhere: got %v, want the whole pool", got)
	}
}
