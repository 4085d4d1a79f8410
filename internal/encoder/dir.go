package encoder

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/kozaktomas/face-morph/internal/chain"
	"github.com/kozaktomas/face-morph/internal/database"
	"golang.org/x/sync/errgroup"
)

const defaultConcurrency = 5

// Encoder is the part of Client that EncodeDir needs.
type Encoder interface {
	Encode(ctx context.Context, imageData []byte) (chain.Vector, error)
	Model() string
}

// EncodeOptions configures EncodeDir.
type EncodeOptions struct {
	Concurrency int
	// Cache stores encodings by content hash and model. Optional.
	Cache database.EncodingWriter
	// OnProgress is called after every processed file.
	OnProgress func(done, total int)
	Logger     *slog.Logger
}

// EncodeResult is the outcome of EncodeDir. Candidates keep file name order.
type EncodeResult struct {
	Candidates []chain.Candidate
	Skipped    []Skipped
	CacheHits  int
}

// IsImageFile reports whether name has an extension the pipeline reads.
func IsImageFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png":
		return true
	}
	return false
}

// ListImages returns the image file names in dir sorted by name.
func ListImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && IsImageFile(e.Name()) {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)
	return names, nil
}

// ContentHash returns the hex sha256 of data.
func ContentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// EncodeFile encodes a single image file, consulting cache first when set.
// The second return value reports a cache hit.
func EncodeFile(ctx context.Context, enc Encoder, cache database.EncodingWriter, path string) (chain.Vector, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", path, err)
	}
	hash := ContentHash(data)

	if cache != nil {
		stored, err := cache.Get(ctx, hash, enc.Model())
		if err != nil {
			return nil, false, fmt.Errorf("cache lookup for %s: %w", path, err)
		}
		if stored != nil {
			return chain.Vector(stored.Embedding), true, nil
		}
	}

	vec, err := enc.Encode(ctx, data)
	if err != nil {
		return nil, false, err
	}

	if cache != nil {
		err := cache.Save(ctx, database.StoredEncoding{
			ContentHash: hash,
			Model:       enc.Model(),
			FileName:    filepath.Base(path),
			Embedding:   vec,
			Dim:         len(vec),
		})
		if err != nil {
			return nil, false, fmt.Errorf("cache store for %s: %w", path, err)
		}
	}
	return vec, false, nil
}

// EncodeDir encodes every image in dir. Files without a face are skipped,
// any other failure aborts the whole run.
func EncodeDir(ctx context.Context, enc Encoder, dir string, opts EncodeOptions) (*EncodeResult, error) {
	names, err := ListImages(dir)
	if err != nil {
		return nil, err
	}

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	type outcome struct {
		vec    chain.Vector
		hit    bool
		reason string
	}
	results := make([]outcome, len(names))
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, name := range names {
		g.Go(func() error {
			vec, hit, err := EncodeFile(gctx, enc, opts.Cache, filepath.Join(dir, name))
			switch {
			case errors.Is(err, ErrNoFace):
				results[i].reason = "no face detected"
			case err != nil:
				return fmt.Errorf("encode %s: %w", name, err)
			default:
				results[i] = outcome{vec: vec, hit: hit}
			}
			if opts.OnProgress != nil {
				opts.OnProgress(int(done.Add(1)), len(names))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &EncodeResult{Candidates: make([]chain.Candidate, 0, len(names))}
	for i, name := range names {
		r := results[i]
		if r.reason != "" {
			logger.Warn("skipping image", "file", name, "reason", r.reason)
			res.Skipped = append(res.Skipped, Skipped{File: name, Reason: r.reason})
			continue
		}
		if r.hit {
			res.CacheHits++
		}
		res.Candidates = append(res.Candidates, chain.Candidate{ID: name, Vector: r.vec})
	}
	return res, nil
}
