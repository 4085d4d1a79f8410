package headshot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/kozaktomas/face-morph/internal/encoder"
	"golang.org/x/sync/errgroup"
)

// Detector finds faces and their landmarks in an image.
type Detector interface {
	DetectFaces(ctx context.Context, imageData []byte) (*encoder.FaceResponse, error)
}

// Normalizer crops every image of a directory into a headshot.
type Normalizer struct {
	Detector    Detector
	Params      Params
	Size        int
	Concurrency int
	Logger      *slog.Logger
	// OnProgress is called after every processed file.
	OnProgress func(done, total int)
}

// Result describes one written headshot.
type Result struct {
	File string
	Crop Crop
}

// Report summarizes a Normalizer run in file name order.
type Report struct {
	Written []Result
	Skipped []encoder.Skipped
}

// Run detects the first face of every image in inDir and writes its crop
// under the same name to outDir. Images without usable landmarks are skipped.
func (n *Normalizer) Run(ctx context.Context, inDir, outDir string) (*Report, error) {
	names, err := encoder.ListImages(inDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	size := n.Size
	if size <= 0 {
		size = DefaultSize
	}
	params := n.Params
	if params == (Params{}) {
		params = DefaultParams()
	}
	concurrency := max(n.Concurrency, 1)

	type outcome struct {
		crop   Crop
		reason string
	}
	results := make([]outcome, len(names))
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, name := range names {
		g.Go(func() error {
			crop, reason, err := n.processFile(gctx, filepath.Join(inDir, name), filepath.Join(outDir, name), params, size)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			results[i] = outcome{crop: crop, reason: reason}
			if n.OnProgress != nil {
				n.OnProgress(int(done.Add(1)), len(names))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{}
	for i, name := range names {
		r := results[i]
		if r.reason != "" {
			logger.Warn("skipping image", "file", name, "reason", r.reason)
			report.Skipped = append(report.Skipped, encoder.Skipped{File: name, Reason: r.reason})
			continue
		}
		logger.Debug("cropped image", "file", name, "multiplier", fmt.Sprintf("%.2f", r.crop.Multiplier))
		report.Written = append(report.Written, Result{File: name, Crop: r.crop})
	}
	return report, nil
}

// processFile returns a non-empty reason when the file is skipped.
func (n *Normalizer) processFile(ctx context.Context, src, dst string, params Params, size int) (Crop, string, error) {
	data, err := os.ReadFile(src)
	if err != nil {
		return Crop{}, "", fmt.Errorf("read: %w", err)
	}

	img, err := Decode(bytes.NewReader(data))
	if err != nil {
		return Crop{}, "unreadable image", nil
	}

	resp, err := n.Detector.DetectFaces(ctx, data)
	if err != nil {
		return Crop{}, "", err
	}
	if len(resp.Faces) == 0 {
		return Crop{}, "no face landmarks found", nil
	}

	b := img.Bounds()
	crop, err := ComputeCrop(resp.Faces[0].Landmarks, b.Dx(), b.Dy(), params)
	switch {
	case errors.Is(err, ErrMissingLandmarks):
		return Crop{}, "missing eye or mouth data", nil
	case errors.Is(err, ErrDegenerateFace):
		return Crop{}, "degenerate face geometry", nil
	case err != nil:
		return Crop{}, "", err
	}

	if err := Save(dst, Process(img, crop.Rect, size)); err != nil {
		return Crop{}, "", err
	}
	return crop, "", nil
}
