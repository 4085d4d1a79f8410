// Package morph turns an ordered set of headshots into a morphing video:
// still and cross-faded frames first, then ffmpeg motion interpolation.
package morph

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/kozaktomas/face-morph/internal/encoder"
	"github.com/kozaktomas/face-morph/internal/headshot"
	"golang.org/x/image/draw"
)

var (
	// ErrNoFrames is returned when the input directory has no images.
	ErrNoFrames = errors.New("no input images")
	// ErrSizeMismatch is returned when two blended images differ in size.
	ErrSizeMismatch = errors.New("image sizes differ")
)

// FramePattern is the printf pattern of generated frame names.
const FramePattern = "%05d.jpg"

// FrameOptions controls how many frames each input image produces.
type FrameOptions struct {
	// Still is the number of identical frames per image.
	Still int
	// Blend is the number of cross-faded frames between consecutive images.
	Blend int
	// OnFrame is called after every written frame.
	OnFrame func(n int)
}

// DefaultFrameOptions returns two still and two blend frames per image.
func DefaultFrameOptions() FrameOptions {
	return FrameOptions{Still: 2, Blend: 2}
}

// FrameCount returns the number of frames GenerateFrames writes for n images.
func FrameCount(n int, opts FrameOptions) int {
	if n <= 0 {
		return 0
	}
	return (n-1)*(opts.Still+opts.Blend) + opts.Still
}

// Blend returns (1-t)*a + t*b per channel, truncated to 8 bits. The result is
// opaque and anchored at the origin.
func Blend(a, b image.Image, t float64) (*image.RGBA, error) {
	if a.Bounds().Size() != b.Bounds().Size() {
		return nil, fmt.Errorf("%w: %v and %v", ErrSizeMismatch, a.Bounds().Size(), b.Bounds().Size())
	}
	pa, pb := toRGBA(a), toRGBA(b)
	out := image.NewRGBA(pa.Rect)
	for i := 0; i < len(out.Pix); i += 4 {
		for c := range 3 {
			out.Pix[i+c] = uint8((1-t)*float64(pa.Pix[i+c]) + t*float64(pb.Pix[i+c]))
		}
		out.Pix[i+3] = 0xff
	}
	return out, nil
}

func toRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	if rgba, ok := img.(*image.RGBA); ok && b.Min == (image.Point{}) {
		return rgba
	}
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// GenerateFrames writes the frames for every image in inDir, in name order, to
// outDir as 00000.jpg, 00001.jpg and so on. For each consecutive pair it writes
// Still copies of the first image followed by Blend frames at t = f/(Blend+1);
// the last image gets Still copies only. It returns the number of frames written.
func GenerateFrames(ctx context.Context, inDir, outDir string, opts FrameOptions) (int, error) {
	names, err := encoder.ListImages(inDir)
	if err != nil {
		return 0, err
	}
	if len(names) == 0 {
		return 0, fmt.Errorf("%w in %s", ErrNoFrames, inDir)
	}
	if opts.Still < 0 || opts.Blend < 0 {
		return 0, fmt.Errorf("invalid frame options %+v", opts)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return 0, fmt.Errorf("create output directory: %w", err)
	}
	if err := removeFrames(outDir); err != nil {
		return 0, err
	}

	w := &frameWriter{dir: outDir, onFrame: opts.OnFrame}

	current, err := load(filepath.Join(inDir, names[0]))
	if err != nil {
		return 0, err
	}
	for _, name := range names[1:] {
		if err := ctx.Err(); err != nil {
			return w.n, err
		}
		next, err := load(filepath.Join(inDir, name))
		if err != nil {
			return w.n, err
		}
		if err := w.repeat(current, opts.Still); err != nil {
			return w.n, err
		}
		for f := 1; f <= opts.Blend; f++ {
			frame, err := Blend(current, next, float64(f)/float64(opts.Blend+1))
			if err != nil {
				return w.n, fmt.Errorf("blend into %s: %w", name, err)
			}
			if err := w.write(frame); err != nil {
				return w.n, err
			}
		}
		current = next
	}
	if err := w.repeat(current, opts.Still); err != nil {
		return w.n, err
	}
	return w.n, nil
}

type frameWriter struct {
	dir     string
	n       int
	onFrame func(int)
}

func (w *frameWriter) write(img image.Image) error {
	path := filepath.Join(w.dir, fmt.Sprintf(FramePattern, w.n))
	if err := headshot.Save(path, img); err != nil {
		return err
	}
	w.n++
	if w.onFrame != nil {
		w.onFrame(w.n)
	}
	return nil
}

func (w *frameWriter) repeat(img image.Image, count int) error {
	for range count {
		if err := w.write(img); err != nil {
			return err
		}
	}
	return nil
}

// removeFrames deletes frames of an earlier run so ffmpeg does not pick them up.
func removeFrames(dir string) error {
	stale, err := filepath.Glob(filepath.Join(dir, "[0-9][0-9][0-9][0-9][0-9].jpg"))
	if err != nil {
		return err
	}
	for _, path := range stale {
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("remove stale frame: %w", err)
		}
	}
	return nil
}

func load(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, err := headshot.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return toRGBA(img), nil
}
