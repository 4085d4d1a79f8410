package morph

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/kozaktomas/face-morph/internal/headshot"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func TestBlend(t *testing.T) {
	black := solid(2, 2, color.RGBA{A: 255})
	white := solid(2, 2, color.RGBA{R: 255, G: 255, B: 255, A: 255})

	tests := []struct {
		name string
		t    float64
		want uint8
	}{
		{"start", 0, 0},
		{"third", 1.0 / 3, 85},
		{"two thirds", 2.0 / 3, 170},
		{"end", 1, 255},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, err := Blend(black, white, tc.t)
			if err != nil {
				t.Fatalf("Blend: %v", err)
			}
			px := out.RGBAAt(1, 1)
			if px.R != tc.want || px.G != tc.want || px.B != tc.want || px.A != 255 {
				t.Errorf("pixel = %v, want %d", px, tc.want)
			}
		})
	}
}

func TestBlendTruncates(t *testing.T) {
	a := solid(1, 1, color.RGBA{R: 10, A: 255})
	b := solid(1, 1, color.RGBA{R: 11, A: 255})
	out, _ := Blend(a, b, 0.5)
	if got := out.RGBAAt(0, 0).R; got != 10 {
		t.Errorf("R = %d, want 10", got)
	}
}

func TestBlendSizeMismatch(t *testing.T) {
	_, err := Blend(solid(2, 2, color.RGBA{}), solid(3, 2, color.RGBA{}), 0.5)
	if !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("err = %v, want ErrSizeMismatch", err)
	}
}

func TestFrameCount(t *testing.T) {
	tests := []struct {
		images int
		opts   FrameOptions
		want   int
	}{
		{0, DefaultFrameOptions(), 0},
		{1, DefaultFrameOptions(), 2},
		{3, DefaultFrameOptions(), 10},
		{3, FrameOptions{Still: 1, Blend: 0}, 3},
	}
	for _, tc := range tests {
		t.Run(fmt.Sprintf("%d images", tc.images), func(t *testing.T) {
			if got := FrameCount(tc.images, tc.opts); got != tc.want {
				t.Errorf("FrameCount = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestGenerateFrames(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	colours := []color.RGBA{
		{A: 255},
		{R: 255, G: 255, B: 255, A: 255},
		{R: 120, G: 120, B: 120, A: 255},
	}
	for i, c := range colours {
		if err := headshot.Save(filepath.Join(in, fmt.Sprintf("%03d.png", i)), solid(8, 8, c)); err != nil {
			t.Fatal(err)
		}
	}
	// Stale frame from a longer earlier run.
	if err := os.WriteFile(filepath.Join(out, "00042.jpg"), nil, 0o600); err != nil {
		t.Fatal(err)
	}

	n, err := GenerateFrames(context.Background(), in, out, DefaultFrameOptions())
	if err != nil {
		t.Fatalf("GenerateFrames: %v", err)
	}
	if n != 10 {
		t.Fatalf("frames = %d, want 10", n)
	}

	entries, _ := os.ReadDir(out)
	if len(entries) != 10 {
		t.Fatalf("files = %d, want 10", len(entries))
	}
	for i, e := range entries {
		if want := fmt.Sprintf("%05d.jpg", i); e.Name() != want {
			t.Errorf("entry %d = %q, want %q", i, e.Name(), want)
		}
	}

	// Frame 2 is the first blend between black and white at t=1/3.
	f, err := os.Open(filepath.Join(out, "00002.jpg"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := headshot.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	r, _, _, _ := img.At(4, 4).RGBA()
	if got := int(r >> 8); got < 80 || got > 90 {
		t.Errorf("blend red = %d, want about 85", got)
	}
}

func TestGenerateFramesErrors(t *testing.T) {
	t.Run("empty directory", func(t *testing.T) {
		_, err := GenerateFrames(context.Background(), t.TempDir(), t.TempDir(), DefaultFrameOptions())
		if !errors.Is(err, ErrNoFrames) {
			t.Errorf("err = %v, want ErrNoFrames", err)
		}
	})

	t.Run("size mismatch", func(t *testing.T) {
		in := t.TempDir()
		_ = headshot.Save(filepath.Join(in, "a.png"), solid(4, 4, color.RGBA{A: 255}))
		_ = headshot.Save(filepath.Join(in, "b.png"), solid(5, 4, color.RGBA{A: 255}))
		_, err := GenerateFrames(context.Background(), in, t.TempDir(), DefaultFrameOptions())
		if !errors.Is(err, ErrSizeMismatch) {
			t.Errorf("err = %v, want ErrSizeMismatch", err)
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		in := t.TempDir()
		_ = headshot.Save(filepath.Join(in, "a.png"), solid(4, 4, color.RGBA{A: 255}))
		_ = headshot.Save(filepath.Join(in, "b.png"), solid(4, 4, color.RGBA{A: 255}))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := GenerateFrames(ctx, in, t.TempDir(), DefaultFrameOptions())
		if !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
	})
}
