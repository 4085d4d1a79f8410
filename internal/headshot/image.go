package headshot

import (
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
)

// DefaultSize is the output edge in pixels.
const DefaultSize = 800

// JPEGQuality is used for .jpg and .jpeg output.
const JPEGQuality = 95

// ErrUnsupportedFormat is returned for output names that are neither JPEG nor PNG.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Process cuts rect out of img and scales it to size x size.
func Process(img image.Image, rect image.Rectangle, size int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, rect.Add(img.Bounds().Min), draw.Src, nil)
	return dst
}

// Decode reads a JPEG or PNG image.
func Decode(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// Encode writes img in the format implied by name's extension.
func Encode(w io.Writer, img image.Image, name string) error {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: JPEGQuality})
	case ".png":
		return png.Encode(w, img)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
}

// Save encodes img to path, creating or truncating the file.
func Save(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Encode(f, img, path); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
