// Package headshot crops photos to a normalized portrait: a square of fixed
// size with the eyes on a fixed line and the face scaled by the distance
// between the eyes and the mouth.
package headshot

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/kozaktomas/face-morph/internal/encoder"
)

var (
	// ErrMissingLandmarks is returned when an eye or the top lip was not detected.
	ErrMissingLandmarks = errors.New("missing eye or mouth landmarks")
	// ErrDegenerateFace is returned when the landmarks do not span a usable crop.
	ErrDegenerateFace = errors.New("degenerate face geometry")
)

// Params controls the crop geometry.
type Params struct {
	// Multiplier is the desired crop edge divided by the eye-to-mouth distance.
	Multiplier float64
	// EyeLine is the eye position from the top of the crop, as a fraction of its edge.
	EyeLine float64
}

// DefaultParams returns the geometry used by the headshots command.
func DefaultParams() Params {
	return Params{Multiplier: 6.1, EyeLine: 0.38}
}

// Crop is the square region cut out of a source image.
type Crop struct {
	Rect image.Rectangle
	// Multiplier is the one actually applied after fitting the square into the image.
	Multiplier float64
}

// ComputeCrop places the square crop for one face inside a width x height image.
// The crop shrinks below Params.Multiplier when the desired square would leave
// the image, keeping the eye line and horizontal centering intact.
func ComputeCrop(landmarks map[string][]encoder.Point, width, height int, p Params) (Crop, error) {
	if p.Multiplier <= 0 || p.EyeLine <= 0 || p.EyeLine >= 1 {
		return Crop{}, fmt.Errorf("invalid crop params %+v", p)
	}

	var centers [3]image.Point
	for i, group := range []string{encoder.LeftEye, encoder.RightEye, encoder.TopLip} {
		pts := landmarks[group]
		if len(pts) == 0 {
			return Crop{}, fmt.Errorf("%w: %s", ErrMissingLandmarks, group)
		}
		centers[i] = centroid(pts)
	}
	left, right, mouth := centers[0], centers[1], centers[2]

	eye := image.Point{X: floorDiv(left.X+right.X, 2), Y: floorDiv(left.Y+right.Y, 2)}
	dist := math.Hypot(float64(eye.X-mouth.X), float64(eye.Y-mouth.Y))
	if dist == 0 {
		return Crop{}, fmt.Errorf("%w: eyes and mouth coincide", ErrDegenerateFace)
	}

	ex, ey := float64(eye.X), float64(eye.Y)
	maxVertical := math.Min(ey/p.EyeLine, (float64(height)-ey)/(1-p.EyeLine))
	maxHorizontal := 2 * math.Min(ex, float64(width)-ex)
	size := math.Min(dist*p.Multiplier, math.Min(maxVertical, maxHorizontal))

	edge := int(size)
	if edge <= 0 {
		return Crop{}, fmt.Errorf("%w: eye centre %v outside %dx%d image", ErrDegenerateFace, eye, width, height)
	}

	top := int(ey - float64(edge)*p.EyeLine)
	lft := int(ex - float64(edge)/2)
	rect := image.Rect(lft, top, lft+edge, top+edge).Intersect(image.Rect(0, 0, width, height))
	if rect.Empty() {
		return Crop{}, fmt.Errorf("%w: empty crop", ErrDegenerateFace)
	}

	return Crop{Rect: rect, Multiplier: size / dist}, nil
}

// centroid is the mean of pts truncated to whole pixels.
func centroid(pts []encoder.Point) image.Point {
	var sx, sy float64
	for _, p := range pts {
		sx += p[0]
		sy += p[1]
	}
	n := float64(len(pts))
	return image.Point{X: int(sx / n), Y: int(sy / n)}
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
