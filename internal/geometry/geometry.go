// Package geometry provides the planar helpers used by the fingertip detector
// and the drawing board.
package geometry

import (
	"errors"
	"image"
	"math"

	"github.com/golang/geo/r2"
)

// ErrInvalidGeometry is returned when a computation is undefined for its
// inputs, such as an angle at a vertex that coincides with another vertex.
var ErrInvalidGeometry = errors.New("invalid geometry")

// vec converts a pixel point to a real-valued vector.
func vec(p image.Point) r2.Point {
	return r2.Point{X: float64(p.X), Y: float64(p.Y)}
}

// Distance returns the Euclidean distance between p and q.
func Distance(p, q image.Point) float64 {
	return vec(p).Sub(vec(q)).Norm()
}

// Angle returns the angle in degrees at vertex c of the triangle a, b, c.
//
// The angle is computed with the law of cosines from the side lengths
// |a-c|, |b-c| and |a-b|. ErrInvalidGeometry is returned when a or b
// coincides with c.
func Angle(a, b, c image.Point) (float64, error) {
	sideA := Distance(a, c)
	sideB := Distance(b, c)
	sideC := Distance(a, b)

	if sideA == 0 || sideB == 0 {
		return 0, ErrInvalidGeometry
	}

	cos := (sideA*sideA + sideB*sideB - sideC*sideC) / (2 * sideA * sideB)

	// Rounding can push collinear triangles just past the domain of acos.
	cos = math.Max(-1, math.Min(1, cos))

	return math.Acos(cos) * 180 / math.Pi, nil
}

// Midpoint returns the midpoint of p and q rounded to the nearest pixel.
func Midpoint(p, q image.Point) image.Point {
	m := vec(p).Add(vec(q)).Mul(0.5)
	return image.Point{X: int(math.Round(m.X)), Y: int(math.Round(m.Y))}
}

// MirrorX mirrors p horizontally inside a frame of the given width.
func MirrorX(p image.Point, width int) image.Point {
	return image.Point{X: width - p.X, Y: p.Y}
}
