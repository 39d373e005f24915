package detector

import (
	"image"

	"gocv.io/x/gocv"

	"github.com/ayusman/handmade/internal/geometry"
)

// FindInscribedCircle approximates the largest circle inscribed in the first
// curve by scanning a grid with the given stride over a frame of size
// (cols, rows) and keeping the sample with the greatest signed distance to the
// curve boundary. When there is no curve the NoCircle sentinel is returned.
func FindInscribedCircle(curves [][]image.Point, size image.Point, stride int) geometry.Circle {
	circle := geometry.NoCircle()
	if len(curves) == 0 || stride <= 0 {
		return circle
	}

	curve := gocv.NewPointVectorFromPoints(curves[0])
	defer curve.Close()

	best := circle.Radius
	for x := 0; x < size.X; x += stride {
		for y := 0; y < size.Y; y += stride {
			pt := image.Pt(x, y)
			if dist := gocv.PointPolygonTest(curve, pt, true); dist > best {
				best = dist
				circle.Center = pt
			}
		}
	}
	circle.Radius = best

	return circle
}

// RegionOfInterest clips every curve to the points lying closer than
// scale palm radii to the palm center. Clipped curves with three points or
// fewer cannot carry a meaningful hull and are dropped.
func RegionOfInterest(curves [][]image.Point, palm geometry.Circle, scale float64) [][]image.Point {
	var roi [][]image.Point

	for _, curve := range curves {
		var kept []image.Point
		for _, p := range curve {
			if palm.Within(p, scale) {
				kept = append(kept, p)
			}
		}

		if len(kept) > 3 {
			roi = append(roi, kept)
		}
	}

	return roi
}

// FindMinEnclosingCircle fits the minimum enclosing circle of the first
// curve. It returns the zero circle when there is no curve.
func FindMinEnclosingCircle(curves [][]image.Point) geometry.EnclosingCircle {
	if len(curves) == 0 {
		return geometry.EnclosingCircle{}
	}

	curve := gocv.NewPointVectorFromPoints(curves[0])
	defer curve.Close()

	x, y, radius := gocv.MinEnclosingCircle(curve)
	return geometry.EnclosingCircle{X: x, Y: y, Radius: radius}
}
