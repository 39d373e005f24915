package detector

import (
	"image"

	"gocv.io/x/gocv"
)

// Shape pairs a region-of-interest curve with the indices of its convex hull.
// Keeping both in one record means a curve can never drift out of step with
// its hull.
type Shape struct {
	Curve []image.Point
	Hull  []int
}

// HullPoints returns the hull vertices in hull order.
func (s Shape) HullPoints() []image.Point {
	points := make([]image.Point, 0, len(s.Hull))
	for _, idx := range s.Hull {
		points = append(points, s.Curve[idx])
	}
	return points
}

// BuildShapes computes the convex hull of every curve. Curves whose hull has
// two indices or fewer are degenerate and are dropped.
func BuildShapes(curves [][]image.Point) []Shape {
	shapes := make([]Shape, 0, len(curves))

	for _, curve := range curves {
		if len(curve) == 0 {
			continue
		}

		hull := ConvexHullIndices(curve)
		if len(hull) <= 2 {
			continue
		}

		shapes = append(shapes, Shape{Curve: curve, Hull: hull})
	}

	return shapes
}

// ConvexHullIndices returns the indices into curve of its convex hull.
func ConvexHullIndices(curve []image.Point) []int {
	points := gocv.NewPointVectorFromPoints(curve)
	defer points.Close()

	hull := gocv.NewMat()
	defer hull.Close()

	gocv.ConvexHull(points, &hull, false, false)

	indices := make([]int, 0, hull.Rows()*hull.Cols())
	for i := 0; i < hull.Rows(); i++ {
		for j := 0; j < hull.Cols(); j++ {
			indices = append(indices, int(hull.GetIntAt(i, j)))
		}
	}

	return indices
}

// Defects computes the convexity defects of the shape's curve against its
// hull. A hull that does not walk the curve in one direction, as happens
// when clipping to the region of interest leaves a self-intersecting curve,
// has no defects.
func (s Shape) Defects() []Defect {
	if len(s.Hull) <= 2 || !monotonicHull(s.Hull, len(s.Curve)) {
		return nil
	}

	points := gocv.NewPointVectorFromPoints(s.Curve)
	defer points.Close()

	hull := gocv.NewMatWithSize(len(s.Hull), 1, gocv.MatTypeCV32S)
	defer hull.Close()
	for i, idx := range s.Hull {
		hull.SetIntAt(i, 0, int32(idx))
	}

	result := gocv.NewMat()
	defer result.Close()

	gocv.ConvexityDefects(points, hull, &result)

	defects := make([]Defect, 0, result.Rows())
	for i := 0; i < result.Rows(); i++ {
		defects = append(defects, Defect{
			Start: int(result.GetIntAt(i, 0)),
			End:   int(result.GetIntAt(i, 1)),
			Far:   int(result.GetIntAt(i, 2)),
			Depth: int(result.GetIntAt(i, 3)),
		})
	}

	return defects
}

// monotonicHull reports whether hull indexes a curve of n points in a single
// direction with at most one wraparound. OpenCV aborts on any other hull.
func monotonicHull(hull []int, n int) bool {
	up, down := 0, 0
	for i, idx := range hull {
		if idx < 0 || idx >= n {
			return false
		}
		next := hull[(i+1)%len(hull)]
		switch {
		case next > idx:
			up++
		case next < idx:
			down++
		default:
			return false
		}
	}
	return up <= 1 || down <= 1
}
