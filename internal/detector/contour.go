package detector

import (
	"image"

	"gocv.io/x/gocv"
)

// PolyCurves extracts the external contours of mask, keeps those whose area
// exceeds minArea and simplifies each one to an open polygon with the given
// tolerance. Curves are returned in contour order.
func PolyCurves(mask gocv.Mat, minArea, epsilon float64) [][]image.Point {
	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxNone)
	defer contours.Close()

	var curves [][]image.Point
	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)
		if gocv.ContourArea(contour) <= minArea {
			continue
		}

		approx := gocv.ApproxPolyDP(contour, epsilon, false)
		points := approx.ToPoints()
		approx.Close()

		if len(points) > 0 {
			curves = append(curves, points)
		}
	}

	return curves
}
