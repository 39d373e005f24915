package detector

import (
	"image"

	"gocv.io/x/gocv"
	"golang.org/x/image/colornames"
)

// Annotate draws the detection result onto img: the palm circle, the region
// of interest curves, the enclosing circle, every hull and the fingertips.
// With mirror set the image is flipped horizontally afterwards so it matches
// the board orientation.
func Annotate(img *gocv.Mat, res Result, mirror bool) {
	if img == nil || img.Empty() {
		return
	}

	if res.Palm.Found() {
		gocv.Circle(img, res.Palm.Center, int(res.Palm.Radius), colornames.Limegreen, 2)
		gocv.Circle(img, res.Palm.Center, 3, colornames.Limegreen, -1)
	}

	if len(res.Curves) > 0 {
		curves := gocv.NewPointsVectorFromPoints(res.Curves)
		gocv.DrawContours(img, curves, -1, colornames.Deepskyblue, 2)
		curves.Close()
	}

	if res.Enclosing.Radius > 0 {
		gocv.Circle(img, res.Enclosing.Center(), int(res.Enclosing.Radius), colornames.Orange, 1)
	}

	if len(res.Shapes) > 0 {
		hulls := make([][]image.Point, 0, len(res.Shapes))
		for _, shape := range res.Shapes {
			hulls = append(hulls, shape.HullPoints())
		}
		pv := gocv.NewPointsVectorFromPoints(hulls)
		gocv.Polylines(img, pv, true, colornames.Magenta, 1)
		pv.Close()
	}

	for _, tip := range res.Tips {
		gocv.Circle(img, tip, 6, colornames.Red, -1)
	}

	if mirror {
		gocv.Flip(*img, img, 1)
	}
}
