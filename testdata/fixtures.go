// Package testdata generates synthetic hand silhouettes for tests.
//
// Masks are single-channel 8-bit images with the silhouette in white on a
// black background, the same shape the preprocessing stage emits.
package testdata

import (
	"image"
	"math"

	"gocv.io/x/gocv"
	"golang.org/x/image/colornames"
)

// Frame dimensions used by every fixture.
const (
	Width  = 640
	Height = 480
)

// Pointing hand geometry: a palm disc with one finger raised straight up.
const (
	PalmRadius   = 60
	FingerWidth  = 16
	FingerLength = 190
)

// StarPolygon returns a regular five-pointed star centered on center with
// the given outer and inner radii. The first vertex points straight up.
func StarPolygon(center image.Point, outer, inner float64) []image.Point {
	points := make([]image.Point, 0, 10)
	for i := 0; i < 10; i++ {
		radius := outer
		if i%2 == 1 {
			radius = inner
		}
		angle := -math.Pi/2 + float64(i)*math.Pi/5
		points = append(points, image.Pt(
			center.X+int(math.Round(radius*math.Cos(angle))),
			center.Y+int(math.Round(radius*math.Sin(angle))),
		))
	}
	return points
}

// StarOuterVertices returns the five tips of the star built by StarPolygon.
func StarOuterVertices(center image.Point, outer float64) []image.Point {
	star := StarPolygon(center, outer, 0)
	tips := make([]image.Point, 0, 5)
	for i := 0; i < len(star); i += 2 {
		tips = append(tips, star[i])
	}
	return tips
}

// CirclePolygon approximates a circle with n vertices.
func CirclePolygon(center image.Point, radius float64, n int) []image.Point {
	points := make([]image.Point, 0, n)
	for i := 0; i < n; i++ {
		angle := 2 * math.Pi * float64(i) / float64(n)
		points = append(points, image.Pt(
			center.X+int(math.Round(radius*math.Cos(angle))),
			center.Y+int(math.Round(radius*math.Sin(angle))),
		))
	}
	return points
}

// BlankMask returns an all-black mask. The caller must Close it.
func BlankMask() gocv.Mat {
	return gocv.NewMatWithSize(Height, Width, gocv.MatTypeCV8U)
}

// MaskFromPolygon fills polygon in white on a blank mask. The caller must
// Close the result.
func MaskFromPolygon(polygon []image.Point) gocv.Mat {
	mask := BlankMask()
	pv := gocv.NewPointsVectorFromPoints([][]image.Point{polygon})
	defer pv.Close()
	gocv.FillPoly(&mask, pv, colornames.White)
	return mask
}

// StarMask returns the silhouette of an open hand approximated by a star
// centered in the frame.
func StarMask() gocv.Mat {
	return MaskFromPolygon(StarPolygon(image.Pt(Width/2, Height/2), 150, 75))
}

// DiscMask returns a convex silhouette with no fingers.
func DiscMask() gocv.Mat {
	return MaskFromPolygon(CirclePolygon(image.Pt(Width/2, Height/2), 100, 64))
}

// PointingMask returns a palm disc centered on palm with a single finger
// raised above it.
func PointingMask(palm image.Point) gocv.Mat {
	mask := BlankMask()
	gocv.Circle(&mask, palm, PalmRadius, colornames.White, -1)
	finger := image.Rect(palm.X-FingerWidth/2, palm.Y-FingerLength, palm.X+FingerWidth/2, palm.Y)
	gocv.Rectangle(&mask, finger, colornames.White, -1)
	return mask
}

// PointingTip returns where the fingertip of PointingMask(palm) lies.
func PointingTip(palm image.Point) image.Point {
	return image.Pt(palm.X, palm.Y-FingerLength)
}

// ToBGR converts a mask to a three-channel frame, as a camera would deliver.
// The caller must Close the result.
func ToBGR(mask gocv.Mat) gocv.Mat {
	frame := gocv.NewMat()
	gocv.CvtColor(mask, &frame, gocv.ColorGrayToBGR)
	return frame
}

// PointingSequence returns n BGR frames of the pointing hand sliding right by
// step pixels per frame. The caller must Close every frame.
func PointingSequence(n, step int) []gocv.Mat {
	frames := make([]gocv.Mat, 0, n)
	for i := 0; i < n; i++ {
		mask := PointingMask(image.Pt(200+i*step, 320))
		frames = append(frames, ToBGR(mask))
		mask.Close()
	}
	return frames
}
