package preprocess

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// FaceBlanker finds faces with a Haar cascade so they can be removed from
// the skin mask.
type FaceBlanker struct {
	classifier   gocv.CascadeClassifier
	scale        float64
	minNeighbors int
	minSize      image.Point
}

// NewFaceBlanker loads the cascade at path.
func NewFaceBlanker(path string, cfg Config) (*FaceBlanker, error) {
	classifier := gocv.NewCascadeClassifier()
	if !classifier.Load(path) {
		classifier.Close()
		return nil, fmt.Errorf("load cascade %s: failed", path)
	}

	return &FaceBlanker{
		classifier:   classifier,
		scale:        cfg.FaceScale,
		minNeighbors: cfg.FaceMinNeighbors,
		minSize:      image.Pt(cfg.FaceMinSize, cfg.FaceMinSize),
	}, nil
}

// Detect returns the face rectangles found in a BGR frame.
func (f *FaceBlanker) Detect(frame gocv.Mat) []image.Rectangle {
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(frame, &gray, gocv.ColorBGRToGray)

	return f.classifier.DetectMultiScaleWithParams(gray, f.scale, f.minNeighbors, 0, f.minSize, image.Point{})
}

// Close releases the classifier.
func (f *FaceBlanker) Close() error {
	return f.classifier.Close()
}

// Blank paints every rectangle black on mask.
func Blank(mask *gocv.Mat, rects []image.Rectangle) {
	for _, r := range rects {
		gocv.Rectangle(mask, r, black, -1)
	}
}
