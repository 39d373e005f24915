package detector

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// ContourDetector implements Detector with the palm-and-defects heuristic.
// It is stateless between frames and safe to reuse for a single stream.
type ContourDetector struct {
	cfg  Config
	pair PairFn
}

// NewContourDetector creates a ContourDetector with the given configuration.
func NewContourDetector(cfg Config) (*ContourDetector, error) {
	if cfg.InscribedStride <= 0 {
		return nil, fmt.Errorf("inscribed stride must be positive, got %d", cfg.InscribedStride)
	}
	if cfg.ROIScale <= 0 {
		return nil, fmt.Errorf("roi scale must be positive, got %v", cfg.ROIScale)
	}

	pair, err := PairingByName(cfg.Pairing)
	if err != nil {
		return nil, err
	}

	return &ContourDetector{cfg: cfg, pair: pair}, nil
}

// Config returns the detector configuration.
func (d *ContourDetector) Config() Config {
	return d.cfg
}

// Detect runs the fingertip pipeline on a single-channel mask.
func (d *ContourDetector) Detect(mask *gocv.Mat) (Result, error) {
	if mask == nil || mask.Empty() {
		return Result{}, ErrInvalidMask
	}
	if mask.Channels() != 1 {
		return Result{}, fmt.Errorf("%w: %d channels", ErrInvalidMask, mask.Channels())
	}

	size := image.Pt(mask.Cols(), mask.Rows())
	res := Result{FrameSize: size}

	// FindContours may modify its input on older OpenCV builds.
	work := mask.Clone()
	defer work.Close()

	curves := PolyCurves(work, d.cfg.MinContourArea, d.cfg.ApproxEpsilon)
	res.Palm = FindInscribedCircle(curves, size, d.cfg.InscribedStride)
	if !res.Palm.Found() {
		return res, nil
	}

	res.Curves = RegionOfInterest(curves, res.Palm, d.cfg.ROIScale)
	res.Enclosing = FindMinEnclosingCircle(res.Curves)
	res.Shapes = BuildShapes(res.Curves)

	shapes := res.Shapes
	if !d.cfg.AllShapes && len(shapes) > 1 {
		shapes = shapes[:1]
	}

	for _, shape := range shapes {
		res.Tips = append(res.Tips, FindFingertips(shape, res.Palm, d.cfg, d.pair)...)
	}

	return res, nil
}

// Close is a no-op; the detector holds no native resources between frames.
func (d *ContourDetector) Close() error {
	return nil
}
