// Package detector turns a binary hand silhouette into fingertip points.
//
// The pipeline follows the palm-and-defects approach: the silhouette is
// reduced to simplified polygon curves, the palm is approximated by the
// largest inscribed circle of the first curve, curves are clipped to a region
// of interest around the palm, and fingertips are inferred by pairing the
// endpoints of deep convexity defects.
package detector

import (
	"errors"
	"image"

	"gocv.io/x/gocv"

	"github.com/ayusman/handmade/internal/geometry"
)

// ErrInvalidMask is returned when a mask is missing, empty or not single channel.
var ErrInvalidMask = errors.New("invalid silhouette mask")

// Detector defines the interface for fingertip detection implementations.
type Detector interface {
	// Detect analyzes a single-channel silhouette mask and returns the
	// fingertips and palm found in it. Absence of a hand is not an error:
	// the result simply carries no tips.
	Detect(mask *gocv.Mat) (Result, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Result is the per-frame output of a Detector.
type Result struct {
	Tips      []image.Point            `json:"tips"`
	Palm      geometry.Circle          `json:"palm"`
	Enclosing geometry.EnclosingCircle `json:"enclosing"`
	FrameSize image.Point              `json:"frame_size"`

	// Curves are the region-of-interest curves; Shapes the curves that
	// survived hull validation. Both are kept for annotation only.
	Curves [][]image.Point `json:"-"`
	Shapes []Shape         `json:"-"`
}

// Config holds the tuning parameters of the contour detector.
type Config struct {
	// MinContourArea is the area in px² a contour must exceed to be kept.
	MinContourArea float64 `mapstructure:"min_contour_area"`

	// ApproxEpsilon is the polygon approximation tolerance in pixels.
	ApproxEpsilon float64 `mapstructure:"approx_epsilon"`

	// InscribedStride is the grid step in pixels of the palm circle scan.
	InscribedStride int `mapstructure:"inscribed_stride"`

	// ROIScale bounds the region of interest in palm radii.
	ROIScale float64 `mapstructure:"roi_scale"`

	// MinDefectDepth is the depth in pixels a defect must exceed.
	MinDefectDepth float64 `mapstructure:"min_defect_depth"`

	// PairRatio is the fraction of the palm radius under which two defect
	// endpoints are treated as the same finger.
	PairRatio float64 `mapstructure:"pair_ratio"`

	// PalmScale is the distance in palm radii a tip must exceed from the
	// palm center.
	PalmScale float64 `mapstructure:"palm_scale"`

	// Pairing names the endpoint pairing strategy: "first" or "nearest".
	Pairing string `mapstructure:"pairing"`

	// AllShapes processes every region-of-interest curve instead of only
	// the first one.
	AllShapes bool `mapstructure:"all_shapes"`
}

// DefaultConfig returns the reference tuning.
func DefaultConfig() Config {
	return Config{
		MinContourArea:  5000,
		ApproxEpsilon:   2.0,
		InscribedStride: 10,
		ROIScale:        3.5,
		MinDefectDepth:  20,
		PairRatio:       0.5,
		PalmScale:       2.0,
		Pairing:         PairingFirst,
		AllShapes:       false,
	}
}

// limits extracts the pairing thresholds from the config.
func (c Config) limits() PairLimits {
	return PairLimits{PairRatio: c.PairRatio, PalmScale: c.PalmScale}
}
