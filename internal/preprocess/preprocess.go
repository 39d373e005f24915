// Package preprocess turns raw BGR camera frames into single-channel hand
// silhouettes.
//
// The main implementation, SkinSegmenter, first learns a background model
// from the opening frames of the stream, then removes the background, keeps
// skin-coloured pixels and blanks out detected faces.
package preprocess

import (
	"errors"
	"fmt"

	"gocv.io/x/gocv"
)

var (
	// ErrInvalidFrame is returned for empty frames or frames that are not
	// three channel BGR.
	ErrInvalidFrame = errors.New("invalid frame")

	// ErrLearningBackground is returned while frames are being absorbed
	// into the background model. The frame should be skipped.
	ErrLearningBackground = errors.New("learning background")
)

// Preprocessor converts a frame into a binary mask of the same size.
type Preprocessor interface {
	// Process returns a single-channel mask. The caller owns the result
	// and must Close it.
	Process(frame gocv.Mat) (gocv.Mat, error)

	// Close releases native resources.
	Close() error
}

// Config holds the preprocessing parameters.
type Config struct {
	// BackgroundFrames is the number of frames averaged into the background.
	BackgroundFrames int `mapstructure:"background_frames"`

	// BlurSize is the Gaussian kernel size; it must be odd.
	BlurSize  int     `mapstructure:"blur_size"`
	BlurSigma float64 `mapstructure:"blur_sigma"`

	// OpenIterations is the number of erode/dilate passes of each opening.
	OpenIterations int `mapstructure:"open_iterations"`

	// InvThreshold is the gray level under which pixels become foreground.
	InvThreshold float64 `mapstructure:"inv_threshold"`

	// Skin bounds in YCrCb space.
	SkinCrMin float64 `mapstructure:"skin_cr_min"`
	SkinCrMax float64 `mapstructure:"skin_cr_max"`
	SkinCbMin float64 `mapstructure:"skin_cb_min"`
	SkinCbMax float64 `mapstructure:"skin_cb_max"`

	// CascadePath is a Haar cascade used to blank faces. Empty disables
	// face blanking.
	CascadePath      string  `mapstructure:"cascade_path"`
	FaceScale        float64 `mapstructure:"face_scale"`
	FaceMinNeighbors int     `mapstructure:"face_min_neighbors"`
	FaceMinSize      int     `mapstructure:"face_min_size"`
}

// DefaultConfig returns the reference preprocessing parameters.
func DefaultConfig() Config {
	return Config{
		BackgroundFrames: 30,
		BlurSize:         7,
		BlurSigma:        1.8,
		OpenIterations:   3,
		InvThreshold:     120,
		SkinCrMin:        133,
		SkinCrMax:        173,
		SkinCbMin:        77,
		SkinCbMax:        127,
		FaceScale:        1.3,
		FaceMinNeighbors: 2,
		FaceMinSize:      30,
	}
}

// Validate checks that the parameters can drive the OpenCV calls.
func (c Config) Validate() error {
	if c.BackgroundFrames < 1 {
		return fmt.Errorf("background frames must be at least 1, got %d", c.BackgroundFrames)
	}
	if c.BlurSize < 1 || c.BlurSize%2 == 0 {
		return fmt.Errorf("blur size must be a positive odd number, got %d", c.BlurSize)
	}
	if c.SkinCrMin > c.SkinCrMax || c.SkinCbMin > c.SkinCbMax {
		return errors.New("skin bounds are inverted")
	}
	if c.CascadePath != "" && c.FaceScale <= 1 {
		return fmt.Errorf("face scale must be greater than 1, got %v", c.FaceScale)
	}
	return nil
}

func checkFrame(frame gocv.Mat) error {
	if frame.Empty() {
		return fmt.Errorf("%w: empty", ErrInvalidFrame)
	}
	if frame.Channels() != 3 {
		return fmt.Errorf("%w: %d channels, want 3", ErrInvalidFrame, frame.Channels())
	}
	return nil
}
