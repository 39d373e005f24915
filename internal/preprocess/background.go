package preprocess

import (
	"image"
	"sync"

	"github.com/rs/zerolog"
	"gocv.io/x/gocv"
)

// BackgroundLearner builds a background model as the running average of the
// frames it is given. After n frames the model is the mean of all of them.
type BackgroundLearner struct {
	target int
	count  int
	model  gocv.Mat
	logger zerolog.Logger
	mu     sync.Mutex
}

// NewBackgroundLearner creates a learner that is ready after target frames.
func NewBackgroundLearner(target int, logger zerolog.Logger) *BackgroundLearner {
	if target < 1 {
		target = 1
	}
	return &BackgroundLearner{
		target: target,
		model:  gocv.NewMat(),
		logger: logger,
	}
}

// Add folds a frame into the model and reports whether the model is ready.
// Frames added after the model is ready are ignored.
func (b *BackgroundLearner) Add(frame gocv.Mat) (bool, error) {
	if err := checkFrame(frame); err != nil {
		return false, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.count >= b.target {
		return true, nil
	}

	if b.count == 0 || b.model.Empty() || b.model.Cols() != frame.Cols() || b.model.Rows() != frame.Rows() {
		frame.CopyTo(&b.model)
		b.count = 1
	} else {
		// The new frame carries weight 1/(n+1) so the model stays the mean.
		beta := 1.0 / float64(b.count+1)
		sum := gocv.NewMat()
		gocv.AddWeighted(b.model, 1-beta, frame, beta, 0, &sum)
		b.model.Close()
		b.model = sum
		b.count++
	}

	ready := b.count >= b.target
	if ready {
		b.logger.Info().Int("frames", b.count).Msg("background learned")
	}
	return ready, nil
}

// Ready reports whether enough frames have been averaged.
func (b *BackgroundLearner) Ready() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count >= b.target
}

// Count returns the number of frames averaged so far.
func (b *BackgroundLearner) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

// Background returns a copy of the current model. The caller must Close it.
func (b *BackgroundLearner) Background() gocv.Mat {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.model.Clone()
}

// Size returns the dimensions of the model, or the zero point before the
// first frame.
func (b *BackgroundLearner) Size() image.Point {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.model.Empty() {
		return image.Point{}
	}
	return image.Pt(b.model.Cols(), b.model.Rows())
}

// Reset discards the model so learning starts over.
func (b *BackgroundLearner) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.model.Close()
	b.model = gocv.NewMat()
	b.count = 0
	b.logger.Info().Msg("background reset")
}

// Close releases the model.
func (b *BackgroundLearner) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.count = 0
	return b.model.Close()
}
