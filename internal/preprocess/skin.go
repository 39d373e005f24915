package preprocess

import (
	"errors"
	"image"
	"sync"

	"github.com/rs/zerolog"
	"gocv.io/x/gocv"
	"golang.org/x/image/colornames"
)

var black = colornames.Black

// SkinSegmenter isolates skin-coloured foreground against a learned
// background.
type SkinSegmenter struct {
	cfg     Config
	learner *BackgroundLearner
	faces   *FaceBlanker
	kernel  gocv.Mat
	logger  zerolog.Logger

	mu sync.Mutex
	bg gocv.Mat // blurred YCrCb background, empty until learned
}

// NewSkinSegmenter creates a segmenter. A cascade that fails to load is
// logged and face blanking is skipped.
func NewSkinSegmenter(cfg Config, logger zerolog.Logger) (*SkinSegmenter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &SkinSegmenter{
		cfg:     cfg,
		learner: NewBackgroundLearner(cfg.BackgroundFrames, logger),
		kernel:  gocv.GetStructuringElement(gocv.MorphRect, image.Pt(3, 3)),
		logger:  logger,
		bg:      gocv.NewMat(),
	}

	if cfg.CascadePath != "" {
		faces, err := NewFaceBlanker(cfg.CascadePath, cfg)
		if err != nil {
			logger.Warn().Err(err).Msg("face blanking disabled")
		} else {
			s.faces = faces
		}
	}

	return s, nil
}

// Learning reports whether the background model is still being built.
func (s *SkinSegmenter) Learning() bool {
	return !s.learner.Ready()
}

// Relearn discards the background so the next frames rebuild it.
func (s *SkinSegmenter) Relearn() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.learner.Reset()
	s.bg.Close()
	s.bg = gocv.NewMat()
}

// SetBackground installs a BGR background directly, skipping learning.
func (s *SkinSegmenter) SetBackground(bg gocv.Mat) error {
	if err := checkFrame(bg); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.setBackgroundLocked(bg)
	return nil
}

func (s *SkinSegmenter) setBackgroundLocked(bg gocv.Mat) {
	ycrcb := gocv.NewMat()
	defer ycrcb.Close()
	gocv.CvtColor(bg, &ycrcb, gocv.ColorBGRToYCrCb)

	s.bg.Close()
	s.bg = gocv.NewMat()
	s.blur(ycrcb, &s.bg)
}

// Process implements Preprocessor. While the background is being learned it
// absorbs the frame and returns ErrLearningBackground.
func (s *SkinSegmenter) Process(frame gocv.Mat) (gocv.Mat, error) {
	if err := checkFrame(frame); err != nil {
		return gocv.NewMat(), err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.bg.Empty() {
		ready, err := s.learner.Add(frame)
		if err != nil {
			return gocv.NewMat(), err
		}
		if ready {
			model := s.learner.Background()
			s.setBackgroundLocked(model)
			model.Close()
		}
		return gocv.NewMat(), ErrLearningBackground
	}

	if s.bg.Cols() != frame.Cols() || s.bg.Rows() != frame.Rows() {
		return gocv.NewMat(), errors.New("frame size differs from background")
	}

	return s.segment(frame), nil
}

func (s *SkinSegmenter) segment(frame gocv.Mat) gocv.Mat {
	var faces []image.Rectangle
	if s.faces != nil {
		faces = s.faces.Detect(frame)
	}

	raw := gocv.NewMat()
	defer raw.Close()
	gocv.CvtColor(frame, &raw, gocv.ColorBGRToYCrCb)

	blurred := gocv.NewMat()
	defer blurred.Close()
	s.blur(raw, &blurred)

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.Subtract(blurred, s.bg, &diff)

	fg := s.thresholdChannels(diff)
	defer fg.Close()
	s.open(&fg)

	masked := gocv.NewMat()
	defer masked.Close()
	gocv.BitwiseAnd(fg, raw, &masked)

	bgr := gocv.NewMat()
	defer bgr.Close()
	gocv.CvtColor(masked, &bgr, gocv.ColorYCrCbToBGR)

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(bgr, &gray, gocv.ColorBGRToGray)

	dark := gocv.NewMat()
	defer dark.Close()
	gocv.Threshold(gray, &dark, float32(s.cfg.InvThreshold), 255, gocv.ThresholdBinaryInv)

	skin := gocv.NewMat()
	defer skin.Close()
	lower := gocv.NewScalar(0, s.cfg.SkinCrMin, s.cfg.SkinCbMin, 0)
	upper := gocv.NewScalar(255, s.cfg.SkinCrMax, s.cfg.SkinCbMax, 0)
	gocv.InRangeWithScalar(raw, lower, upper, &skin)

	mask := gocv.NewMat()
	gocv.Compare(dark, skin, &mask, gocv.CompareEQ)

	Blank(&mask, faces)

	out := gocv.NewMat()
	s.blur(mask, &out)
	mask.Close()

	return out
}

// thresholdChannels applies Otsu to each channel and an opening to each
// result, then merges them back.
func (s *SkinSegmenter) thresholdChannels(src gocv.Mat) gocv.Mat {
	channels := gocv.Split(src)
	defer func() {
		for _, c := range channels {
			c.Close()
		}
	}()

	for i := range channels {
		gocv.Threshold(channels[i], &channels[i], 0, 255, gocv.ThresholdBinary+gocv.ThresholdOtsu)
		s.open(&channels[i])
	}

	merged := gocv.NewMat()
	gocv.Merge(channels, &merged)
	return merged
}

// open erodes then dilates m in place with the 3x3 rectangle.
func (s *SkinSegmenter) open(m *gocv.Mat) {
	for i := 0; i < s.cfg.OpenIterations; i++ {
		gocv.Erode(*m, m, s.kernel)
	}
	for i := 0; i < s.cfg.OpenIterations; i++ {
		gocv.Dilate(*m, m, s.kernel)
	}
}

func (s *SkinSegmenter) blur(src gocv.Mat, dst *gocv.Mat) {
	k := image.Pt(s.cfg.BlurSize, s.cfg.BlurSize)
	gocv.GaussianBlur(src, dst, k, s.cfg.BlurSigma, s.cfg.BlurSigma, gocv.BorderDefault)
}

// Close releases the background, kernel and cascade.
func (s *SkinSegmenter) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bg.Close()
	s.kernel.Close()
	if s.faces != nil {
		s.faces.Close()
	}
	return s.learner.Close()
}

// ThresholdMask is a Preprocessor for frames that already contain a clean
// silhouette, such as recorded masks: it converts to gray and binarizes.
type ThresholdMask struct {
	Level float32
}

// Process implements Preprocessor.
func (t ThresholdMask) Process(frame gocv.Mat) (gocv.Mat, error) {
	if frame.Empty() {
		return gocv.NewMat(), ErrInvalidFrame
	}

	gray := gocv.NewMat()
	defer gray.Close()
	if frame.Channels() == 1 {
		frame.CopyTo(&gray)
	} else {
		gocv.CvtColor(frame, &gray, gocv.ColorBGRToGray)
	}

	level := t.Level
	if level <= 0 {
		level = 127
	}

	mask := gocv.NewMat()
	gocv.Threshold(gray, &mask, level, 255, gocv.ThresholdBinary)
	return mask, nil
}

// Close implements Preprocessor.
func (ThresholdMask) Close() error { return nil }
