// Package recorder dumps numbered frames of each pipeline stage to disk so
// a session can be assembled into a movie afterwards.
package recorder

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gocv.io/x/gocv"
)

// Stage names a pipeline stage; it is also the dump subdirectory.
type Stage string

const (
	StageProcessed Stage = "processed"
	StageDetected  Stage = "detected"
	StageBoard     Stage = "board"
)

// Config enables frame dumps.
type Config struct {
	Enabled bool   `mapstructure:"enabled"`
	Dir     string `mapstructure:"dir"`
}

// DefaultConfig returns a disabled recorder writing under ./movies.
func DefaultConfig() Config {
	return Config{Dir: "movies"}
}

// Recorder writes <dir>/<stage>/<stage>_NNN.jpg files.
type Recorder struct {
	cfg    Config
	logger zerolog.Logger
}

// New creates a Recorder. When enabled, the stage directories are created.
func New(cfg Config, logger zerolog.Logger) (*Recorder, error) {
	r := &Recorder{cfg: cfg, logger: logger}
	if !cfg.Enabled {
		return r, nil
	}

	for _, stage := range []Stage{StageProcessed, StageDetected, StageBoard} {
		if err := os.MkdirAll(filepath.Join(cfg.Dir, string(stage)), 0755); err != nil {
			return nil, fmt.Errorf("create %s dump dir: %w", stage, err)
		}
	}

	logger.Info().Str("dir", cfg.Dir).Msg("frame dumps enabled")
	return r, nil
}

// Enabled reports whether dumps are written.
func (r *Recorder) Enabled() bool {
	return r != nil && r.cfg.Enabled
}

// Path returns the dump path for a stage and frame index.
func (r *Recorder) Path(stage Stage, index int) string {
	return filepath.Join(r.cfg.Dir, string(stage), fmt.Sprintf("%s_%03d.jpg", stage, index))
}

// Write dumps img for the given stage and frame index. It is a no-op when
// the recorder is disabled.
func (r *Recorder) Write(stage Stage, index int, img gocv.Mat) error {
	if !r.Enabled() || img.Empty() {
		return nil
	}

	path := r.Path(stage, index)
	if ok := gocv.IMWrite(path, img); !ok {
		return fmt.Errorf("write %s", path)
	}

	r.logger.Debug().Str("stage", string(stage)).Int("frame", index).Msg("frame dumped")
	return nil
}
