// Package config assembles the application configuration from defaults,
// persisted settings and command-line flags.
//
// Every leaf field is addressable by a dotted key such as
// "detector.min_defect_depth". The same keys are used by the settings table,
// the settings API and the command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ayusman/handmade/internal/board"
	"github.com/ayusman/handmade/internal/capture"
	"github.com/ayusman/handmade/internal/detector"
	"github.com/ayusman/handmade/internal/preprocess"
	"github.com/ayusman/handmade/internal/recorder"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr      string `mapstructure:"addr"`
	StaticDir string `mapstructure:"static_dir"`
}

// StoreConfig configures the SQLite database.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// HooksConfig configures hook discovery and execution.
type HooksConfig struct {
	Dir       string        `mapstructure:"dir"`
	Timeout   time.Duration `mapstructure:"timeout"`
	QueueSize int           `mapstructure:"queue_size"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level   string `mapstructure:"level"`
	Console bool   `mapstructure:"console"`
}

// TrayConfig configures the desktop tray menu.
type TrayConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Config is the complete application configuration.
type Config struct {
	Capture    capture.Config    `mapstructure:"capture"`
	Preprocess preprocess.Config `mapstructure:"preprocess"`
	Detector   detector.Config   `mapstructure:"detector"`
	Board      board.Config      `mapstructure:"board"`
	Recorder   recorder.Config   `mapstructure:"recorder"`
	Server     ServerConfig      `mapstructure:"server"`
	Store      StoreConfig       `mapstructure:"store"`
	Hooks      HooksConfig       `mapstructure:"hooks"`
	Log        LogConfig         `mapstructure:"log"`
	Tray       TrayConfig        `mapstructure:"tray"`
}

// DataDir returns the per-user data directory, ~/.handmade. It falls back
// to a relative .handmade directory when the home directory is unknown.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".handmade"
	}
	return filepath.Join(home, ".handmade")
}

// Default returns the reference configuration.
func Default() Config {
	dataDir := DataDir()

	return Config{
		Capture:    capture.DefaultConfig(),
		Preprocess: preprocess.DefaultConfig(),
		Detector:   detector.DefaultConfig(),
		Board:      board.DefaultConfig(),
		Recorder:   recorder.DefaultConfig(),
		Server: ServerConfig{
			Addr: ":8080",
		},
		Store: StoreConfig{
			Path: filepath.Join(dataDir, "handmade.db"),
		},
		Hooks: HooksConfig{
			Dir:       filepath.Join(dataDir, "hooks"),
			Timeout:   5 * time.Second,
			QueueSize: 16,
		},
		Log: LogConfig{
			Level:   "info",
			Console: true,
		},
	}
}

// Validate reports the first setting that cannot work.
func (c Config) Validate() error {
	switch {
	case c.Capture.Width <= 0 || c.Capture.Height <= 0:
		return fmt.Errorf("%w: capture size must be positive", ErrInvalidConfig)
	case c.Capture.FPS <= 0:
		return fmt.Errorf("%w: capture.fps must be positive", ErrInvalidConfig)
	case c.Detector.InscribedStride <= 0:
		return fmt.Errorf("%w: detector.inscribed_stride must be positive", ErrInvalidConfig)
	case c.Detector.ROIScale <= 0:
		return fmt.Errorf("%w: detector.roi_scale must be positive", ErrInvalidConfig)
	case c.Detector.MinContourArea < 0 || c.Detector.MinDefectDepth < 0:
		return fmt.Errorf("%w: detector thresholds must not be negative", ErrInvalidConfig)
	case c.Board.Width <= 0 || c.Board.Height <= 0:
		return fmt.Errorf("%w: board size must be positive", ErrInvalidConfig)
	case c.Board.EraseTipCount <= 0:
		return fmt.Errorf("%w: board.erase_tip_count must be positive", ErrInvalidConfig)
	case c.Board.EraseScale <= 0 || c.Board.MaxStrokeGap <= 0:
		return fmt.Errorf("%w: board scales must be positive", ErrInvalidConfig)
	case c.Board.StrokeThickness <= 0:
		return fmt.Errorf("%w: board.stroke_thickness must be positive", ErrInvalidConfig)
	case c.Hooks.Timeout <= 0:
		return fmt.Errorf("%w: hooks.timeout must be positive", ErrInvalidConfig)
	case c.Hooks.QueueSize <= 0:
		return fmt.Errorf("%w: hooks.queue_size must be positive", ErrInvalidConfig)
	case c.Store.Path == "":
		return fmt.Errorf("%w: store.path is required", ErrInvalidConfig)
	}

	if _, err := detector.PairingByName(c.Detector.Pairing); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := c.Preprocess.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return nil
}
