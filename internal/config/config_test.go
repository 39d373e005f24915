package config

import (
	"errors"
	"flag"
	"io"
	"testing"
	"time"
)

func TestDefault_Validates(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() error = %v", err)
	}

	if cfg.Detector.MinContourArea != 5000 {
		t.Errorf("MinContourArea = %v, want 5000", cfg.Detector.MinContourArea)
	}
	if cfg.Detector.InscribedStride != 10 {
		t.Errorf("InscribedStride = %v, want 10", cfg.Detector.InscribedStride)
	}
	if cfg.Board.EraseTipCount != 10 {
		t.Errorf("EraseTipCount = %v, want 10", cfg.Board.EraseTipCount)
	}
	if cfg.Board.MaxStrokeGap != 200 {
		t.Errorf("MaxStrokeGap = %v, want 200", cfg.Board.MaxStrokeGap)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "zero width", mutate: func(c *Config) { c.Capture.Width = 0 }},
		{name: "zero stride", mutate: func(c *Config) { c.Detector.InscribedStride = 0 }},
		{name: "negative roi scale", mutate: func(c *Config) { c.Detector.ROIScale = -1 }},
		{name: "unknown pairing", mutate: func(c *Config) { c.Detector.Pairing = "random" }},
		{name: "zero erase tips", mutate: func(c *Config) { c.Board.EraseTipCount = 0 }},
		{name: "even blur", mutate: func(c *Config) { c.Preprocess.BlurSize = 6 }},
		{name: "zero hook timeout", mutate: func(c *Config) { c.Hooks.Timeout = 0 }},
		{name: "empty store path", mutate: func(c *Config) { c.Store.Path = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestApplySettings(t *testing.T) {
	cfg := Default()

	err := ApplySettings(&cfg, map[string]string{
		"detector.min_defect_depth": "25.5",
		"detector.pairing":          "nearest",
		"board.max_stroke_gap":      "150",
		"board.reset_on_lost":       "true",
		"capture.device_id":         "2",
		"hooks.timeout":             "750ms",
	})
	if err != nil {
		t.Fatalf("ApplySettings() error = %v", err)
	}

	if cfg.Detector.MinDefectDepth != 25.5 {
		t.Errorf("MinDefectDepth = %v, want 25.5", cfg.Detector.MinDefectDepth)
	}
	if cfg.Detector.Pairing != "nearest" {
		t.Errorf("Pairing = %q, want nearest", cfg.Detector.Pairing)
	}
	if cfg.Board.MaxStrokeGap != 150 {
		t.Errorf("MaxStrokeGap = %v, want 150", cfg.Board.MaxStrokeGap)
	}
	if !cfg.Board.ResetOnLost {
		t.Error("ResetOnLost = false, want true")
	}
	if cfg.Capture.DeviceID != 2 {
		t.Errorf("DeviceID = %d, want 2", cfg.Capture.DeviceID)
	}
	if cfg.Hooks.Timeout != 750*time.Millisecond {
		t.Errorf("Timeout = %v, want 750ms", cfg.Hooks.Timeout)
	}

	// Untouched fields keep their defaults.
	if cfg.Detector.MinContourArea != 5000 {
		t.Errorf("MinContourArea = %v, want 5000", cfg.Detector.MinContourArea)
	}
	if cfg.Board.EraseTipCount != 10 {
		t.Errorf("EraseTipCount = %v, want 10", cfg.Board.EraseTipCount)
	}
}

func TestApplySettings_Rejects(t *testing.T) {
	tests := []struct {
		name     string
		settings map[string]string
	}{
		{name: "unknown key", settings: map[string]string{"detector.bogus": "1"}},
		{name: "unknown section", settings: map[string]string{"bogus.key": "1"}},
		{name: "bad int", settings: map[string]string{"board.erase_tip_count": "many"}},
		{name: "bad duration", settings: map[string]string{"hooks.timeout": "soon"}},
		{name: "empty segment", settings: map[string]string{"board..width": "1"}},
		{name: "section as value", settings: map[string]string{"board": "1", "board.width": "2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			if err := ApplySettings(&cfg, tt.settings); err == nil {
				t.Fatal("expected error, got nil")
			}
			if cfg != Default() {
				t.Error("config was modified by a rejected update")
			}
		})
	}
}

func TestSettings_RoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Board.MaxStrokeGap = 123
	cfg.Hooks.Timeout = 2 * time.Second

	settings, err := Settings(cfg)
	if err != nil {
		t.Fatalf("Settings() error = %v", err)
	}
	if settings["board.max_stroke_gap"] != "123" {
		t.Errorf("board.max_stroke_gap = %q, want 123", settings["board.max_stroke_gap"])
	}
	if settings["hooks.timeout"] != "2s" {
		t.Errorf("hooks.timeout = %q, want 2s", settings["hooks.timeout"])
	}

	restored := Default()
	if err := ApplySettings(&restored, settings); err != nil {
		t.Fatalf("ApplySettings() error = %v", err)
	}
	if restored != cfg {
		t.Errorf("restored config = %+v, want %+v", restored, cfg)
	}
}

func TestKeys(t *testing.T) {
	keys := Keys()
	want := map[string]bool{
		"capture.device_id":         false,
		"detector.min_defect_depth": false,
		"board.erase_scale":         false,
		"recorder.enabled":          false,
		"hooks.queue_size":          false,
		"log.level":                 false,
	}

	for i, k := range keys {
		if i > 0 && keys[i-1] >= k {
			t.Fatalf("Keys() not sorted at %q", k)
		}
		if _, ok := want[k]; ok {
			want[k] = true
		}
	}
	for k, found := range want {
		if !found {
			t.Errorf("Keys() missing %q", k)
		}
	}
}

func TestRegisterFlags(t *testing.T) {
	fs := flag.NewFlagSet("handmade", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	flags := RegisterFlags(fs, Default())

	args := []string{"-capture.preview", "-board.max_stroke_gap=90", "-server.addr", ":9000"}
	if err := fs.Parse(args); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if got := len(flags.Overrides()); got != 3 {
		t.Errorf("Overrides() has %d entries, want 3", got)
	}

	cfg := Default()
	if err := flags.Apply(&cfg); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if !cfg.Capture.Preview {
		t.Error("Preview = false, want true")
	}
	if cfg.Board.MaxStrokeGap != 90 {
		t.Errorf("MaxStrokeGap = %v, want 90", cfg.Board.MaxStrokeGap)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("Addr = %q, want :9000", cfg.Server.Addr)
	}
}

func TestRegisterFlags_BadBool(t *testing.T) {
	fs := flag.NewFlagSet("handmade", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	RegisterFlags(fs, Default())

	if err := fs.Parse([]string{"-capture.preview=maybe"}); err == nil {
		t.Error("expected parse error for invalid bool")
	}
}
