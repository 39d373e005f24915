package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name string
		want zerolog.Level
	}{
		{name: "debug", want: zerolog.DebugLevel},
		{name: "WARN", want: zerolog.WarnLevel},
		{name: " error ", want: zerolog.ErrorLevel},
		{name: "", want: zerolog.InfoLevel},
		{name: "verbose", want: zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseLevel(tt.name); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := Component(New(&buf, "info"), "detector")

	logger.Info().Int("tips", 3).Msg("frame processed")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to decode log entry: %v", err)
	}

	if entry["component"] != "detector" {
		t.Errorf("component = %v, want detector", entry["component"])
	}
	if entry["message"] != "frame processed" {
		t.Errorf("message = %v, want 'frame processed'", entry["message"])
	}
	if entry["tips"] != float64(3) {
		t.Errorf("tips = %v, want 3", entry["tips"])
	}
	if _, ok := entry["time"]; !ok {
		t.Error("expected timestamp field")
	}
}

func TestNew_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "warn")

	logger.Info().Msg("hidden")
	if buf.Len() != 0 {
		t.Errorf("info entry written at warn level: %s", buf.String())
	}

	logger.Warn().Msg("shown")
	if buf.Len() == 0 {
		t.Error("warn entry not written at warn level")
	}
}
