package hook

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"path/filepath"
	"testing"
	"time"
)

func newTestHook(t *testing.T, script string) *Hook {
	t.Helper()
	dir := writeHook(t, t.TempDir(), "test-hook", script, "run")
	return &Hook{
		Manifest:   Manifest{Name: "test-hook", Executable: "run.sh", Actions: []string{"run"}},
		Path:       dir,
		Executable: filepath.Join(dir, "run.sh"),
	}
}

func TestExecutor_Execute(t *testing.T) {
	skipOnWindows(t)

	h := newTestHook(t, "#!/bin/sh\necho '{\"success\":true,\"data\":{\"message\":\"hello world\"}}'\n")

	resp, err := NewExecutor(5*time.Second).Execute(context.Background(), h, &Request{Action: "run", Event: "erase"})
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}
	if !resp.Success {
		t.Error("expected success=true, got false")
	}

	var data map[string]any
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("failed to unmarshal response data: %v", err)
	}
	if data["message"] != "hello world" {
		t.Errorf("expected message 'hello world', got %v", data["message"])
	}
}

func TestExecutor_Execute_ReadsStdin(t *testing.T) {
	skipOnWindows(t)

	h := newTestHook(t, `#!/bin/sh
INPUT=$(cat)
echo "{\"success\":true,\"data\":{\"received\":$INPUT}}"
`)

	req := &Request{
		Action:  "run",
		Event:   "stroke_start",
		Session: "abc",
		Frame:   12,
		Point:   image.Pt(40, 50),
		Config:  json.RawMessage(`{"setting":"enabled"}`),
	}

	resp, err := NewExecutor(5*time.Second).Execute(context.Background(), h, req)
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}

	var data struct {
		Received Request `json:"received"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("failed to unmarshal response data: %v", err)
	}
	got := data.Received
	if got.Event != "stroke_start" || got.Frame != 12 || got.Point != image.Pt(40, 50) {
		t.Errorf("hook received %+v", got)
	}
}

func TestExecutor_Timeout(t *testing.T) {
	skipOnWindows(t)

	h := newTestHook(t, "#!/bin/sh\nsleep 10\necho '{\"success\":true}'\n")

	_, err := NewExecutor(100*time.Millisecond).Execute(context.Background(), h, &Request{Action: "run"})
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("Execute() error = %v, want ErrTimeout", err)
	}
}

func TestExecutor_Execute_Failures(t *testing.T) {
	skipOnWindows(t)

	tests := []struct {
		name   string
		script string
	}{
		{name: "invalid json", script: "#!/bin/sh\necho 'not valid json'\n"},
		{name: "non-zero exit", script: "#!/bin/sh\necho 'Error: something failed' >&2\nexit 1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHook(t, tt.script)
			if _, err := NewExecutor(5*time.Second).Execute(context.Background(), h, &Request{Action: "run"}); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}

func TestExecutor_Execute_ErrorResponse(t *testing.T) {
	skipOnWindows(t)

	h := newTestHook(t, "#!/bin/sh\necho '{\"success\":false,\"error\":\"something went wrong\"}'\n")

	resp, err := NewExecutor(5*time.Second).Execute(context.Background(), h, &Request{Action: "run"})
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}
	if resp.Success {
		t.Error("expected success=false, got true")
	}
	if resp.Error != "something went wrong" {
		t.Errorf("expected error 'something went wrong', got %q", resp.Error)
	}
}
