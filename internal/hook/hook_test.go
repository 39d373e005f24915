package hook

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/ayusman/handmade/internal/logging"
)

// writeHook creates <dir>/<name>/hook.json and, when script is non-empty, an
// executable shell script named run.sh.
func writeHook(t *testing.T, dir, name, script string, actions ...string) string {
	t.Helper()

	hookDir := filepath.Join(dir, name)
	if err := os.MkdirAll(hookDir, 0755); err != nil {
		t.Fatalf("failed to create hook dir: %v", err)
	}

	manifest := Manifest{
		Name:       name,
		Version:    "1.0.0",
		Executable: "run.sh",
		Actions:    actions,
	}
	data, err := json.Marshal(manifest)
	if err != nil {
		t.Fatalf("failed to marshal manifest: %v", err)
	}
	if err := os.WriteFile(filepath.Join(hookDir, ManifestFile), data, 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}

	if script != "" {
		if err := os.WriteFile(filepath.Join(hookDir, "run.sh"), []byte(script), 0755); err != nil {
			t.Fatalf("failed to write script: %v", err)
		}
	}

	return hookDir
}

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("skipping shell script test on Windows")
	}
}

func TestManager_Discover(t *testing.T) {
	dir := t.TempDir()
	hookDir := writeHook(t, dir, "notify", "", "say", "beep")
	writeHook(t, dir, "archive", "")

	m := NewManager(dir, logging.Nop())
	if err := m.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	hooks := m.List()
	if len(hooks) != 2 {
		t.Fatalf("expected 2 hooks, got %d", len(hooks))
	}
	if hooks[0].Manifest.Name != "archive" {
		t.Errorf("List() should be sorted, first = %q", hooks[0].Manifest.Name)
	}

	h, err := m.Get("notify")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if h.Path != hookDir {
		t.Errorf("Path = %q, want %q", h.Path, hookDir)
	}
	if h.Executable != filepath.Join(hookDir, "run.sh") {
		t.Errorf("Executable = %q", h.Executable)
	}
}

func TestManager_Discover_SkipsInvalid(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad")
	if err := os.MkdirAll(bad, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(bad, ManifestFile), []byte("not valid json"), 0644); err != nil {
		t.Fatal(err)
	}

	nameless := filepath.Join(dir, "nameless")
	if err := os.MkdirAll(nameless, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(nameless, ManifestFile), []byte(`{"executable":"x"}`), 0644); err != nil {
		t.Fatal(err)
	}

	if err := os.MkdirAll(filepath.Join(dir, "empty"), 0755); err != nil {
		t.Fatal(err)
	}

	m := NewManager(dir, logging.Nop())
	if err := m.Discover(); err != nil {
		t.Fatalf("Discover() failed unexpectedly: %v", err)
	}
	if n := len(m.List()); n != 0 {
		t.Fatalf("expected 0 hooks, got %d", n)
	}
}

func TestManager_Discover_NonExistentDir(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "missing"), logging.Nop())

	if err := m.Discover(); err != nil {
		t.Fatalf("Discover() failed on non-existent dir: %v", err)
	}
	if _, err := m.Get("anything"); err != ErrHookNotFound {
		t.Errorf("Get() error = %v, want ErrHookNotFound", err)
	}
}

func TestHook_Supports(t *testing.T) {
	tests := []struct {
		name    string
		actions []string
		action  string
		want    bool
	}{
		{name: "declared", actions: []string{"say", "beep"}, action: "beep", want: true},
		{name: "undeclared", actions: []string{"say"}, action: "beep", want: false},
		{name: "no actions accepts any", actions: nil, action: "anything", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &Hook{Manifest: Manifest{Actions: tt.actions}}
			if got := h.Supports(tt.action); got != tt.want {
				t.Errorf("Supports(%q) = %v, want %v", tt.action, got, tt.want)
			}
		})
	}
}
