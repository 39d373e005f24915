// Package hook runs external executables when board events happen.
//
// Hooks live in subdirectories of a hooks directory, each described by a
// hook.json manifest. A request is written to the executable's stdin as
// JSON and a JSON response is read from its stdout.
package hook

import (
	"encoding/json"
	"image"
)

// ManifestFile is the manifest filename looked up in each hook directory.
const ManifestFile = "hook.json"

// Manifest describes a hook's metadata and the actions it accepts.
type Manifest struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Executable  string   `json:"executable"`
	Actions     []string `json:"actions"`
}

// Request is sent to a hook for execution.
type Request struct {
	Action  string          `json:"action"`
	Event   string          `json:"event"`
	Session string          `json:"session"`
	Frame   int             `json:"frame"`
	Point   image.Point     `json:"point"`
	Config  json.RawMessage `json:"config"`
}

// Response is returned by a hook.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Hook is a discovered hook with its manifest and location.
type Hook struct {
	Manifest   Manifest
	Path       string
	Executable string
}

// Supports reports whether the hook declares the action. A manifest with no
// actions accepts any.
func (h *Hook) Supports(action string) bool {
	if len(h.Manifest.Actions) == 0 {
		return true
	}
	for _, a := range h.Manifest.Actions {
		if a == action {
			return true
		}
	}
	return false
}
