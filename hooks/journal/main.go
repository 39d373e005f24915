// Command journal is a HandMade hook that appends board events to a JSON
// lines file, one object per event.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ayusman/handmade/internal/hook"
)

// journalConfig is the binding config accepted by the "append" action.
type journalConfig struct {
	Path string `json:"path"`
}

// entry is one journal line.
type entry struct {
	Time    string `json:"time"`
	Event   string `json:"event"`
	Session string `json:"session"`
	Frame   int    `json:"frame"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
}

func main() {
	var req hook.Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(hook.Response{Error: fmt.Sprintf("failed to decode request: %v", err)})
		return
	}

	if req.Action != "append" {
		writeResponse(hook.Response{Error: fmt.Sprintf("unknown action: %s", req.Action)})
		return
	}

	path, err := appendEntry(req, time.Now())
	if err != nil {
		writeResponse(hook.Response{Error: fmt.Sprintf("action %s failed: %v", req.Action, err)})
		return
	}

	data, _ := json.Marshal(map[string]string{"path": path})
	writeResponse(hook.Response{Success: true, Data: data})
}

func writeResponse(resp hook.Response) {
	json.NewEncoder(os.Stdout).Encode(resp)
}

// journalPath returns the configured file, or journal.jsonl in the working
// directory, which the executor sets to the hook's own directory.
func journalPath(raw json.RawMessage) (string, error) {
	var cfg journalConfig
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return "", fmt.Errorf("invalid config: %w", err)
		}
	}
	if cfg.Path == "" {
		return "journal.jsonl", nil
	}
	if !filepath.IsAbs(cfg.Path) {
		return "", errors.New("config path must be absolute")
	}
	return cfg.Path, nil
}

func appendEntry(req hook.Request, now time.Time) (string, error) {
	path, err := journalPath(req.Config)
	if err != nil {
		return "", err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return "", err
	}
	defer f.Close()

	line := entry{
		Time:    now.UTC().Format(time.RFC3339),
		Event:   req.Event,
		Session: req.Session,
		Frame:   req.Frame,
		X:       req.Point.X,
		Y:       req.Point.Y,
	}
	if err := json.NewEncoder(f).Encode(line); err != nil {
		return "", err
	}
	return path, nil
}
