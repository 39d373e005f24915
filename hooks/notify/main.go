// Command notify is a HandMade hook that shows a desktop notification for
// board events. Build it next to its hook.json:
//
//	go build -o ~/.handmade/hooks/notify/notify ./hooks/notify
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/ayusman/handmade/internal/hook"
)

// notifyConfig is the binding config accepted by the "show" action.
type notifyConfig struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// actionHandlers maps action names to their handler functions.
var actionHandlers = map[string]func(req hook.Request) error{
	"show": show,
}

func main() {
	var req hook.Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(hook.Response{Error: fmt.Sprintf("failed to decode request: %v", err)})
		return
	}

	handler, ok := actionHandlers[req.Action]
	if !ok {
		writeResponse(hook.Response{Error: fmt.Sprintf("unknown action: %s", req.Action)})
		return
	}

	if err := handler(req); err != nil {
		writeResponse(hook.Response{Error: fmt.Sprintf("action %s failed: %v", req.Action, err)})
		return
	}

	writeResponse(hook.Response{Success: true})
}

func writeResponse(resp hook.Response) {
	json.NewEncoder(os.Stdout).Encode(resp)
}

// message fills in defaults for an event.
func message(req hook.Request) (notifyConfig, error) {
	cfg := notifyConfig{Title: "HandMade"}
	if len(req.Config) > 0 {
		if err := json.Unmarshal(req.Config, &cfg); err != nil {
			return cfg, fmt.Errorf("invalid config: %w", err)
		}
	}
	if cfg.Message == "" {
		cfg.Message = fmt.Sprintf("%s at (%d, %d)", req.Event, req.Point.X, req.Point.Y)
	}
	return cfg, nil
}

func show(req hook.Request) error {
	cfg, err := message(req)
	if err != nil {
		return err
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		script := fmt.Sprintf("display notification %q with title %q", cfg.Message, cfg.Title)
		cmd = exec.Command("osascript", "-e", script)
	case "linux":
		cmd = exec.Command("notify-send", cfg.Title, cfg.Message)
	default:
		return fmt.Errorf("notifications are not supported on %s", runtime.GOOS)
	}

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}
