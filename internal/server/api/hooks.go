package api

import (
	"net/http"

	"github.com/ayusman/handmade/internal/hook"
)

// HookHandler lists discovered hooks.
type HookHandler struct {
	manager *hook.Manager
}

// NewHookHandler creates a new HookHandler for m.
func NewHookHandler(m *hook.Manager) *HookHandler {
	return &HookHandler{manager: m}
}

type hookResponse struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Actions     []string `json:"actions"`
}

type listHooksResponse struct {
	Hooks []hookResponse `json:"hooks"`
}

// ServeHTTP handles GET /api/hooks. POST /api/hooks rescans the hooks
// directory first.
func (h *HookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
	case http.MethodPost:
		if err := h.manager.Discover(); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to scan hooks")
			return
		}
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	hooks := h.manager.List()
	response := listHooksResponse{Hooks: make([]hookResponse, 0, len(hooks))}
	for _, hk := range hooks {
		actions := hk.Manifest.Actions
		if actions == nil {
			actions = []string{}
		}
		response.Hooks = append(response.Hooks, hookResponse{
			Name:        hk.Manifest.Name,
			Version:     hk.Manifest.Version,
			Description: hk.Manifest.Description,
			Actions:     actions,
		})
	}

	writeJSON(w, http.StatusOK, response)
}
