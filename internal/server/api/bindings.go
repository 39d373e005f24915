package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/ayusman/handmade/internal/hook"
	"github.com/ayusman/handmade/internal/store"
)

// BindingHandler handles HTTP requests for binding resources.
type BindingHandler struct {
	store *store.Store
	hooks *hook.Manager
}

// NewBindingHandler creates a new BindingHandler. When hooks is non-nil,
// new and changed bindings must name a discovered hook and an action it
// supports.
func NewBindingHandler(s *store.Store, hooks *hook.Manager) *BindingHandler {
	return &BindingHandler{store: s, hooks: hooks}
}

// ServeHTTP routes /api/bindings and /api/bindings/{id}.
func (h *BindingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/bindings")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	id := path
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodPut:
		h.update(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type createBindingRequest struct {
	Event      string          `json:"event"`
	HookName   string          `json:"hook_name"`
	ActionName string          `json:"action_name"`
	Config     json.RawMessage `json:"config"`
}

type updateBindingRequest struct {
	Event      string          `json:"event"`
	HookName   string          `json:"hook_name"`
	ActionName string          `json:"action_name"`
	Config     json.RawMessage `json:"config"`
	Enabled    *bool           `json:"enabled"`
}

type bindingResponse struct {
	ID         string          `json:"id"`
	Event      string          `json:"event"`
	HookName   string          `json:"hook_name"`
	ActionName string          `json:"action_name"`
	Config     json.RawMessage `json:"config"`
	Enabled    bool            `json:"enabled"`
	CreatedAt  string          `json:"created_at"`
}

type listBindingsResponse struct {
	Bindings []bindingResponse `json:"bindings"`
}

func toBindingResponse(b *store.Binding) bindingResponse {
	config := b.Config
	if len(config) == 0 {
		config = json.RawMessage("{}")
	}
	return bindingResponse{
		ID:         b.ID,
		Event:      b.Event,
		HookName:   b.HookName,
		ActionName: b.ActionName,
		Config:     config,
		Enabled:    b.Enabled,
		CreatedAt:  formatTime(b.CreatedAt),
	}
}

// checkHook returns a client error message when the hook or action is not
// available, or "" when the binding may be stored.
func (h *BindingHandler) checkHook(hookName, action string) string {
	if h.hooks == nil {
		return ""
	}
	found, err := h.hooks.Get(hookName)
	if err != nil {
		return "Hook not found"
	}
	if !found.Supports(action) {
		return "Hook does not support action " + action
	}
	return ""
}

func (h *BindingHandler) list(w http.ResponseWriter, r *http.Request) {
	bindings, err := h.store.Bindings().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list bindings")
		return
	}

	response := listBindingsResponse{
		Bindings: make([]bindingResponse, 0, len(bindings)),
	}
	for _, b := range bindings {
		response.Bindings = append(response.Bindings, toBindingResponse(b))
	}

	writeJSON(w, http.StatusOK, response)
}

func (h *BindingHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	binding, err := h.store.Bindings().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Binding not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get binding")
		return
	}

	writeJSON(w, http.StatusOK, toBindingResponse(binding))
}

func (h *BindingHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createBindingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if !store.ValidEvent(req.Event) {
		writeError(w, http.StatusBadRequest, "event must be one of erase, stroke_start, stroke_end")
		return
	}
	if req.HookName == "" {
		writeError(w, http.StatusBadRequest, "hook_name is required")
		return
	}
	if req.ActionName == "" {
		writeError(w, http.StatusBadRequest, "action_name is required")
		return
	}
	if msg := h.checkHook(req.HookName, req.ActionName); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	binding := &store.Binding{
		ID:         uuid.New().String(),
		Event:      req.Event,
		HookName:   req.HookName,
		ActionName: req.ActionName,
		Config:     req.Config,
		Enabled:    true,
	}

	if err := h.store.Bindings().Create(binding); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create binding")
		return
	}

	writeJSON(w, http.StatusCreated, toBindingResponse(binding))
}

func (h *BindingHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	binding, err := h.store.Bindings().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Binding not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get binding")
		return
	}

	var req updateBindingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Event != "" {
		if !store.ValidEvent(req.Event) {
			writeError(w, http.StatusBadRequest, "event must be one of erase, stroke_start, stroke_end")
			return
		}
		binding.Event = req.Event
	}
	if req.HookName != "" {
		binding.HookName = req.HookName
	}
	if req.ActionName != "" {
		binding.ActionName = req.ActionName
	}
	if req.HookName != "" || req.ActionName != "" {
		if msg := h.checkHook(binding.HookName, binding.ActionName); msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}
	}
	if req.Config != nil {
		binding.Config = req.Config
	}
	if req.Enabled != nil {
		binding.Enabled = *req.Enabled
	}

	if err := h.store.Bindings().Update(binding); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update binding")
		return
	}

	writeJSON(w, http.StatusOK, toBindingResponse(binding))
}

func (h *BindingHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Bindings().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Binding not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete binding")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
