package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ayusman/handmade/internal/config"
	"github.com/ayusman/handmade/internal/store"
)

// SettingsHandler manages persisted configuration overrides. Changes are
// validated against the full configuration and take effect on the next
// start.
//
//	GET    /api/settings
//	PUT    /api/settings
//	DELETE /api/settings/{key}
type SettingsHandler struct {
	store *store.Store
}

// NewSettingsHandler creates a new SettingsHandler with the given store.
func NewSettingsHandler(s *store.Store) *SettingsHandler {
	return &SettingsHandler{store: s}
}

// ServeHTTP routes settings requests.
func (h *SettingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.URL.Path, "/api/settings")
	key = strings.TrimPrefix(key, "/")

	if key != "" {
		if r.Method != http.MethodDelete {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.delete(w, r, key)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r)
	case http.MethodPut:
		h.put(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type settingsResponse struct {
	// Settings is the effective configuration: defaults plus overrides.
	Settings  map[string]string `json:"settings"`
	Overrides map[string]string `json:"overrides"`
}

// effective applies overrides to the defaults and validates the result.
func effective(overrides map[string]string) (map[string]string, error) {
	cfg := config.Default()
	if err := config.ApplySettings(&cfg, overrides); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return config.Settings(cfg)
}

func (h *SettingsHandler) respond(w http.ResponseWriter, status int) {
	overrides, err := h.store.Settings().All()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load settings")
		return
	}

	settings, err := effective(overrides)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Stored settings are invalid: "+err.Error())
		return
	}

	writeJSON(w, status, settingsResponse{Settings: settings, Overrides: overrides})
}

func (h *SettingsHandler) get(w http.ResponseWriter, r *http.Request) {
	h.respond(w, http.StatusOK)
}

func (h *SettingsHandler) put(w http.ResponseWriter, r *http.Request) {
	var req map[string]string
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if len(req) == 0 {
		writeError(w, http.StatusBadRequest, "No settings given")
		return
	}

	overrides, err := h.store.Settings().All()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load settings")
		return
	}
	for k, v := range req {
		overrides[k] = v
	}
	if _, err := effective(overrides); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.Settings().SetAll(req); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save settings")
		return
	}

	h.respond(w, http.StatusOK)
}

func (h *SettingsHandler) delete(w http.ResponseWriter, r *http.Request, key string) {
	if err := h.store.Settings().Delete(key); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Setting not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete setting")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
