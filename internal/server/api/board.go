package api

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Board is the part of the drawing board exposed over HTTP.
type Board interface {
	Clear()
	EncodePNG() ([]byte, error)
	Enabled() bool
	SetEnabled(enabled bool)
}

// BoardHandler serves board snapshots and controls.
//
//	GET  /api/board.png
//	POST /api/board/clear
//	GET  /api/board/state
//	PUT  /api/board/state
type BoardHandler struct {
	board Board
}

// NewBoardHandler creates a new BoardHandler for b.
func NewBoardHandler(b Board) *BoardHandler {
	return &BoardHandler{board: b}
}

type boardStateRequest struct {
	Enabled *bool `json:"enabled"`
}

type boardStateResponse struct {
	Enabled bool `json:"enabled"`
}

// ServeHTTP routes board requests.
func (h *BoardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/api/board.png" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.snapshot(w, r)
		return
	}

	switch strings.TrimPrefix(r.URL.Path, "/api/board/") {
	case "clear":
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.board.Clear()
		w.WriteHeader(http.StatusNoContent)

	case "state":
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, boardStateResponse{Enabled: h.board.Enabled()})
		case http.MethodPut:
			h.setState(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}

	default:
		http.NotFound(w, r)
	}
}

func (h *BoardHandler) snapshot(w http.ResponseWriter, r *http.Request) {
	data, err := h.board.EncodePNG()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to encode board")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *BoardHandler) setState(w http.ResponseWriter, r *http.Request) {
	var req boardStateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Enabled == nil {
		writeError(w, http.StatusBadRequest, "enabled is required")
		return
	}

	h.board.SetEnabled(*req.Enabled)
	writeJSON(w, http.StatusOK, boardStateResponse{Enabled: h.board.Enabled()})
}
