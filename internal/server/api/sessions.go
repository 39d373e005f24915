package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ayusman/handmade/internal/store"
)

// SessionHandler serves the session log.
//
//	GET    /api/sessions
//	GET    /api/sessions/{id}
//	DELETE /api/sessions/{id}
//	GET    /api/sessions/{id}/frames
//	GET    /api/sessions/{id}/strokes
type SessionHandler struct {
	store *store.Store
}

// NewSessionHandler creates a new SessionHandler with the given store.
func NewSessionHandler(s *store.Store) *SessionHandler {
	return &SessionHandler{store: s}
}

// ServeHTTP routes session requests.
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/sessions")
	path = strings.Trim(path, "/")

	if path == "" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.list(w, r)
		return
	}

	id, sub, _ := strings.Cut(path, "/")
	switch sub {
	case "":
		switch r.Method {
		case http.MethodGet:
			h.get(w, r, id)
		case http.MethodDelete:
			h.delete(w, r, id)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	case "frames", "strokes":
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if sub == "frames" {
			h.frames(w, r, id)
		} else {
			h.strokes(w, r, id)
		}
	default:
		http.NotFound(w, r)
	}
}

type sessionResponse struct {
	ID        string `json:"id"`
	Source    string `json:"source"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Frames    int    `json:"frames"`
	StartedAt string `json:"started_at"`
	EndedAt   string `json:"ended_at,omitempty"`
}

type listSessionsResponse struct {
	Sessions []sessionResponse `json:"sessions"`
}

type frameResponse struct {
	Index      int     `json:"index"`
	Tips       int     `json:"tips"`
	PalmX      int     `json:"palm_x"`
	PalmY      int     `json:"palm_y"`
	PalmRadius float64 `json:"palm_radius"`
	Event      string  `json:"event"`
}

type listFramesResponse struct {
	Frames []frameResponse `json:"frames"`
}

type strokeResponse struct {
	Frame int `json:"frame"`
	X1    int `json:"x1"`
	Y1    int `json:"y1"`
	X2    int `json:"x2"`
	Y2    int `json:"y2"`
}

type eraseResponse struct {
	Frame  int     `json:"frame"`
	X      int     `json:"x"`
	Y      int     `json:"y"`
	Radius float64 `json:"radius"`
}

type strokesResponse struct {
	Strokes []strokeResponse `json:"strokes"`
	Erases  []eraseResponse  `json:"erases"`
}

func toSessionResponse(s *store.Session) sessionResponse {
	return sessionResponse{
		ID:        s.ID,
		Source:    s.Source,
		Width:     s.Width,
		Height:    s.Height,
		Frames:    s.Frames,
		StartedAt: formatTime(s.StartedAt),
		EndedAt:   formatTime(s.EndedAt),
	}
}

func (h *SessionHandler) list(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.store.Sessions().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sessions")
		return
	}

	response := listSessionsResponse{
		Sessions: make([]sessionResponse, 0, len(sessions)),
	}
	for _, s := range sessions {
		response.Sessions = append(response.Sessions, toSessionResponse(s))
	}

	writeJSON(w, http.StatusOK, response)
}

// lookup writes a 404 or 500 and returns false when the session cannot be
// loaded.
func (h *SessionHandler) lookup(w http.ResponseWriter, id string) (*store.Session, bool) {
	sess, err := h.store.Sessions().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return nil, false
		}
		writeError(w, http.StatusInternalServerError, "Failed to get session")
		return nil, false
	}
	return sess, true
}

func (h *SessionHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	sess, ok := h.lookup(w, id)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(sess))
}

func (h *SessionHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Sessions().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete session")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) frames(w http.ResponseWriter, r *http.Request, id string) {
	if _, ok := h.lookup(w, id); !ok {
		return
	}

	frames, err := h.store.Frames().ListBySession(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list frames")
		return
	}

	response := listFramesResponse{Frames: make([]frameResponse, 0, len(frames))}
	for _, f := range frames {
		response.Frames = append(response.Frames, frameResponse{
			Index:      f.Index,
			Tips:       f.Tips,
			PalmX:      f.PalmX,
			PalmY:      f.PalmY,
			PalmRadius: f.PalmRadius,
			Event:      f.Event,
		})
	}

	writeJSON(w, http.StatusOK, response)
}

func (h *SessionHandler) strokes(w http.ResponseWriter, r *http.Request, id string) {
	if _, ok := h.lookup(w, id); !ok {
		return
	}

	strokes, err := h.store.Strokes().ListBySession(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list strokes")
		return
	}
	erases, err := h.store.Erases().ListBySession(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list erases")
		return
	}

	response := strokesResponse{
		Strokes: make([]strokeResponse, 0, len(strokes)),
		Erases:  make([]eraseResponse, 0, len(erases)),
	}
	for _, st := range strokes {
		response.Strokes = append(response.Strokes, strokeResponse{
			Frame: st.FrameIndex,
			X1:    st.X1,
			Y1:    st.Y1,
			X2:    st.X2,
			Y2:    st.Y2,
		})
	}
	for _, e := range erases {
		response.Erases = append(response.Erases, eraseResponse{
			Frame:  e.FrameIndex,
			X:      e.X,
			Y:      e.Y,
			Radius: e.Radius,
		})
	}

	writeJSON(w, http.StatusOK, response)
}
