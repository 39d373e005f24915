// Package server provides the HTTP server for the HandMade drawing board.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/ayusman/handmade/internal/hook"
	"github.com/ayusman/handmade/internal/server/api"
	"github.com/ayusman/handmade/internal/store"
)

// Config holds the server configuration. Resources whose dependency is nil
// are not registered.
type Config struct {
	StaticDir string
	Store     *store.Store
	Board     api.Board
	Hooks     *hook.Manager
	Logger    zerolog.Logger
}

// Server represents the HTTP server for the HandMade application.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time

	boardFeed *Feed
	frameFeed *Feed
	tips      *TipsHandler
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config:    config,
		mux:       http.NewServeMux(),
		start:     time.Now(),
		boardFeed: NewFeed(),
		frameFeed: NewFeed(),
		tips:      NewTipsHandler(config.Logger),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	// Live views are always available; they stay empty until the frame loop
	// publishes.
	s.mux.Handle("/api/board", NewStreamHandler(s.boardFeed))
	s.mux.Handle("/api/frame", NewStreamHandler(s.frameFeed))
	s.mux.Handle("/api/tips", s.tips)

	if s.config.Board != nil {
		boardHandler := api.NewBoardHandler(s.config.Board)
		s.mux.Handle("/api/board.png", boardHandler)
		s.mux.Handle("/api/board/", boardHandler)
	}

	if s.config.Store != nil {
		sessionHandler := api.NewSessionHandler(s.config.Store)
		s.mux.Handle("/api/sessions", sessionHandler)
		s.mux.Handle("/api/sessions/", sessionHandler)

		bindingHandler := api.NewBindingHandler(s.config.Store, s.config.Hooks)
		s.mux.Handle("/api/bindings", bindingHandler)
		s.mux.Handle("/api/bindings/", bindingHandler)

		settingsHandler := api.NewSettingsHandler(s.config.Store)
		s.mux.Handle("/api/settings", settingsHandler)
		s.mux.Handle("/api/settings/", settingsHandler)
	}

	if s.config.Hooks != nil {
		s.mux.Handle("/api/hooks", api.NewHookHandler(s.config.Hooks))
	}

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"status":  "ok",
		"uptime":  time.Since(s.start).String(),
		"viewers": s.boardFeed.Subscribers() + s.frameFeed.Subscribers(),
		"clients": s.tips.Clients(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// PublishBoard sends an encoded board image to /api/board viewers.
func (s *Server) PublishBoard(jpeg []byte) {
	s.boardFeed.Publish(jpeg)
}

// PublishFrame sends an encoded annotated frame to /api/frame viewers.
func (s *Server) PublishFrame(jpeg []byte) {
	s.frameFeed.Publish(jpeg)
}

// PublishTips sends a fingertip message to /api/tips clients.
func (s *Server) PublishTips(msg any) {
	s.tips.Broadcast(msg)
}

// Watching reports whether any client is connected to a live view.
func (s *Server) Watching() bool {
	return s.boardFeed.Subscribers() > 0 || s.frameFeed.Subscribers() > 0 || s.tips.Clients() > 0
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s,
		// Streams end when ctx does.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
