package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait = time.Second

	// clientBuffer is how many messages may queue for one client before
	// new ones are dropped.
	clientBuffer = 16
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// tipsClient is one connected viewer. Its writer goroutine owns all writes
// to conn.
type tipsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// TipsHandler broadcasts per-frame fingertip messages over WebSocket.
type TipsHandler struct {
	logger  zerolog.Logger
	clients map[*tipsClient]struct{}
	mu      sync.Mutex
}

// NewTipsHandler creates a new TipsHandler.
func NewTipsHandler(logger zerolog.Logger) *TipsHandler {
	return &TipsHandler{
		logger:  logger,
		clients: make(map[*tipsClient]struct{}),
	}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *TipsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	c := &tipsClient{conn: conn, send: make(chan []byte, clientBuffer)}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.writeLoop(c)
	}()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.mu.Lock()
	delete(h.clients, c)
	close(c.send)
	h.mu.Unlock()

	<-done
}

// writeLoop sends queued messages until the queue is closed. A failed write
// closes the connection, which ends the read loop in ServeHTTP.
func (h *TipsHandler) writeLoop(c *tipsClient) {
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.logger.Debug().Err(err).Msg("dropping websocket client")
			c.conn.Close()
			// Drain until ServeHTTP closes the queue.
			for range c.send {
			}
			return
		}
	}
}

// Clients returns the number of connected clients.
func (h *TipsHandler) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast queues v as JSON for every client. A client whose queue is full
// misses the message.
func (h *TipsHandler) Broadcast(v any) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.clients) == 0 {
		return
	}

	msg, err := json.Marshal(v)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to encode tips message")
		return
	}

	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.logger.Debug().Msg("websocket client is behind, message dropped")
		}
	}
}
