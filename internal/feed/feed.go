// Package feed forwards live session snapshots to websocket spectators.
// Delivery is best effort: a spectator that falls behind is dropped.
package feed

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/lox/handreplay/internal/view"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Spectators only send control frames.
	maxMessageSize = 512

	sendBuffer = 64
)

// Message is what spectators receive.
type Message struct {
	Type     string                  `json:"type"`
	Snapshot *view.GameStateSnapshot `json:"snapshot,omitempty"`
	Reason   string                  `json:"reason,omitempty"`
}

// Message types.
const (
	TypeSnapshot = "snapshot"
	TypeHandEnd  = "hand_end"
)

// Hub fans snapshots out to every connected spectator. Late joiners get the
// most recent message first.
type Hub struct {
	upgrader websocket.Upgrader
	logger   zerolog.Logger

	mu      sync.Mutex
	clients map[*spectator]struct{}
	last    []byte
	closed  bool
}

// New creates a hub.
func New(logger zerolog.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		logger:  logger.With().Str("component", "feed").Logger(),
		clients: make(map[*spectator]struct{}),
	}
}

// Handler serves the hub at path plus a /health check.
func (h *Hub) Handler(path string) http.Handler {
	mux := http.NewServeMux()
	mux.Handle(path, h)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, "OK")
	})
	return mux
}

// ServeHTTP upgrades the request and registers a spectator.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to upgrade connection")
		return
	}

	s := &spectator{hub: h, conn: conn, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
		_ = conn.Close()
		return
	}
	h.clients[s] = struct{}{}
	if h.last != nil {
		s.send <- h.last
	}
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.Info().Str("remote", r.RemoteAddr).Int("spectators", count).Msg("Spectator connected")

	go s.writePump()
	go s.readPump()
}

// Publish sends a snapshot to every spectator.
func (h *Hub) Publish(snap view.GameStateSnapshot) {
	h.broadcast(Message{Type: TypeSnapshot, Snapshot: &snap})
}

// EndHand announces the end of the hand.
func (h *Hub) EndHand(reason string) {
	h.broadcast(Message{Type: TypeHandEnd, Reason: reason})
}

func (h *Hub) broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error().Err(err).Str("type", msg.Type).Msg("Failed to encode message")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.last = data
	for s := range h.clients {
		select {
		case s.send <- data:
		default:
			h.logger.Warn().Str("remote", s.conn.RemoteAddr().String()).Msg("Dropping slow spectator")
			h.removeLocked(s)
		}
	}
}

// Count returns the number of connected spectators.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every spectator and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for s := range h.clients {
		h.removeLocked(s)
	}
}

func (h *Hub) unregister(s *spectator) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(s)
}

func (h *Hub) removeLocked(s *spectator) {
	if _, ok := h.clients[s]; !ok {
		return
	}
	delete(h.clients, s)
	close(s.send)
}

type spectator struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// readPump discards everything but control frames and notices disconnects.
func (s *spectator) readPump() {
	defer func() {
		s.hub.unregister(s)
		_ = s.conn.Close()
	}()

	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.hub.logger.Debug().Err(err).Msg("Spectator closed unexpectedly")
			}
			return
		}
	}
}

func (s *spectator) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case message, ok := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
