package server

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/getmockd/regdesk/pkg/domain"
	"github.com/getmockd/regdesk/pkg/logging"
)

const (
	subscriberBuffer = 32
	writeTimeout     = 5 * time.Second
)

// Hub fans notifications out to every connected event stream. Slow
// subscribers miss notifications rather than block publishers.
type Hub struct {
	mu     sync.Mutex
	subs   map[chan domain.Notification]struct{}
	closed bool
	log    *slog.Logger
}

// NewHub returns an empty hub. log may be nil.
func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = logging.Nop()
	}
	return &Hub{subs: make(map[chan domain.Notification]struct{}), log: log}
}

// Subscribe registers a subscriber. The returned cancel func unregisters it
// and must be called once the subscriber is done.
func (h *Hub) Subscribe() (<-chan domain.Notification, func()) {
	ch := make(chan domain.Notification, subscriberBuffer)
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(ch)
		return ch, func() {}
	}
	h.subs[ch] = struct{}{}
	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subs[ch]; ok {
			delete(h.subs, ch)
			close(ch)
		}
	}
}

// Publish delivers n to every subscriber without blocking.
func (h *Hub) Publish(n domain.Notification) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- n:
		default:
			h.log.Warn("dropping notification for slow subscriber", "resource", n.Resource, "id", n.ResourceID)
		}
	}
}

// Len returns the number of subscribers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close ends every subscription. Later subscribers receive a closed channel.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for ch := range h.subs {
		delete(h.subs, ch)
		close(ch)
	}
}

// handleEvents upgrades to a WebSocket and streams notifications as JSON
// messages until the client goes away or the hub closes.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		s.log.Debug("event stream upgrade failed", "error", err)
		return
	}
	defer func() { _ = conn.CloseNow() }()

	ctx := conn.CloseRead(r.Context())
	events, cancel := s.hub.Subscribe()
	defer cancel()

	s.log.Debug("event stream opened", "remote", r.RemoteAddr)
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-events:
			if !ok {
				_ = conn.Close(websocket.StatusNormalClosure, "server shutting down")
				return
			}
			wctx, done := context.WithTimeout(ctx, writeTimeout)
			err := wsjson.Write(wctx, conn, n)
			done()
			if err != nil {
				s.log.Debug("event stream write failed", "error", err)
				return
			}
		}
	}
}
