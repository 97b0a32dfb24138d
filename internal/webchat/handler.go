// Package webchat streams page session updates over WebSocket and accepts
// chat messages on the same connection.
package webchat

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/net/websocket"

	"github.com/wolfman30/medibook/internal/chat"
	httpmiddleware "github.com/wolfman30/medibook/internal/http/middleware"
	"github.com/wolfman30/medibook/internal/pagesession"
	"github.com/wolfman30/medibook/pkg/logging"
)

// InboundMessage is what the page sends.
type InboundMessage struct {
	Type string `json:"type"` // "message", "ping"
	Text string `json:"text"`
}

// OutboundMessage is a control frame. Session events are sent as
// pagesession.Event and share the "type" discriminator.
type OutboundMessage struct {
	Type     string                `json:"type"` // "snapshot", "pong", "error"
	Snapshot *pagesession.Snapshot `json:"snapshot,omitempty"`
	Error    string                `json:"error,omitempty"`
}

// Handler serves GET /api/sessions/{sessionID}/chat/ws.
type Handler struct {
	sessions    *pagesession.Registry
	origins     httpmiddleware.OriginAllowlist
	chatTimeout time.Duration
	logger      *logging.Logger
}

// NewHandler creates the stream handler. allowedOrigins follows the CORS
// allowlist; "*" accepts any origin.
func NewHandler(sessions *pagesession.Registry, allowedOrigins []string, chatTimeout time.Duration, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if chatTimeout <= 0 {
		chatTimeout = 30 * time.Second
	}
	return &Handler{
		sessions:    sessions,
		origins:     httpmiddleware.NewOriginAllowlist(allowedOrigins),
		chatTimeout: chatTimeout,
		logger:      logger,
	}
}

// HandleWebSocket upgrades and streams events for one page session.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	websocket.Server{
		Handshake: h.checkOrigin,
		Handler: func(conn *websocket.Conn) {
			h.serveWS(conn, s)
		},
	}.ServeHTTP(w, r)
}

func (h *Handler) checkOrigin(config *websocket.Config, r *http.Request) error {
	origin, err := websocket.Origin(config, r)
	if err != nil {
		return err
	}
	if origin == nil {
		return errors.New("webchat: missing origin")
	}
	config.Origin = origin
	if h.origins.Allows(origin.Scheme + "://" + origin.Host) {
		return nil
	}
	return fmt.Errorf("webchat: origin %q not allowed", origin.String())
}

// conn serializes writes; the event pump and the reader both send.
type conn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

func (c *conn) send(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return websocket.JSON.Send(c.ws, v)
}

func (h *Handler) serveWS(ws *websocket.Conn, s *pagesession.Session) {
	c := &conn{ws: ws}
	events, unsubscribe := s.Subscribe()
	defer unsubscribe()

	snap := s.Snapshot()
	if err := c.send(OutboundMessage{Type: "snapshot", Snapshot: &snap}); err != nil {
		return
	}
	h.logger.Info("webchat: connection opened", "session_id", s.ID)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pumpDone := make(chan struct{})
	go func() {
		defer close(pumpDone)
		defer ws.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				if err := c.send(evt); err != nil {
					return
				}
				if evt.Type == pagesession.EventClosed {
					return
				}
			}
		}
	}()

	for {
		var msg InboundMessage
		if err := websocket.JSON.Receive(ws, &msg); err != nil {
			h.logger.Debug("webchat: connection closed", "session_id", s.ID, "error", err)
			cancel()
			<-pumpDone
			return
		}
		// Any frame counts as page activity for the idle sweeper.
		if _, err := h.sessions.Get(s.ID); err != nil {
			_ = c.send(OutboundMessage{Type: "error", Error: "session not found"})
			continue
		}

		switch msg.Type {
		case "ping":
			_ = c.send(OutboundMessage{Type: "pong"})
		case "message":
			go h.runTurn(c, s, msg.Text)
		default:
			_ = c.send(OutboundMessage{Type: "error", Error: "unknown message type"})
		}
	}
}

// runTurn results arrive through the event stream; only refusals are
// reported directly. The turn outlives the connection so the reply still
// lands in the transcript if the socket drops.
func (h *Handler) runTurn(c *conn, s *pagesession.Session, text string) {
	ctx, cancel := context.WithTimeout(context.Background(), h.chatTimeout)
	defer cancel()

	_, err := s.Chat.SendTurn(ctx, text)
	switch {
	case err == nil:
	case errors.Is(err, chat.ErrEmptyMessage):
		_ = c.send(OutboundMessage{Type: "error", Error: "message is empty"})
	case errors.Is(err, chat.ErrReplyPending):
		_ = c.send(OutboundMessage{Type: "error", Error: "reply pending"})
	case errors.Is(err, chat.ErrClosed):
	default:
		h.logger.Error("webchat: turn failed", "session_id", s.ID, "error", err)
	}
}
