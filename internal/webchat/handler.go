// Package webchat exposes the companion chat over a WebSocket so the
// web client can stream replies instead of polling the message list.
package webchat

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/websocket"

	"github.com/medimart/health-companion/internal/chat"
	"github.com/medimart/health-companion/internal/session"
	"github.com/medimart/health-companion/pkg/logging"
)

// ChatService is the slice of the chat service the handler needs.
type ChatService interface {
	Send(ctx context.Context, text string) (session.ChatMessage, error)
}

// Handler manages web chat connections and messages.
type Handler struct {
	chat   ChatService
	store  *session.Store
	logger *logging.Logger

	mu    sync.RWMutex
	conns map[string]*wsConn // connection ID -> active connection
}

type wsConn struct {
	conn *websocket.Conn
}

// InboundMessage is what the web client sends.
type InboundMessage struct {
	Type string `json:"type"` // "message", "ping"
	Text string `json:"text"`
}

// OutboundMessage is what we send to the web client.
type OutboundMessage struct {
	Type      string           `json:"type"` // "message", "typing", "history", "session", "pong", "error"
	ID        string           `json:"id,omitempty"`
	Role      string           `json:"role,omitempty"`
	Text      string           `json:"text,omitempty"`
	SessionID string           `json:"session_id,omitempty"`
	Timestamp string           `json:"timestamp,omitempty"`
	Messages  []HistoryMessage `json:"messages,omitempty"`
}

// HistoryMessage is a simplified message for history replay.
type HistoryMessage struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// NewHandler creates a web chat handler.
func NewHandler(chatSvc ChatService, store *session.Store, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		chat:   chatSvc,
		store:  store,
		logger: logger,
		conns:  make(map[string]*wsConn),
	}
}

// HandleWebSocket upgrades to WebSocket and handles real-time messaging.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(func(conn *websocket.Conn) {
		h.serveWS(conn, r)
	}).ServeHTTP(w, r)
}

func (h *Handler) serveWS(conn *websocket.Conn, r *http.Request) {
	connID := uuid.New().String()

	_ = websocket.JSON.Send(conn, OutboundMessage{
		Type:      "session",
		SessionID: connID,
	})

	// Replay the transcript so a reconnecting client catches up.
	h.store.SeedWelcome(r.Context())
	if msgs := h.store.Messages(); len(msgs) > 0 {
		history := make([]HistoryMessage, 0, len(msgs))
		for _, m := range msgs {
			history = append(history, HistoryMessage{
				ID:        m.ID,
				Role:      m.Role,
				Text:      m.Content,
				Timestamp: m.Timestamp.Format(time.RFC3339),
			})
		}
		_ = websocket.JSON.Send(conn, OutboundMessage{Type: "history", Messages: history})
	}

	wsc := &wsConn{conn: conn}
	h.mu.Lock()
	h.conns[connID] = wsc
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		delete(h.conns, connID)
		h.mu.Unlock()
	}()

	h.logger.Info("webchat: connection opened", "conn_id", connID)

	for {
		var msg InboundMessage
		if err := websocket.JSON.Receive(conn, &msg); err != nil {
			h.logger.Debug("webchat: connection closed", "conn_id", connID, "error", err)
			return
		}

		if msg.Type == "ping" {
			_ = websocket.JSON.Send(conn, OutboundMessage{Type: "pong"})
			continue
		}

		if msg.Type != "message" || strings.TrimSpace(msg.Text) == "" {
			continue
		}

		h.processMessage(r.Context(), conn, msg.Text)
	}
}

func (h *Handler) processMessage(ctx context.Context, conn *websocket.Conn, text string) {
	_ = websocket.JSON.Send(conn, OutboundMessage{Type: "typing"})

	reply, err := h.chat.Send(ctx, text)
	if err != nil {
		if errors.Is(err, chat.ErrBusy) {
			_ = websocket.JSON.Send(conn, OutboundMessage{
				Type: "error",
				Text: "Please wait for the current reply to finish.",
			})
			return
		}
		h.logger.Error("webchat: failed to process message", "error", err)
		_ = websocket.JSON.Send(conn, OutboundMessage{
			Type: "error",
			Text: "Sorry, something went wrong. Please try again.",
		})
		return
	}

	h.Broadcast(OutboundMessage{
		Type:      "message",
		ID:        reply.ID,
		Role:      reply.Role,
		Text:      reply.Content,
		Timestamp: reply.Timestamp.Format(time.RFC3339),
	})
}

// Broadcast sends a message to every open connection.
func (h *Handler) Broadcast(msg OutboundMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, wsc := range h.conns {
		_ = websocket.JSON.Send(wsc.conn, msg)
	}
}
