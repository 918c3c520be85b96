package handlers

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/ternarybob/parley/internal/common"
	"github.com/ternarybob/parley/internal/interfaces"
	"github.com/ternarybob/parley/internal/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// WebSocketHandler serves the realtime chat channel
type WebSocketHandler struct {
	chat   interfaces.ChatService
	config *common.WebSocketConfig
	logger arbor.ILogger
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(chat interfaces.ChatService, config *common.WebSocketConfig, logger arbor.ILogger) *WebSocketHandler {
	return &WebSocketHandler{
		chat:   chat,
		config: config,
		logger: logger,
	}
}

// chatConn is one client connection. It binds to a session on the first
// message envelope and stays bound for its lifetime; it also acts as the
// ReplySink for turns started on it. Writes are serialized by writeMu;
// once the transport fails, further writes are dropped silently.
type chatConn struct {
	conn   *websocket.Conn
	logger arbor.ILogger

	writeMu sync.Mutex
	closed  bool

	// sessionID is set once on first bind, empty while unbound
	sessionID string
}

var _ interfaces.ReplySink = (*chatConn)(nil)

// HandleWebSocket upgrades the connection and runs the envelope read loop
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	client := &chatConn{
		conn:   conn,
		logger: h.logger,
	}

	h.logger.Debug().Msg("WebSocket client connected")

	defer func() {
		client.markClosed()
		conn.Close()
		h.logger.Debug().Str("session_id", client.sessionID).Msg("WebSocket client disconnected")
	}()

	limiter := h.newInboundLimiter()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				h.logger.Warn().Err(err).Msg("WebSocket read error")
			}
			return
		}

		var envelope models.Envelope
		if err := json.Unmarshal(data, &envelope); err != nil {
			client.SendError("Invalid message format")
			continue
		}

		if envelope.Type != models.EnvelopeMessage {
			client.SendError("Unsupported message type")
			continue
		}

		if limiter != nil && !limiter.Allow() {
			client.SendError("Too many messages, slow down")
			continue
		}

		h.handleInbound(r, client, &envelope)
	}
}

// handleInbound validates the envelope, binds the connection on first
// contact, and starts the turn.
func (h *WebSocketHandler) handleInbound(r *http.Request, client *chatConn, envelope *models.Envelope) {
	if envelope.Content == "" {
		client.SendError("Message content is required")
		return
	}

	switch {
	case client.sessionID == "":
		// First message binds the connection. Bind only once the
		// session is known to exist.
		if envelope.SessionID == "" {
			client.SendError("Session ID is required")
			return
		}
		if _, err := h.chat.GetSession(r.Context(), envelope.SessionID); err != nil {
			client.SendError("Session not found")
			return
		}
		client.sessionID = envelope.SessionID
		h.logger.Debug().Str("session_id", client.sessionID).Msg("WebSocket connection bound to session")

	case envelope.SessionID != "" && envelope.SessionID != client.sessionID:
		// Rebinding a live connection is a protocol violation
		client.SendError("Connection is already bound to another session")
		return
	}

	h.chat.HandleUserTurn(r.Context(), client.sessionID, envelope.Content, client)
}

func (h *WebSocketHandler) newInboundLimiter() *rate.Limiter {
	if h.config == nil || h.config.MessageRateLimit == "" {
		return nil
	}

	interval, err := time.ParseDuration(h.config.MessageRateLimit)
	if err != nil {
		h.logger.Warn().Err(err).
			Str("interval", h.config.MessageRateLimit).
			Msg("Failed to parse message rate limit, limiter disabled")
		return nil
	}

	burst := h.config.MessageBurst
	if burst < 1 {
		burst = 1
	}

	return rate.NewLimiter(rate.Every(interval), burst)
}

// SendTyping implements ReplySink
func (c *chatConn) SendTyping() {
	c.write(models.NewTypingEnvelope())
}

// SendMessage implements ReplySink
func (c *chatConn) SendMessage(content string) {
	c.write(models.NewMessageEnvelope(content))
}

// SendError implements ReplySink
func (c *chatConn) SendError(message string) {
	c.write(models.NewErrorEnvelope(message))
}

func (c *chatConn) write(envelope models.Envelope) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.closed {
		return
	}

	if err := c.conn.WriteJSON(envelope); err != nil {
		// The client is gone; persistence already happened upstream
		c.closed = true
		c.logger.Debug().Err(err).Str("session_id", c.sessionID).Msg("Dropping envelope for closed connection")
	}
}

func (c *chatConn) markClosed() {
	c.writeMu.Lock()
	c.closed = true
	c.writeMu.Unlock()
}
