package models

import (
	"time"
)

// Envelope types exchanged over the chat WebSocket.
const (
	// EnvelopeMessage carries chat content. Inbound: a user utterance tagged
	// with a session id. Outbound: the assistant reply.
	EnvelopeMessage = "message"
	// EnvelopeTyping signals that a reply is pending. Outbound only.
	EnvelopeTyping = "typing"
	// EnvelopeError carries a human-readable failure description. Outbound only.
	EnvelopeError = "error"
)

// Envelope is a discrete typed unit on the realtime channel.
type Envelope struct {
	Type      string     `json:"type"`
	SessionID string     `json:"sessionId,omitempty"`
	Content   string     `json:"content,omitempty"`
	IsUser    *bool      `json:"isUser,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// NewMessageEnvelope builds an outbound assistant message envelope
func NewMessageEnvelope(content string) Envelope {
	isUser := false
	now := time.Now()
	return Envelope{
		Type:      EnvelopeMessage,
		Content:   content,
		IsUser:    &isUser,
		Timestamp: &now,
	}
}

// NewTypingEnvelope builds an outbound typing indicator envelope
func NewTypingEnvelope() Envelope {
	now := time.Now()
	return Envelope{
		Type:      EnvelopeTyping,
		Timestamp: &now,
	}
}

// NewErrorEnvelope builds an outbound error envelope
func NewErrorEnvelope(message string) Envelope {
	return Envelope{
		Type:    EnvelopeError,
		Content: message,
	}
}
