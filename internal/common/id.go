package common

import (
	"github.com/google/uuid"
)

// NewDocumentID generates a unique document ID with the "doc_" prefix
func NewDocumentID() string {
	return "doc_" + uuid.New().String()
}

// NewSessionID generates a unique chat session ID with the "chat_" prefix
func NewSessionID() string {
	return "chat_" + uuid.New().String()
}

// NewMessageID generates a unique message ID with the "msg_" prefix
func NewMessageID() string {
	return "msg_" + uuid.New().String()
}
