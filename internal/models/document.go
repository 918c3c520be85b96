package models

import (
	"time"
)

// Document represents an uploaded PDF with its extracted text content.
// Immutable after creation except deletion.
type Document struct {
	ID         string    `json:"id"` // doc_{uuid}
	Title      string    `json:"title"`
	Filename   string    `json:"filename"`
	Content    string    `json:"content"`   // extracted plain text
	Size       int64     `json:"size"`      // original file size in bytes
	PageCount  int       `json:"pageCount"` // >= 1
	Extracted  bool      `json:"extracted"` // false when extraction degraded to placeholder text
	UploadedAt time.Time `json:"uploadedAt"`
}

// ChatSession is the conversation attached to a document. Created lazily on
// first chat access; deleted when its document is deleted.
type ChatSession struct {
	ID         string    `json:"id"` // chat_{uuid}
	DocumentID string    `json:"documentId"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Message is a single transcript entry. Append-only; ordered within a
// session by Timestamp, ties broken by Seq (store-assigned insertion order).
type Message struct {
	ID        string    `json:"id"` // msg_{uuid}
	SessionID string    `json:"sessionId"`
	Content   string    `json:"content"`
	IsUser    bool      `json:"isUser"`
	Timestamp time.Time `json:"timestamp"`
	Seq       uint64    `json:"-"`
}
