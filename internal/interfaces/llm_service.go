package interfaces

import (
	"context"
)

// Message represents a single turn in a conversation sent to an LLM provider
type Message struct {
	Role    string `json:"role"` // "system", "user", or "assistant"
	Content string `json:"content"`
}

// LLMService defines a chat completion provider.
// Implementations: Gemini (google.golang.org/genai), Claude (anthropic-sdk-go).
type LLMService interface {
	// Chat generates a completion from the conversation history, which must
	// be in chronological order and contain at least one user message.
	Chat(ctx context.Context, messages []Message) (string, error)

	// HealthCheck verifies the provider is reachable and can complete
	HealthCheck(ctx context.Context) error

	// Provider returns the provider identifier ("gemini" or "claude")
	Provider() string

	// Close releases provider resources
	Close() error
}
