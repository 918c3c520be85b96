package chat

import (
	"fmt"

	"github.com/ternarybob/parley/internal/interfaces"
	"github.com/ternarybob/parley/internal/models"
)

const assistantSystemPrompt = `You are an AI assistant that helps users understand and analyze PDF documents.
You have access to the full content of a document and can answer questions about it.

Document content:
%s

Please provide helpful, accurate answers based on the document content. If a question cannot be answered
from the document, clearly state that the information is not available in the provided document.`

const summarySystemPrompt = `You are an expert at summarizing documents. Provide a concise but comprehensive summary that captures the key points, main arguments, and important findings.`

// buildTurnMessages assembles the completion request for a user turn:
// system prompt with the truncated document text, then the last
// maxHistory transcript messages. The just-persisted user message is
// part of the transcript, so it is always included.
func buildTurnMessages(doc *models.Document, transcript []*models.Message, maxHistory, maxContextChars int) []interfaces.Message {
	messages := make([]interfaces.Message, 0, maxHistory+1)
	messages = append(messages, interfaces.Message{
		Role:    "system",
		Content: fmt.Sprintf(assistantSystemPrompt, truncate(doc.Content, maxContextChars)),
	})

	history := transcript
	if len(history) > maxHistory {
		history = history[len(history)-maxHistory:]
	}

	for _, msg := range history {
		role := "assistant"
		if msg.IsUser {
			role = "user"
		}
		messages = append(messages, interfaces.Message{
			Role:    role,
			Content: msg.Content,
		})
	}

	return messages
}

// buildSummaryMessages assembles the one-shot summarization request
func buildSummaryMessages(doc *models.Document, maxContextChars int) []interfaces.Message {
	return []interfaces.Message{
		{Role: "system", Content: summarySystemPrompt},
		{Role: "user", Content: fmt.Sprintf("Please summarize this document:\n\n%s", truncate(doc.Content, maxContextChars))},
	}
}

func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max]
}
