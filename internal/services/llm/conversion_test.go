package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/ternarybob/parley/internal/interfaces"
)

func TestConvertMessagesToGemini(t *testing.T) {
	messages := []interfaces.Message{
		{Role: "system", Content: "You are a document assistant."},
		{Role: "user", Content: "What is this about?"},
		{Role: "assistant", Content: "It covers Go testing."},
		{Role: "user", Content: "Tell me more."},
	}

	contents, systemText, err := convertMessagesToGemini(messages)
	require.NoError(t, err)

	assert.Equal(t, "You are a document assistant.", systemText)
	require.Len(t, contents, 3)
	assert.Equal(t, genai.RoleUser, contents[0].Role)
	assert.Equal(t, genai.RoleModel, contents[1].Role)
	assert.Equal(t, genai.RoleUser, contents[2].Role)
	assert.Equal(t, "What is this about?", contents[0].Parts[0].Text)
}

func TestConvertMessagesToGemini_Empty(t *testing.T) {
	_, _, err := convertMessagesToGemini(nil)
	assert.Error(t, err)
}

func TestConvertMessagesToGemini_NoUserMessage(t *testing.T) {
	messages := []interfaces.Message{
		{Role: "system", Content: "system only"},
		{Role: "assistant", Content: "assistant only"},
	}

	_, _, err := convertMessagesToGemini(messages)
	assert.Error(t, err)
}

func TestConvertMessagesToGemini_OnlyFirstSystemKept(t *testing.T) {
	messages := []interfaces.Message{
		{Role: "system", Content: "first"},
		{Role: "system", Content: "second"},
		{Role: "user", Content: "hello"},
	}

	contents, systemText, err := convertMessagesToGemini(messages)
	require.NoError(t, err)
	assert.Equal(t, "first", systemText)
	assert.Len(t, contents, 1)
}

func TestConvertMessagesToClaude(t *testing.T) {
	messages := []interfaces.Message{
		{Role: "system", Content: "You are a document assistant."},
		{Role: "user", Content: "What is this about?"},
		{Role: "assistant", Content: "It covers Go testing."},
	}

	claudeMessages, systemText, err := convertMessagesToClaude(messages)
	require.NoError(t, err)

	assert.Equal(t, "You are a document assistant.", systemText)
	require.Len(t, claudeMessages, 2)
	assert.Equal(t, "user", string(claudeMessages[0].Role))
	assert.Equal(t, "assistant", string(claudeMessages[1].Role))
}

func TestConvertMessagesToClaude_Empty(t *testing.T) {
	_, _, err := convertMessagesToClaude(nil)
	assert.Error(t, err)
}
