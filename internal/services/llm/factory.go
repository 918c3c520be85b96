package llm

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/parley/internal/common"
	"github.com/ternarybob/parley/internal/interfaces"
)

// NewLLMService creates the completion client for the configured provider
func NewLLMService(config *common.Config, kvStorage interfaces.KeyValueStorage, logger arbor.ILogger) (interfaces.LLMService, error) {
	switch config.LLM.DefaultProvider {
	case common.LLMProviderGemini:
		return NewGeminiService(&config.Gemini, kvStorage, logger)
	case common.LLMProviderClaude:
		return NewClaudeService(&config.Claude, kvStorage, logger)
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", config.LLM.DefaultProvider)
	}
}
