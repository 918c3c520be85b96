package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLogger_ConsoleOutput(t *testing.T) {
	config := NewDefaultConfig()
	config.Logging.Level = "debug"
	config.Logging.Output = []string{"stdout"}

	logger := InitLogger(config)
	require.NotNil(t, logger)

	// The global instance must be the one just configured
	assert.Equal(t, logger, GetLogger())

	// Writing through the configured logger must not panic
	logger.Info().Str("component", "test").Msg("logger initialized")
}

func TestPrintBanner(t *testing.T) {
	assert.NotPanics(t, func() { PrintBanner("0.0.0-test") })
}
