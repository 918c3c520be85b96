package storage

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/parley/internal/common"
	"github.com/ternarybob/parley/internal/interfaces"
	"github.com/ternarybob/parley/internal/storage/badger"
	"github.com/ternarybob/parley/internal/storage/memory"
)

// NewStorageManager creates a storage manager for the configured backend
func NewStorageManager(logger arbor.ILogger, config *common.Config) (interfaces.StorageManager, error) {
	switch config.Storage.Type {
	case "memory":
		logger.Info().Msg("Using in-memory storage")
		return memory.NewManager(logger), nil
	case "badger":
		logger.Info().Str("path", config.Storage.Badger.Path).Msg("Using Badger storage")
		return badger.NewManager(logger, &config.Storage.Badger)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", config.Storage.Type)
	}
}
