// -----------------------------------------------------------------------
// Last Modified: Saturday, 30th August 2026
// -----------------------------------------------------------------------

package app

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/parley/internal/common"
	"github.com/ternarybob/parley/internal/handlers"
	"github.com/ternarybob/parley/internal/interfaces"
	"github.com/ternarybob/parley/internal/services/chat"
	"github.com/ternarybob/parley/internal/services/documents"
	"github.com/ternarybob/parley/internal/services/llm"
	"github.com/ternarybob/parley/internal/services/pdf"
	"github.com/ternarybob/parley/internal/services/scheduler"
	"github.com/ternarybob/parley/internal/storage"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	// Storage
	StorageManager interfaces.StorageManager

	// Services
	LLMService       interfaces.LLMService
	ChatService      interfaces.ChatService
	DocumentService  interfaces.DocumentService
	PDFExtractor     interfaces.PDFExtractor
	PDFRenderer      interfaces.PDFRenderer
	SchedulerService *scheduler.Service

	// HTTP handlers
	APIHandler      *handlers.APIHandler
	DocumentHandler *handlers.DocumentHandler
	ChatHandler     *handlers.ChatHandler
	WSHandler       *handlers.WebSocketHandler
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	// Initialize storage layer
	if err := app.initStorage(); err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	// Initialize services
	if err := app.initServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	// Initialize handlers
	app.initHandlers()

	// Start background maintenance
	if err := app.SchedulerService.Start(); err != nil {
		return nil, fmt.Errorf("failed to start scheduler: %w", err)
	}

	logger.Info().
		Str("storage", cfg.Storage.Type).
		Str("llm_provider", string(cfg.LLM.DefaultProvider)).
		Msg("Application initialization complete")

	return app, nil
}

// initStorage initializes the storage layer per config (memory or badger)
func (a *App) initStorage() error {
	storageManager, err := storage.NewStorageManager(a.Logger, a.Config)
	if err != nil {
		return fmt.Errorf("failed to create storage manager: %w", err)
	}

	a.StorageManager = storageManager
	a.Logger.Debug().
		Str("storage", a.Config.Storage.Type).
		Msg("Storage layer initialized")

	return nil
}

// initServices initializes all business services in dependency order
func (a *App) initServices() error {
	var err error

	// LLM service first since chat depends on it. A missing API key fails
	// startup with a message naming the env vars and config keys to set.
	a.LLMService, err = llm.NewLLMService(a.Config, a.StorageManager.KeyValueStorage(), a.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize LLM service: %w", err)
	}

	if err := a.LLMService.HealthCheck(context.Background()); err != nil {
		a.Logger.Warn().Err(err).Msg("LLM health check failed - responses may be unavailable")
	} else {
		a.Logger.Debug().Str("provider", a.LLMService.Provider()).Msg("LLM service initialized and health check passed")
	}

	a.ChatService = chat.NewService(a.StorageManager, a.LLMService, &a.Config.Chat, a.Logger)

	a.PDFExtractor = pdf.NewExtractor(a.Logger)
	a.PDFRenderer = pdf.NewRenderer(a.Logger)

	a.DocumentService = documents.NewService(
		a.StorageManager,
		a.PDFExtractor,
		a.ChatService,
		&a.Config.Upload,
		a.Logger,
	)

	a.SchedulerService = scheduler.NewService(a.StorageManager, &a.Config.Scheduler, a.Logger)

	return nil
}

// initHandlers initializes all HTTP handlers
func (a *App) initHandlers() {
	a.APIHandler = handlers.NewAPIHandler(a.Logger)
	a.DocumentHandler = handlers.NewDocumentHandler(a.DocumentService, &a.Config.Upload, a.Logger)
	a.ChatHandler = handlers.NewChatHandler(a.ChatService, a.DocumentService, a.PDFRenderer, a.Logger)
	a.WSHandler = handlers.NewWebSocketHandler(a.ChatService, &a.Config.WebSocket, a.Logger)
}

// Close gracefully shuts down all application components
func (a *App) Close() {
	if a.SchedulerService != nil {
		a.SchedulerService.Stop()
	}

	if a.LLMService != nil {
		a.LLMService.Close()
	}

	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close storage manager")
		}
	}

	a.Logger.Info().Msg("Application shutdown complete")
}
