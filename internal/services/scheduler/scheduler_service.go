package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/parley/internal/common"
	"github.com/ternarybob/parley/internal/interfaces"
)

// Service runs periodic store maintenance on a cron schedule
type Service struct {
	storage interfaces.StorageManager
	config  *common.SchedulerConfig
	cron    *cron.Cron
	logger  arbor.ILogger

	mu      sync.Mutex
	running bool
}

// NewService creates a new maintenance scheduler
func NewService(storage interfaces.StorageManager, config *common.SchedulerConfig, logger arbor.ILogger) *Service {
	return &Service{
		storage: storage,
		config:  config,
		cron:    cron.New(),
		logger:  logger,
	}
}

// Start registers the maintenance job and begins the cron loop.
// A disabled scheduler starts as a no-op.
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	if !s.config.Enabled {
		s.logger.Info().Msg("Maintenance scheduler disabled")
		return nil
	}

	schedule := s.config.Schedule
	if schedule == "" {
		schedule = "@every 10m"
	}

	if _, err := s.cron.AddFunc(schedule, s.runMaintenance); err != nil {
		return fmt.Errorf("failed to register maintenance job: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info().
		Str("schedule", schedule).
		Msg("Maintenance scheduler started")

	return nil
}

// Stop halts the cron loop, waiting for a running job to finish
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.running = false

	s.logger.Info().Msg("Maintenance scheduler stopped")
}

func (s *Service) runMaintenance() {
	start := time.Now()
	s.logger.Debug().Msg("Running store maintenance")

	if err := s.storage.Maintain(context.Background()); err != nil {
		s.logger.Error().Err(err).Msg("Store maintenance failed")
		return
	}

	s.logger.Debug().
		Dur("duration", time.Since(start)).
		Msg("Store maintenance completed")
}
