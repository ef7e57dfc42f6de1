package tasks

import (
	"fmt"
	"time"

	"iam/internal/utils/logger"

	"github.com/hibiken/asynq"
)

// Scheduler handles periodic task scheduling
type Scheduler struct {
	scheduler   *asynq.Scheduler
	logger      *logger.Logger
	cleanupSpec string
}

// NewScheduler creates a new task scheduler. cleanupSpec is validated on Start.
func NewScheduler(opt asynq.RedisConnOpt, cleanupSpec string, logger *logger.Logger) *Scheduler {
	return &Scheduler{
		scheduler:   asynq.NewScheduler(opt, &asynq.SchedulerOpts{}),
		logger:      logger,
		cleanupSpec: cleanupSpec,
	}
}

// Start registers the periodic tasks and runs the scheduler in the background.
func (s *Scheduler) Start() error {
	if err := s.registerTasks(); err != nil {
		return fmt.Errorf("failed to register tasks: %w", err)
	}

	s.logger.Info("starting task scheduler")
	return s.scheduler.Start()
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.scheduler.Shutdown()
	s.logger.Info("task scheduler stopped")
}

// registerTasks registers all periodic tasks
func (s *Scheduler) registerTasks() error {
	if err := ValidateCronSpec(s.cleanupSpec); err != nil {
		return err
	}
	if err := s.RegisterCustomTask(s.cleanupSpec, TaskTypeVerificationCleanup, nil, cleanupOptions()...); err != nil {
		return err
	}

	if next, err := NextRun(s.cleanupSpec, time.Now()); err == nil {
		s.logger.Info("exchange cleanup next runs at %s", next.Format(time.RFC3339))
	}
	s.logger.Info("registered all periodic tasks")
	return nil
}

// RegisterCustomTask registers a custom periodic task
func (s *Scheduler) RegisterCustomTask(spec string, taskType string, payload []byte, opts ...asynq.Option) error {
	entryID, err := s.scheduler.Register(spec, asynq.NewTask(taskType, payload, opts...))
	if err != nil {
		return fmt.Errorf("failed to register custom task: %w", err)
	}

	s.logger.Info("registered custom task %s %s %s", taskType, spec, entryID)
	return nil
}
