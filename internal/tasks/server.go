package tasks

import (
	"fmt"

	"iam/internal/utils/logger"

	"github.com/hibiken/asynq"
)

// Server handles task processing
type Server struct {
	server      *asynq.Server
	handler     *TaskHandler
	logger      *logger.Logger
	concurrency int
	queues      map[string]int
}

// NewServer creates a new task processing server
func NewServer(opt asynq.RedisConnOpt, concurrency int, handler *TaskHandler, logger *logger.Logger) *Server {
	if concurrency <= 0 {
		concurrency = 1
	}
	queues := map[string]int{
		QueueCritical: 6,
		QueueDefault:  3,
		QueueLow:      1,
	}
	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues:      queues,
		// Enable strict priority, meaning higher priority queues are processed first
		StrictPriority: true,
	})

	return &Server{
		server:      server,
		handler:     handler,
		logger:      logger,
		concurrency: concurrency,
		queues:      queues,
	}
}

// Mux maps task types onto handlers.
func (s *Server) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskTypeVerificationCleanup, s.handler.HandleVerificationCleanup)
	return mux
}

// Start starts the task processing server
func (s *Server) Start() error {
	s.logger.Info("starting task processing server concurrency %d queues %v", s.concurrency, s.queues)

	if err := s.server.Start(s.Mux()); err != nil {
		return fmt.Errorf("failed to start task server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the task processing server
func (s *Server) Shutdown() {
	s.logger.Info("shutting down task processing server")
	s.server.Shutdown()
}
