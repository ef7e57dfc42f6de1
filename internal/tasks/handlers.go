package tasks

import (
	"context"
	"fmt"

	"iam/internal/utils/logger"

	"github.com/hibiken/asynq"
)

// ExchangePurger deletes expired exchange records. *auth.ExchangeIssuer satisfies it.
type ExchangePurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// TaskHandler handles task processing with improved error handling and logging
type TaskHandler struct {
	purger ExchangePurger
	logger *logger.Logger
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(purger ExchangePurger) *TaskHandler {
	return &TaskHandler{
		purger: purger,
		logger: logger.New("task_handler"),
	}
}

func (h *TaskHandler) HandleVerificationCleanup(ctx context.Context, t *asynq.Task) error {
	removed, err := h.purger.PurgeExpired(ctx)
	if err != nil {
		return h.logger.Error("Failed to purge expired exchange records", fmt.Errorf("%s: %w", t.Type(), err))
	}
	if removed > 0 {
		h.logger.Success("Purged %d expired exchange records", removed)
	}
	return nil
}
