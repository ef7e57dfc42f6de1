package tasks

import (
	"context"
	"fmt"

	"iam/internal/utils/logger"

	"github.com/hibiken/asynq"
)

// TaskClient enqueues one-off tasks, used by the helper CLI.
type TaskClient struct {
	client *asynq.Client
	logger *logger.Logger
}

func NewTaskClient(opt asynq.RedisConnOpt) *TaskClient {
	return &TaskClient{
		client: asynq.NewClient(opt),
		logger: logger.New("TASKS"),
	}
}

// EnqueueVerificationCleanup asks the workers for an immediate cleanup run.
func (c *TaskClient) EnqueueVerificationCleanup(ctx context.Context) (*asynq.TaskInfo, error) {
	info, err := c.client.EnqueueContext(ctx, asynq.NewTask(TaskTypeVerificationCleanup, nil), cleanupOptions()...)
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue %s: %w", TaskTypeVerificationCleanup, err)
	}
	c.logger.Info("enqueued %s as %s on %s", TaskTypeVerificationCleanup, info.ID, info.Queue)
	return info, nil
}

// Close closes the underlying asynq client
func (c *TaskClient) Close() error {
	return c.client.Close()
}
