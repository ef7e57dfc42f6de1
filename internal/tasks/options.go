package tasks

import (
	"fmt"
	"time"

	"iam/internal/config"

	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"
)

// RedisOpt builds the asynq connection from the shared Redis settings.
func RedisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:         cfg.Addr,
		Username:     cfg.Username,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
}

// ValidateCronSpec accepts standard five-field specs and descriptors such as "@every 1m".
func ValidateCronSpec(spec string) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", spec, err)
	}
	return nil
}

// NextRun returns the first activation of spec strictly after from.
func NextRun(spec string, from time.Time) (time.Time, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid cron spec %q: %w", spec, err)
	}
	return schedule.Next(from), nil
}

func cleanupOptions() []asynq.Option {
	return []asynq.Option{
		asynq.Queue(QueueLow),
		asynq.MaxRetry(RetryMin),
		asynq.Timeout(TimeoutShort),
	}
}
