package tasks

import "time"

// Task Types
const (
	// TaskTypeVerificationCleanup purges expired exchange records.
	TaskTypeVerificationCleanup = "auth:verification:cleanup"
)

// Task Queues
const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low" // For background tasks like cleanup
)

// Task Timeouts
const (
	TimeoutShort  = 1 * time.Minute
	TimeoutMedium = 5 * time.Minute
)

// Task Retry Settings
const (
	RetryDefault = 3
	RetryMin     = 1
)
