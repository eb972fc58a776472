package scheduler

import "errors"

var (
	// ErrSchedulerRunning is returned when jobs are added after Start
	ErrSchedulerRunning = errors.New("scheduler is already running")

	// ErrInvalidJob is returned for a job without a name, task or positive interval
	ErrInvalidJob = errors.New("invalid scheduled job")

	// ErrDuplicateJob is returned when two jobs share a name
	ErrDuplicateJob = errors.New("duplicate scheduled job")
)
