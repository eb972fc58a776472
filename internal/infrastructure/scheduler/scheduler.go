// Package scheduler runs periodic maintenance jobs in the background.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// JobStatus represents the outcome of a job's latest run
type JobStatus string

const (
	JobStatusPending JobStatus = "PENDING"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
)

// Task is the work of one run.
type Task func(ctx context.Context) error

// Job is a task repeated every Interval.
type Job struct {
	Name     string
	Interval time.Duration
	// Timeout bounds one run. Zero uses the interval.
	Timeout time.Duration
	Run     Task
}

// JobStats summarizes a job's runs
type JobStats struct {
	Status    JobStatus
	Runs      int
	Failures  int
	LastRun   time.Time
	LastError string
}

// Scheduler runs each registered job on its own ticker. Runs of the same
// job never overlap.
type Scheduler struct {
	logger *zap.Logger

	jobs      []Job
	stats     map[string]*JobStats
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewScheduler creates a scheduler with no jobs
func NewScheduler(logger *zap.Logger) *Scheduler {
	return &Scheduler{
		logger: logger,
		stats:  make(map[string]*JobStats),
	}
}

// Add registers a job. Jobs must be added before Start.
func (s *Scheduler) Add(job Job) error {
	if job.Name == "" || job.Run == nil || job.Interval <= 0 {
		return fmt.Errorf("%w: %q", ErrInvalidJob, job.Name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return ErrSchedulerRunning
	}
	if _, exists := s.stats[job.Name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateJob, job.Name)
	}
	s.jobs = append(s.jobs, job)
	s.stats[job.Name] = &JobStats{Status: JobStatusPending}
	return nil
}

// Start launches one goroutine per job. Calling Start twice is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return
	}
	s.isRunning = true

	ctx, s.cancel = context.WithCancel(ctx)
	for _, job := range s.jobs {
		s.wg.Add(1)
		go s.loop(ctx, job)
	}
	s.logger.Info("Scheduler started", zap.Int("jobs", len(s.jobs)))
}

// Stop cancels in-flight runs and waits for the job goroutines, or for ctx.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	cancel := s.cancel
	s.mu.Unlock()

	cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Scheduler stop timed out")
		return ctx.Err()
	}
}

// Stats returns a snapshot of the named job's counters.
func (s *Scheduler) Stats(name string) (JobStats, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.stats[name]
	if !ok {
		return JobStats{}, false
	}
	return *st, true
}

func (s *Scheduler) loop(ctx context.Context, job Job) {
	defer s.wg.Done()

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx, job)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context, job Job) {
	timeout := job.Timeout
	if timeout <= 0 {
		timeout = job.Interval
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	s.record(job.Name, func(st *JobStats) { st.Status = JobStatusRunning })

	start := time.Now()
	err := safeRun(runCtx, job.Run)

	s.record(job.Name, func(st *JobStats) {
		st.Runs++
		st.LastRun = start
		if err != nil {
			st.Status = JobStatusFailed
			st.Failures++
			st.LastError = err.Error()
			return
		}
		st.Status = JobStatusSuccess
		st.LastError = ""
	})

	if err != nil {
		s.logger.Error("Scheduled job failed", zap.String("job", job.Name), zap.Error(err))
		return
	}
	s.logger.Debug("Scheduled job completed",
		zap.String("job", job.Name),
		zap.Duration("duration", time.Since(start)),
	)
}

func (s *Scheduler) record(name string, update func(*JobStats)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	update(s.stats[name])
}

// safeRun turns a panicking task into an error so one bad run does not
// kill the job's loop.
func safeRun(ctx context.Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return task(ctx)
}
