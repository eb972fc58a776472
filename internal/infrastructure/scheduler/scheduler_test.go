package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestScheduler_Add_Validation(t *testing.T) {
	noop := func(context.Context) error { return nil }
	tests := []struct {
		name string
		job  Job
		want error
	}{
		{"missing name", Job{Interval: time.Second, Run: noop}, ErrInvalidJob},
		{"missing task", Job{Name: "x", Interval: time.Second}, ErrInvalidJob},
		{"zero interval", Job{Name: "x", Run: noop}, ErrInvalidJob},
		{"negative interval", Job{Name: "x", Interval: -time.Second, Run: noop}, ErrInvalidJob},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScheduler(zap.NewNop())
			assert.ErrorIs(t, s.Add(tt.job), tt.want)
		})
	}
}

func TestScheduler_Add_DuplicateAndAfterStart(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	job := Job{Name: "sweep", Interval: time.Hour, Run: func(context.Context) error { return nil }}
	require.NoError(t, s.Add(job))
	assert.ErrorIs(t, s.Add(job), ErrDuplicateJob)

	s.Start(context.Background())
	defer s.Stop(context.Background())
	job.Name = "late"
	assert.ErrorIs(t, s.Add(job), ErrSchedulerRunning)
}

func TestScheduler_RunsJobsPeriodically(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	var runs atomic.Int32
	require.NoError(t, s.Add(Job{
		Name:     "tick",
		Interval: 5 * time.Millisecond,
		Run: func(context.Context) error {
			runs.Add(1)
			return nil
		},
	}))

	s.Start(context.Background())
	require.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, time.Millisecond)
	require.NoError(t, s.Stop(context.Background()))

	st, ok := s.Stats("tick")
	require.True(t, ok)
	assert.Equal(t, JobStatusSuccess, st.Status)
	assert.GreaterOrEqual(t, st.Runs, 3)
	assert.Zero(t, st.Failures)

	stopped := runs.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, stopped, runs.Load(), "no runs after Stop")
}

func TestScheduler_FailuresAndPanicsAreRecorded(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	require.NoError(t, s.Add(Job{
		Name:     "fails",
		Interval: 5 * time.Millisecond,
		Run:      func(context.Context) error { return errors.New("database unavailable") },
	}))
	require.NoError(t, s.Add(Job{
		Name:     "panics",
		Interval: 5 * time.Millisecond,
		Run:      func(context.Context) error { panic("boom") },
	}))

	s.Start(context.Background())
	defer s.Stop(context.Background())

	require.Eventually(t, func() bool {
		a, _ := s.Stats("fails")
		b, _ := s.Stats("panics")
		return a.Failures >= 2 && b.Failures >= 2
	}, time.Second, time.Millisecond)

	st, _ := s.Stats("fails")
	assert.Equal(t, JobStatusFailed, st.Status)
	assert.Equal(t, "database unavailable", st.LastError)
	st, _ = s.Stats("panics")
	assert.Contains(t, st.LastError, "boom")
}

func TestScheduler_StopCancelsRunningJob(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	started := make(chan struct{}, 1)
	require.NoError(t, s.Add(Job{
		Name:     "slow",
		Interval: time.Millisecond,
		Timeout:  time.Hour,
		Run: func(ctx context.Context) error {
			select {
			case started <- struct{}{}:
			default:
			}
			<-ctx.Done()
			return ctx.Err()
		},
	}))

	s.Start(context.Background())
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, s.Stop(ctx))
	assert.NoError(t, s.Stop(ctx), "second Stop is a no-op")
}

func TestScheduler_StatsUnknownJob(t *testing.T) {
	_, ok := NewScheduler(zap.NewNop()).Stats("missing")
	assert.False(t, ok)
}

type purgerFunc func(ctx context.Context, t time.Time) (int64, error)

func (f purgerFunc) DeleteExpired(ctx context.Context, t time.Time) (int64, error) { return f(ctx, t) }

func TestSessionSweepJob(t *testing.T) {
	var cutoff time.Time
	job := SessionSweepJob(purgerFunc(func(_ context.Context, t time.Time) (int64, error) {
		cutoff = t
		return 2, nil
	}), time.Hour, zap.NewNop())

	assert.Equal(t, "session-sweep", job.Name)
	assert.Equal(t, time.Hour, job.Interval)
	require.NoError(t, job.Run(context.Background()))
	assert.WithinDuration(t, time.Now(), cutoff, time.Second)

	failing := SessionSweepJob(purgerFunc(func(context.Context, time.Time) (int64, error) {
		return 0, errors.New("connection reset")
	}), time.Hour, zap.NewNop())
	assert.EqualError(t, failing.Run(context.Background()), "connection reset")
}
