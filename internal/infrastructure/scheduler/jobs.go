package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// SessionPurger deletes login sessions past their expiry.
type SessionPurger interface {
	DeleteExpired(ctx context.Context, t time.Time) (int64, error)
}

// SessionSweepJob removes expired sessions every interval.
func SessionSweepJob(sessions SessionPurger, interval time.Duration, logger *zap.Logger) Job {
	return Job{
		Name:     "session-sweep",
		Interval: interval,
		Run: func(ctx context.Context) error {
			n, err := sessions.DeleteExpired(ctx, time.Now())
			if err != nil {
				return err
			}
			if n > 0 {
				logger.Info("Expired sessions removed", zap.Int64("count", n))
			}
			return nil
		},
	}
}
