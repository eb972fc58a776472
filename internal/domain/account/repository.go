package account

import (
	"context"
	"time"

	"github.com/facturasnap/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// UserRepository persists users.
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Save(ctx context.Context, user *User) error
}

// PaymentPlanRepository persists payment plans. Plans are global.
type PaymentPlanRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*PaymentPlan, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]PaymentPlan, int64, error)
	Save(ctx context.Context, plan *PaymentPlan) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CreditRepository persists the credit ledger.
type CreditRepository interface {
	shared.OwnedRepository[Credit]
	Balance(ctx context.Context, userID uuid.UUID) (int, error)
	// Consume appends a consumption entry if the balance is positive and
	// returns shared.ErrInsufficientCredits otherwise.
	Consume(ctx context.Context, entry *Credit) error
}

// SessionRepository persists login sessions.
type SessionRepository interface {
	shared.OwnedRepository[Session]
	DeleteByTokenID(ctx context.Context, tokenID string) error
	// DeleteExpired removes sessions that expired before t and reports how
	// many were removed.
	DeleteExpired(ctx context.Context, t time.Time) (int64, error)
}
