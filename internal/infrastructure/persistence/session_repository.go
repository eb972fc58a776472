package persistence

import (
	"context"
	"time"

	"github.com/facturasnap/backend/internal/domain/account"
	"github.com/facturasnap/backend/internal/domain/shared"
	"github.com/facturasnap/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var sessionListSpec = listSpec{
	orderable:  map[string]bool{"created_at": true, "expires_at": true},
	searchable: []string{"user_agent", "client_ip"},
}

// GormSessionRepository implements account.SessionRepository
type GormSessionRepository struct {
	db *gorm.DB
}

// NewGormSessionRepository creates a new GormSessionRepository
func NewGormSessionRepository(db *gorm.DB) *GormSessionRepository {
	return &GormSessionRepository{db: db}
}

// FindByIDForUser finds one of the user's sessions
func (r *GormSessionRepository) FindByIDForUser(ctx context.Context, userID, id uuid.UUID) (*account.Session, error) {
	m, err := first[models.SessionModel](ctx, r.db, ownedByID(userID, id))
	if err != nil {
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindAllForUser lists the user's sessions
func (r *GormSessionRepository) FindAllForUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]account.Session, int64, error) {
	rows, total, err := list[models.SessionModel](ctx, r.db, sessionListSpec, filter, ownedBy(userID))
	if err != nil {
		return nil, 0, err
	}
	return mapDomain(rows, (*models.SessionModel).ToDomain), total, nil
}

// Save creates or updates a session
func (r *GormSessionRepository) Save(ctx context.Context, s *account.Session) error {
	return r.db.WithContext(ctx).Save(models.SessionModelFromDomain(s)).Error
}

// DeleteForUser removes one of the user's sessions
func (r *GormSessionRepository) DeleteForUser(ctx context.Context, userID, id uuid.UUID) error {
	return remove[models.SessionModel](ctx, r.db, ownedByID(userID, id))
}

// DeleteByTokenID removes the session bound to an access token
func (r *GormSessionRepository) DeleteByTokenID(ctx context.Context, tokenID string) error {
	return remove[models.SessionModel](ctx, r.db, func(q *gorm.DB) *gorm.DB {
		return q.Where("token_id = ?", tokenID)
	})
}

// DeleteExpired removes every session that expired before t
func (r *GormSessionRepository) DeleteExpired(ctx context.Context, t time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at < ?", t).Delete(&models.SessionModel{})
	return res.RowsAffected, res.Error
}

var _ account.SessionRepository = (*GormSessionRepository)(nil)
