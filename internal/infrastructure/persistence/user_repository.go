package persistence

import (
	"context"
	"strings"

	"github.com/facturasnap/backend/internal/domain/account"
	"github.com/facturasnap/backend/internal/domain/shared"
	"github.com/facturasnap/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormUserRepository implements account.UserRepository using GORM
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// FindByID finds a user by id
func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*account.User, error) {
	m, err := first[models.UserModel](ctx, r.db, byID(id))
	if err != nil {
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindByEmail finds a user by normalized email
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*account.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	m, err := first[models.UserModel](ctx, r.db, func(q *gorm.DB) *gorm.DB {
		return q.Where("email = ?", email)
	})
	if err != nil {
		return nil, err
	}
	return m.ToDomain(), nil
}

// ExistsByEmail reports whether email is already registered
func (r *GormUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.UserModel{}).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		Count(&count).Error
	return count > 0, err
}

// Save creates or updates a user
func (r *GormUserRepository) Save(ctx context.Context, user *account.User) error {
	err := r.db.WithContext(ctx).Save(models.UserModelFromDomain(user)).Error
	if isUniqueViolation(err) {
		return shared.WrapDomainError("ALREADY_EXISTS", "Email is already registered", err)
	}
	return err
}

var _ account.UserRepository = (*GormUserRepository)(nil)
