package persistence

import (
	"context"
	"errors"

	"github.com/facturasnap/backend/internal/domain/account"
	"github.com/facturasnap/backend/internal/domain/shared"
	"github.com/facturasnap/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var creditListSpec = listSpec{
	orderable:  map[string]bool{"created_at": true, "amount": true},
	searchable: []string{"source"},
}

// GormCreditRepository implements account.CreditRepository
type GormCreditRepository struct {
	db *gorm.DB
}

// NewGormCreditRepository creates a new GormCreditRepository
func NewGormCreditRepository(db *gorm.DB) *GormCreditRepository {
	return &GormCreditRepository{db: db}
}

// FindByIDForUser finds one of the user's ledger entries
func (r *GormCreditRepository) FindByIDForUser(ctx context.Context, userID, id uuid.UUID) (*account.Credit, error) {
	m, err := first[models.CreditModel](ctx, r.db, ownedByID(userID, id))
	if err != nil {
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindAllForUser lists the user's ledger entries
func (r *GormCreditRepository) FindAllForUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]account.Credit, int64, error) {
	rows, total, err := list[models.CreditModel](ctx, r.db, creditListSpec, filter, ownedBy(userID))
	if err != nil {
		return nil, 0, err
	}
	return mapDomain(rows, (*models.CreditModel).ToDomain), total, nil
}

// Save creates or updates a ledger entry
func (r *GormCreditRepository) Save(ctx context.Context, credit *account.Credit) error {
	return r.db.WithContext(ctx).Save(models.CreditModelFromDomain(credit)).Error
}

// DeleteForUser removes one of the user's ledger entries
func (r *GormCreditRepository) DeleteForUser(ctx context.Context, userID, id uuid.UUID) error {
	return remove[models.CreditModel](ctx, r.db, ownedByID(userID, id))
}

// Balance sums the user's ledger
func (r *GormCreditRepository) Balance(ctx context.Context, userID uuid.UUID) (int, error) {
	return balance(r.db.WithContext(ctx), userID)
}

// Consume appends entry when the balance allows it. The user row is locked
// so concurrent consumptions for one user serialize on postgres.
func (r *GormCreditRepository) Consume(ctx context.Context, entry *account.Credit) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owner models.UserModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").Where("id = ?", entry.UserID).Take(&owner).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}
		current, err := balance(tx, entry.UserID)
		if err != nil {
			return err
		}
		if current+entry.Amount < 0 {
			return shared.ErrInsufficientCredits
		}
		return tx.Create(models.CreditModelFromDomain(entry)).Error
	})
}

func balance(db *gorm.DB, userID uuid.UUID) (int, error) {
	var sum int
	err := db.Model(&models.CreditModel{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ?", userID).
		Scan(&sum).Error
	return sum, err
}

var _ account.CreditRepository = (*GormCreditRepository)(nil)
