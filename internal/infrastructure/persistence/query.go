package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/facturasnap/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// listSpec describes how a table may be sorted and searched.
type listSpec struct {
	orderable  map[string]bool
	searchable []string
}

// apply adds the search condition to q.
func (s listSpec) apply(q *gorm.DB, f shared.Filter) *gorm.DB {
	if term := strings.TrimSpace(f.Search); term != "" && len(s.searchable) > 0 {
		like := "%" + strings.ToLower(term) + "%"
		conds := make([]string, len(s.searchable))
		args := make([]any, len(s.searchable))
		for i, col := range s.searchable {
			conds[i] = "LOWER(" + col + ") LIKE ?"
			args[i] = like
		}
		q = q.Where(strings.Join(conds, " OR "), args...)
	}
	return q
}

// page adds ordering and pagination. Unknown order columns fall back to
// created_at.
func (s listSpec) page(q *gorm.DB, f shared.Filter) *gorm.DB {
	col := ValidateSortField(f.OrderBy, s.orderable, defaultSortField)
	return q.Order(col + " " + ValidateSortOrder(f.OrderDir)).Offset(f.Offset()).Limit(f.Limit())
}

// list counts and loads one page of M matching scope.
func list[M any](ctx context.Context, db *gorm.DB, spec listSpec, f shared.Filter, scope func(*gorm.DB) *gorm.DB) ([]M, int64, error) {
	base := spec.apply(scope(db.WithContext(ctx).Model(new(M))), f).Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []M
	if err := spec.page(base, f).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// first loads one M matching scope, mapping a missing row to shared.ErrNotFound.
func first[M any](ctx context.Context, db *gorm.DB, scope func(*gorm.DB) *gorm.DB) (*M, error) {
	var m M
	if err := scope(db.WithContext(ctx)).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// remove deletes M rows matching scope and reports shared.ErrNotFound when
// nothing was deleted.
func remove[M any](ctx context.Context, db *gorm.DB, scope func(*gorm.DB) *gorm.DB) error {
	res := scope(db.WithContext(ctx)).Delete(new(M))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func byID(id uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB { return q.Where("id = ?", id) }
}

func ownedByID(userID, id uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB { return q.Where("id = ? AND user_id = ?", id, userID) }
}

func ownedBy(userID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB { return q.Where("user_id = ?", userID) }
}

func all(q *gorm.DB) *gorm.DB { return q }

func mapDomain[M any, D any](rows []M, fn func(*M) *D) []D {
	out := make([]D, len(rows))
	for i := range rows {
		out[i] = *fn(&rows[i])
	}
	return out
}

// isUniqueViolation recognizes duplicate key errors from postgres and sqlite.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint failed")
}
