package persistence

import (
	"errors"
	"strings"

	"github.com/erp/invoicing/internal/domain/shared"
	"gorm.io/gorm"
)

// translateError maps driver errors onto the domain sentinels repositories return
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.ErrNotFound
	case isDuplicateKey(err):
		return shared.ErrAlreadyExists
	default:
		return err
	}
}

// isDuplicateKey covers gorm's translated error and the raw postgres/sqlite messages
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}

// affected turns a write that matched no rows into shared.ErrNotFound
func affected(result *gorm.DB) error {
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// paginate applies skip/limit and the requested order. Creation order is the
// default, and id breaks ties so pages stay stable.
func paginate(query *gorm.DB, filter shared.ListFilter, allowed map[string]bool) *gorm.DB {
	field := ValidateSortField(filter.SortBy, allowed, "created_at")
	order := ValidateSortOrder(filter.SortOrder, "ASC")
	query = query.Order(field + " " + order)
	if field != "id" {
		query = query.Order("id " + order)
	}
	return query.Offset(filter.Offset()).Limit(filter.PageLimit())
}
