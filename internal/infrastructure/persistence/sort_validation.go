package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns defaultOrder if the input is invalid or empty.
func ValidateSortOrder(orderDir, defaultOrder string) string {
	switch strings.ToUpper(strings.TrimSpace(orderDir)) {
	case "ASC":
		return "ASC"
	case "DESC":
		return "DESC"
	default:
		return defaultOrder
	}
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// CommonSortFields contains fields present on every table
var CommonSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

// UserSortFields contains allowed sort fields for users
var UserSortFields = withCommon("name", "email")

// CustomerSortFields contains allowed sort fields for customers
var CustomerSortFields = withCommon("name", "email", "type")

// InvoiceSortFields contains allowed sort fields for invoices
var InvoiceSortFields = withCommon("date", "status", "total_amount", "is_paid")

// PaymentSortFields contains allowed sort fields for payments
var PaymentSortFields = withCommon("date", "amount", "method", "status")

func withCommon(fields ...string) map[string]bool {
	allowed := make(map[string]bool, len(CommonSortFields)+len(fields))
	for f := range CommonSortFields {
		allowed[f] = true
	}
	for _, f := range fields {
		allowed[f] = true
	}
	return allowed
}
