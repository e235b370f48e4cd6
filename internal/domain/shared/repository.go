package shared

// Pagination defaults shared by every list operation.
const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// ListFilter holds skip/limit pagination for list queries.
// SortBy and SortOrder are validated against a per-table whitelist by the
// repository; unknown values fall back to creation order.
type ListFilter struct {
	Skip      int
	Limit     int
	SortBy    string
	SortOrder string
}

// Offset returns the number of rows to skip
func (f ListFilter) Offset() int {
	if f.Skip < 0 {
		return 0
	}
	return f.Skip
}

// PageLimit returns the page size, clamped to [1, MaxLimit]
func (f ListFilter) PageLimit() int {
	if f.Limit <= 0 {
		return DefaultLimit
	}
	if f.Limit > MaxLimit {
		return MaxLimit
	}
	return f.Limit
}
