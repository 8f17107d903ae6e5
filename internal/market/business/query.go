package business

import "surplusmarket_api/internal/market/models"

// SortOrder selects the ordering of a listing view.
type SortOrder string

const (
	SortNewest    SortOrder = "newest"
	SortPriceAsc  SortOrder = "price-asc"
	SortPriceDesc SortOrder = "price-desc"
)

// ParseSortOrder maps a raw query parameter to a sort order, falling back
// to newest for anything unknown.
func ParseSortOrder(s string) SortOrder {
	switch SortOrder(s) {
	case SortPriceAsc, SortPriceDesc, SortNewest:
		return SortOrder(s)
	}
	return SortNewest
}

// Query is the browse state a view is computed from. Price bounds stay
// strings on purpose: an empty string means "no bound" and must never be
// read as 0.
type Query struct {
	Text      string
	Category  string
	Condition string
	MinPrice  string
	MaxPrice  string
	Sort      SortOrder
}

// DefaultQuery is the initial browse state: no text, both dropdowns on the
// "all" sentinel, no price bounds, newest first.
func DefaultQuery() Query {
	return Query{
		Category:  models.CategoryAll,
		Condition: models.ConditionAll,
		Sort:      SortNewest,
	}
}
