package business

import (
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"surplusmarket_api/internal/market/models"
)

// ApplyQuery computes the visible, ordered subset of listings for a query.
// Pure: the input slice is never reordered or mutated, and the same query
// always yields the same result.
//
// Filters short-circuit when inactive: blank text, the "all" sentinel on
// category/condition, and empty price bounds each mean "no filtering".
// Sorting is stable so equal keys keep their input order.
func ApplyQuery(listings []*models.Listing, q Query) []*models.Listing {
	// A Caser is stateful, so each call gets its own.
	fold := cases.Fold()

	text := fold.String(strings.TrimSpace(q.Text))
	minPrice, hasMin := parseBound(q.MinPrice)
	maxPrice, hasMax := parseBound(q.MaxPrice)
	filterCategory := q.Category != "" && q.Category != models.CategoryAll
	filterCondition := q.Condition != "" && q.Condition != models.ConditionAll

	out := make([]*models.Listing, 0, len(listings))
	for _, l := range listings {
		if text != "" && !matchesText(fold, l, text) {
			continue
		}
		if filterCategory && l.Category != q.Category {
			continue
		}
		if filterCondition && l.Condition != q.Condition {
			continue
		}
		if hasMin && l.Price < minPrice {
			continue
		}
		if hasMax && l.Price > maxPrice {
			continue
		}
		out = append(out, l)
	}

	sortListings(out, q.Sort)
	return out
}

// matchesText is an OR over the searchable fields: a listing matches when
// any of title, location or category contains the folded query.
func matchesText(fold cases.Caser, l *models.Listing, text string) bool {
	return strings.Contains(fold.String(l.Title), text) ||
		strings.Contains(fold.String(l.Location), text) ||
		strings.Contains(fold.String(l.Category), text)
}

// parseBound reads an optional numeric bound. Empty and unparseable inputs
// both mean "no bound"; in particular "" is never coerced to 0.
func parseBound(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func sortListings(listings []*models.Listing, order SortOrder) {
	switch order {
	case SortPriceAsc:
		sort.SliceStable(listings, func(i, j int) bool {
			return listings[i].Price < listings[j].Price
		})
	case SortPriceDesc:
		sort.SliceStable(listings, func(i, j int) bool {
			return listings[i].Price > listings[j].Price
		})
	default:
		sort.SliceStable(listings, func(i, j int) bool {
			return listings[i].PostedAt.After(listings[j].PostedAt)
		})
	}
}
