package models

import (
	"sort"
	"strings"
)

// SortKey selects the order of a catalog listing.
type SortKey string

const (
	SortFeatured  SortKey = "featured"
	SortTitlesAZ  SortKey = "titles_az"
	SortAuthorsAZ SortKey = "authors_az"
	SortPriceLH   SortKey = "price_lh"
	SortPriceHL   SortKey = "price_hl"
	// SortNewest is used by the newest-books page; it is not offered in the listing filter.
	SortNewest SortKey = "newest"
)

// SortKeys are the keys a shopper can pick on the products page.
var SortKeys = []SortKey{SortFeatured, SortTitlesAZ, SortAuthorsAZ, SortPriceLH, SortPriceHL}

// ParseSortKey maps a form value to a SortKey. Anything unrecognised, including
// the empty string, falls back to featured order.
func ParseSortKey(v string) SortKey {
	k := SortKey(strings.TrimSpace(v))
	switch k {
	case SortTitlesAZ, SortAuthorsAZ, SortPriceLH, SortPriceHL, SortNewest:
		return k
	}
	return SortFeatured
}

// SortBooks orders books in place. Featured order is the order books were added
// to the catalog.
func SortBooks(books []Book, key SortKey) {
	var less func(a, b Book) bool
	switch key {
	case SortTitlesAZ:
		less = func(a, b Book) bool { return a.Title < b.Title }
	case SortAuthorsAZ:
		less = func(a, b Book) bool { return a.Authors < b.Authors }
	case SortPriceLH:
		less = func(a, b Book) bool { return a.Price < b.Price }
	case SortPriceHL:
		less = func(a, b Book) bool { return a.Price > b.Price }
	case SortNewest:
		less = func(a, b Book) bool { return a.YearPublic > b.YearPublic }
	default:
		less = func(a, b Book) bool { return a.ID.Hex() < b.ID.Hex() }
	}
	sort.SliceStable(books, func(i, j int) bool { return less(books[i], books[j]) })
}

// BookQuery narrows and orders a catalog read.
type BookQuery struct {
	Sort     SortKey
	MaxPrice *int64 // inclusive; nil means no price cap
	Term     string // case-insensitive substring of title or authors
	Limit    int    // 0 means no limit
}

// Matches reports whether b passes the query's filters.
func (q BookQuery) Matches(b Book) bool {
	if q.MaxPrice != nil && b.Price > *q.MaxPrice {
		return false
	}
	if q.Term != "" {
		term := strings.ToLower(q.Term)
		if !strings.Contains(strings.ToLower(b.Title), term) && !strings.Contains(strings.ToLower(b.Authors), term) {
			return false
		}
	}
	return true
}
