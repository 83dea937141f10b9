package service

import "math"

// PageConfig bounds caller-supplied page sizes.
type PageConfig struct {
	DefaultPerPage int
	MaxPerPage     int
}

// DefaultPageConfig matches the shipped configuration.
var DefaultPageConfig = PageConfig{DefaultPerPage: 12, MaxPerPage: 100}

// clamp normalizes page and limit: page >= 1, and 1 <= limit <= MaxPerPage,
// with non-positive limits replaced by the default. page is capped so the
// offset it yields fits in an int.
func (c PageConfig) clamp(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = c.DefaultPerPage
	}
	if limit > c.MaxPerPage {
		limit = c.MaxPerPage
	}
	if limit < 1 {
		limit = 1
	}
	if maxPage := math.MaxInt / limit; page > maxPage {
		page = maxPage
	}
	return page, limit
}

// lastPage is max(1, ceil(total/limit)).
func lastPage(total, limit int) int {
	if total <= 0 || limit <= 0 {
		return 1
	}
	return (total + limit - 1) / limit
}

func offsetFor(page, limit int) int {
	return (page - 1) * limit
}
