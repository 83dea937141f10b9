package domain

// SortKey names an orderable movie attribute.
type SortKey string

const (
	SortRecency   SortKey = "recency"
	SortTitle     SortKey = "title"
	SortYear      SortKey = "year"
	SortRating    SortKey = "rating"
	SortFavorites SortKey = "favorites"
)

// SortOrder is asc or desc.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// SearchParams is the raw, caller-supplied search request. Values are
// normalized by the search service; nothing here is trusted.
type SearchParams struct {
	Query     string
	Genre     string
	Year      int
	Rated     string
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
	// ViewerID is the authenticated caller, 0 for anonymous.
	ViewerID int64
}

// Pagination is the metadata attached to every page.
type Pagination struct {
	CurrentPage  int  `json:"current_page"`
	LastPage     int  `json:"last_page"`
	PerPage      int  `json:"per_page"`
	Total        int  `json:"total"`
	HasMorePages bool `json:"has_more_pages"`
}

// AppliedFilters echoes the normalized search inputs.
type AppliedFilters struct {
	Query     string    `json:"query"`
	Genre     *string   `json:"genre"`
	Year      *int      `json:"year"`
	Rating    *string   `json:"rating"`
	SortBy    SortKey   `json:"sort_by"`
	SortOrder SortOrder `json:"sort_order"`
}

// MoviePage is one page of search or listing results.
type MoviePage struct {
	Data       []*Movie       `json:"data"`
	Pagination Pagination     `json:"pagination"`
	Filters    AppliedFilters `json:"filters"`
}
