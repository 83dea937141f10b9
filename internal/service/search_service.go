// internal/service/search_service.go
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"movie-catalog/internal/domain"
	"movie-catalog/internal/store"
)

// searchColumns are the fields a free-text term may match.
var searchColumns = []store.Column{
	store.ColTitle, store.ColGenre, store.ColDirector, store.ColPlot,
	store.ColLanguage, store.ColCountry, store.ColYearText, store.ColActors,
}

var sortAliases = map[string]domain.SortKey{
	"":                   domain.SortRecency,
	"recency":            domain.SortRecency,
	"recent":             domain.SortRecency,
	"created_at":         domain.SortRecency,
	"relevance":          domain.SortRecency,
	"title":              domain.SortTitle,
	"year":               domain.SortYear,
	"rating":             domain.SortRating,
	"imdb_rating":        domain.SortRating,
	"favorites":          domain.SortFavorites,
	"favorite_count":     domain.SortFavorites,
	"favorited_by_count": domain.SortFavorites,
}

// ParseSortKey maps a caller's sort key to a known one. Unknown keys fall
// back to recency. There is no text-relevance score: "relevance" is recency.
func ParseSortKey(s string) domain.SortKey {
	if key, ok := sortAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return key
	}
	return domain.SortRecency
}

// ParseSortOrder accepts asc/desc in any case; anything else is desc.
func ParseSortOrder(s string) domain.SortOrder {
	if strings.EqualFold(strings.TrimSpace(s), string(domain.SortAsc)) {
		return domain.SortAsc
	}
	return domain.SortDesc
}

// SearchTerms splits a free-text query into lower-cased terms. An empty query
// or a lone "*" yields no terms, which matches every movie.
func SearchTerms(query string) []string {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 1 && terms[0] == "*" {
		return nil
	}
	return terms
}

// SearchService answers catalog listing and free-text search.
type SearchService struct {
	movies    store.MovieStore
	favorites store.FavoriteStore
	pages     PageConfig
	logger    *slog.Logger
}

func NewSearchService(movies store.MovieStore, favorites store.FavoriteStore, pages PageConfig, logger *slog.Logger) *SearchService {
	return &SearchService{movies: movies, favorites: favorites, pages: pages, logger: logger}
}

// Search runs the full contract: free text OR-of-ORs, AND filters, sort and page.
func (s *SearchService) Search(ctx context.Context, p domain.SearchParams) (*domain.MoviePage, error) {
	terms := SearchTerms(p.Query)
	genre := strings.TrimSpace(p.Genre)
	rated := strings.TrimSpace(p.Rated)
	sortBy := ParseSortKey(p.SortBy)
	order := ParseSortOrder(p.SortOrder)
	page, limit := s.pages.clamp(p.Page, p.Limit)

	q := store.MovieQuery{
		Where:  buildPredicate(terms, genre, p.Year, rated),
		SortBy: sortBy,
		Order:  order,
		Limit:  limit,
		Offset: offsetFor(page, limit),
	}
	s.logger.DebugContext(ctx, "Searching movies", slog.Any("terms", terms), slog.String("genre", genre),
		slog.Int("year", p.Year), slog.String("sort_by", string(sortBy)), slog.Int("page", page), slog.Int("limit", limit))

	movies, total, err := s.movies.Search(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search movies: %w", err)
	}
	if err := s.markFavorited(ctx, p.ViewerID, movies); err != nil {
		return nil, err
	}

	last := lastPage(total, limit)
	result := &domain.MoviePage{
		Data: movies,
		Pagination: domain.Pagination{
			CurrentPage:  page,
			LastPage:     last,
			PerPage:      limit,
			Total:        total,
			HasMorePages: page < last,
		},
		Filters: domain.AppliedFilters{
			Query:     strings.Join(terms, " "),
			SortBy:    sortBy,
			SortOrder: order,
		},
	}
	if genre != "" {
		result.Filters.Genre = &genre
	}
	if p.Year != 0 {
		year := p.Year
		result.Filters.Year = &year
	}
	if rated != "" {
		result.Filters.Rating = &rated
	}
	return result, nil
}

// List is the plain paginated listing: structured filters apply, free text never does.
func (s *SearchService) List(ctx context.Context, p domain.SearchParams) (*domain.MoviePage, error) {
	p.Query = ""
	return s.Search(ctx, p)
}

func (s *SearchService) markFavorited(ctx context.Context, viewerID int64, movies []*domain.Movie) error {
	if viewerID <= 0 || len(movies) == 0 {
		return nil
	}
	ids := make([]int64, len(movies))
	for i, m := range movies {
		ids[i] = m.ID
	}
	favorited, err := s.favorites.FavoritedIDs(ctx, viewerID, ids)
	if err != nil {
		return fmt.Errorf("look up favorites: %w", err)
	}
	for _, m := range movies {
		m.IsFavorited = favorited[m.ID]
	}
	return nil
}

// buildPredicate: (term1 in any field OR term2 in any field ...) AND genre AND year AND rated.
func buildPredicate(terms []string, genre string, year int, rated string) store.Predicate {
	var text store.Predicate
	if len(terms) > 0 {
		anyTerm := make([]store.Predicate, 0, len(terms))
		for _, term := range terms {
			anyField := make([]store.Predicate, len(searchColumns))
			for i, col := range searchColumns {
				anyField[i] = store.Contains(col, term)
			}
			anyTerm = append(anyTerm, store.Or(anyField...))
		}
		text = store.Or(anyTerm...)
	}

	var genreP, yearP, ratedP store.Predicate
	if genre != "" {
		genreP = store.Contains(store.ColGenre, genre)
	}
	if year != 0 {
		yearP = store.Eq(store.ColYear, year)
	}
	if rated != "" {
		ratedP = store.Eq(store.ColRated, rated)
	}
	return store.And(text, genreP, yearP, ratedP)
}
