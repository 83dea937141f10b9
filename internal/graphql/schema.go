// Package graphql exposes the catalog search engine as a GraphQL schema.
package graphql

import (
	"context"
	"errors"
	"fmt"

	"movie-catalog/internal/api"
	"movie-catalog/internal/domain"
	"movie-catalog/internal/service"
	"movie-catalog/internal/store"

	"github.com/graphql-go/graphql"
)

const defaultLimit = 12

var ratingSourceType = graphql.NewObject(graphql.ObjectConfig{
	Name: "RatingSource",
	Fields: graphql.Fields{
		"source": &graphql.Field{Type: graphql.String},
		"value":  &graphql.Field{Type: graphql.String},
	},
})

var movieType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Movie",
	Fields: graphql.Fields{
		"id":             &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"imdb_id":        &graphql.Field{Type: graphql.String},
		"title":          &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"year":           &graphql.Field{Type: graphql.Int},
		"rated":          &graphql.Field{Type: graphql.String},
		"released":       &graphql.Field{Type: graphql.String},
		"runtime":        &graphql.Field{Type: graphql.String},
		"genre":          &graphql.Field{Type: graphql.String},
		"director":       &graphql.Field{Type: graphql.String},
		"writer":         &graphql.Field{Type: graphql.String},
		"actors":         &graphql.Field{Type: graphql.String},
		"plot":           &graphql.Field{Type: graphql.String},
		"language":       &graphql.Field{Type: graphql.String},
		"country":        &graphql.Field{Type: graphql.String},
		"awards":         &graphql.Field{Type: graphql.String},
		"poster":         &graphql.Field{Type: graphql.String},
		"imdb_rating":    &graphql.Field{Type: graphql.Float},
		"imdb_votes":     &graphql.Field{Type: graphql.Int},
		"metascore":      &graphql.Field{Type: graphql.Int},
		"favorite_count": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"is_favorited":   &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		"ratings":        &graphql.Field{Type: graphql.NewList(ratingSourceType)},
		"created_at":     &graphql.Field{Type: graphql.DateTime},
		"updated_at":     &graphql.Field{Type: graphql.DateTime},
	},
})

var paginationType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Pagination",
	Fields: graphql.Fields{
		"current_page":   &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"last_page":      &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"per_page":       &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"total":          &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"has_more_pages": &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
	},
})

var filtersType = graphql.NewObject(graphql.ObjectConfig{
	Name: "AppliedFilters",
	Fields: graphql.Fields{
		"query":      &graphql.Field{Type: graphql.String},
		"genre":      &graphql.Field{Type: graphql.String},
		"year":       &graphql.Field{Type: graphql.Int},
		"rating":     &graphql.Field{Type: graphql.String},
		"sort_by":    &graphql.Field{Type: graphql.String},
		"sort_order": &graphql.Field{Type: sortOrderEnum},
	},
})

var moviePageType = graphql.NewObject(graphql.ObjectConfig{
	Name: "MoviePage",
	Fields: graphql.Fields{
		"data":       &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(movieType)))},
		"pagination": &graphql.Field{Type: graphql.NewNonNull(paginationType)},
		"filters":    &graphql.Field{Type: graphql.NewNonNull(filtersType)},
	},
})

var sortOrderEnum = graphql.NewEnum(graphql.EnumConfig{
	Name: "SortOrder",
	Values: graphql.EnumValueConfigMap{
		"ASC":  &graphql.EnumValueConfig{Value: string(domain.SortAsc)},
		"DESC": &graphql.EnumValueConfig{Value: string(domain.SortDesc)},
	},
})

func listArgs() graphql.FieldConfigArgument {
	return graphql.FieldConfigArgument{
		"page":      &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 1},
		"limit":     &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: defaultLimit},
		"genre":     &graphql.ArgumentConfig{Type: graphql.String},
		"year":      &graphql.ArgumentConfig{Type: graphql.Int},
		"rating":    &graphql.ArgumentConfig{Type: graphql.String},
		"sortBy":    &graphql.ArgumentConfig{Type: graphql.String},
		"sortOrder": &graphql.ArgumentConfig{Type: sortOrderEnum},
	}
}

// Resolver holds the services the schema reads from.
type Resolver struct {
	search *service.SearchService
	movies *service.MovieService
}

// NewSchema builds the read-only catalog schema.
func NewSchema(search *service.SearchService, movies *service.MovieService) (graphql.Schema, error) {
	r := &Resolver{search: search, movies: movies}

	searchArgs := listArgs()
	searchArgs["query"] = &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)}

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"movies": &graphql.Field{
				Type:    graphql.NewNonNull(moviePageType),
				Args:    listArgs(),
				Resolve: r.listMovies,
			},
			"searchMovies": &graphql.Field{
				Type:    graphql.NewNonNull(moviePageType),
				Args:    searchArgs,
				Resolve: r.searchMovies,
			},
			"movie": &graphql.Field{
				Type: movieType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: r.movie,
			},
		},
	})
	schema, err := graphql.NewSchema(graphql.SchemaConfig{Query: query})
	if err != nil {
		return graphql.Schema{}, fmt.Errorf("failed to build graphql schema: %w", err)
	}
	return schema, nil
}

func paramsFrom(ctx context.Context, args map[string]any) domain.SearchParams {
	p := domain.SearchParams{ViewerID: api.ViewerID(ctx)}
	p.Query, _ = args["query"].(string)
	p.Genre, _ = args["genre"].(string)
	p.Rated, _ = args["rating"].(string)
	p.SortBy, _ = args["sortBy"].(string)
	p.SortOrder, _ = args["sortOrder"].(string)
	p.Page, _ = args["page"].(int)
	p.Limit, _ = args["limit"].(int)
	p.Year, _ = args["year"].(int)
	return p
}

func (r *Resolver) listMovies(p graphql.ResolveParams) (any, error) {
	page, err := r.search.List(p.Context, paramsFrom(p.Context, p.Args))
	if err != nil {
		return nil, errors.New("failed to list movies")
	}
	return pageToMap(page), nil
}

func (r *Resolver) searchMovies(p graphql.ResolveParams) (any, error) {
	page, err := r.search.Search(p.Context, paramsFrom(p.Context, p.Args))
	if err != nil {
		return nil, errors.New("failed to search movies")
	}
	return pageToMap(page), nil
}

func (r *Resolver) movie(p graphql.ResolveParams) (any, error) {
	var id int64
	raw, _ := p.Args["id"].(string)
	if _, err := fmt.Sscan(raw, &id); err != nil || id <= 0 {
		return nil, nil
	}
	m, err := r.movies.Get(p.Context, id, api.ViewerID(p.Context))
	if errors.Is(err, store.ErrMovieNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.New("failed to load movie")
	}
	return movieToMap(m), nil
}

func pageToMap(page *domain.MoviePage) map[string]any {
	data := make([]map[string]any, len(page.Data))
	for i, m := range page.Data {
		data[i] = movieToMap(m)
	}
	filters := map[string]any{
		"query":      page.Filters.Query,
		"sort_by":    string(page.Filters.SortBy),
		"sort_order": string(page.Filters.SortOrder),
	}
	if page.Filters.Genre != nil {
		filters["genre"] = *page.Filters.Genre
	}
	if page.Filters.Year != nil {
		filters["year"] = *page.Filters.Year
	}
	if page.Filters.Rating != nil {
		filters["rating"] = *page.Filters.Rating
	}
	return map[string]any{
		"data": data,
		"pagination": map[string]any{
			"current_page":   page.Pagination.CurrentPage,
			"last_page":      page.Pagination.LastPage,
			"per_page":       page.Pagination.PerPage,
			"total":          page.Pagination.Total,
			"has_more_pages": page.Pagination.HasMorePages,
		},
		"filters": filters,
	}
}

func movieToMap(m *domain.Movie) map[string]any {
	ratings := make([]map[string]any, len(m.Ratings))
	for i, r := range m.Ratings {
		ratings[i] = map[string]any{"source": r.Source, "value": r.Value}
	}
	out := map[string]any{
		"id":             m.ID,
		"title":          m.Title,
		"year":           m.Year,
		"favorite_count": m.FavoriteCount,
		"is_favorited":   m.IsFavorited,
		"ratings":        ratings,
		"created_at":     m.CreatedAt,
		"updated_at":     m.UpdatedAt,
	}
	for key, v := range map[string]*string{
		"imdb_id": m.ImdbID, "rated": m.Rated, "released": m.Released, "runtime": m.Runtime,
		"genre": m.Genre, "director": m.Director, "writer": m.Writer, "actors": m.Actors,
		"plot": m.Plot, "language": m.Language, "country": m.Country, "awards": m.Awards, "poster": m.Poster,
	} {
		if v != nil {
			out[key] = *v
		}
	}
	if m.ImdbRating != nil {
		out["imdb_rating"] = *m.ImdbRating
	}
	if m.ImdbVotes != nil {
		out["imdb_votes"] = *m.ImdbVotes
	}
	if m.Metascore != nil {
		out["metascore"] = *m.Metascore
	}
	return out
}
