package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildWhere(t *testing.T) {
	tests := []struct {
		name     string
		pred     Predicate
		wantSQL  string
		wantArgs []any
	}{
		{
			name:    "nil predicate matches everything",
			pred:    nil,
			wantSQL: "1 = 1",
		},
		{
			name:    "empty And is true",
			pred:    And(),
			wantSQL: "1 = 1",
		},
		{
			name:    "empty Or matches nothing",
			pred:    Or(),
			wantSQL: "1 = 0",
		},
		{
			name:     "single child is not wrapped",
			pred:     And(nil, Eq(ColYear, 1999)),
			wantSQL:  "year = ?",
			wantArgs: []any{1999},
		},
		{
			name:     "contains lowers and wraps the value",
			pred:     Contains(ColTitle, "Iron"),
			wantSQL:  `LOWER(title) LIKE ? ESCAPE '\'`,
			wantArgs: []any{"%iron%"},
		},
		{
			name:     "like metacharacters are escaped",
			pred:     Contains(ColPlot, `100%_a\b`),
			wantSQL:  `LOWER(plot) LIKE ? ESCAPE '\'`,
			wantArgs: []any{`%100\%\_a\\b%`},
		},
		{
			name: "nested tree keeps argument order",
			pred: And(
				Or(Contains(ColTitle, "a"), Contains(ColYearText, "b")),
				Eq(ColRated, "PG"),
			),
			wantSQL:  `((LOWER(title) LIKE ? ESCAPE '\' OR LOWER(CAST(year AS TEXT)) LIKE ? ESCAPE '\') AND rated = ?)`,
			wantArgs: []any{"%a%", "%b%", "PG"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args := BuildWhere(tt.pred)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestOrderBy(t *testing.T) {
	assert.Equal(t, "COALESCE(imdb_rating, 0) DESC, id ASC", orderBy("rating", "desc"))
	assert.Equal(t, "LOWER(title) ASC, id ASC", orderBy("title", "asc"))
	assert.Equal(t, "id DESC", orderBy("bogus", "sideways"))
}
