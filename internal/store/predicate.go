package store

import (
	"strings"
)

// Column is a whitelisted SQL expression a predicate may reference.
// Values are always bound as parameters; only columns reach the SQL text.
type Column string

const (
	ColTitle    Column = "title"
	ColGenre    Column = "genre"
	ColDirector Column = "director"
	ColPlot     Column = "plot"
	ColLanguage Column = "language"
	ColCountry  Column = "country"
	ColActors   Column = "actors"
	ColRated    Column = "rated"
	ColYear     Column = "year"
	ColYearText Column = "CAST(year AS TEXT)"
)

// Predicate is a node of a WHERE expression tree.
type Predicate interface {
	appendSQL(sb *strings.Builder, args []any) []any
}

type (
	andExpr []Predicate
	orExpr  []Predicate

	containsExpr struct {
		col   Column
		value string
	}

	eqExpr struct {
		col   Column
		value any
	}

	constExpr bool
)

// True matches every row.
func True() Predicate { return constExpr(true) }

// And joins children with AND. Nil children are skipped; no children is True.
func And(ps ...Predicate) Predicate {
	children := compact(ps)
	switch len(children) {
	case 0:
		return constExpr(true)
	case 1:
		return children[0]
	}
	return andExpr(children)
}

// Or joins children with OR. Nil children are skipped; no children matches nothing.
func Or(ps ...Predicate) Predicate {
	children := compact(ps)
	switch len(children) {
	case 0:
		return constExpr(false)
	case 1:
		return children[0]
	}
	return orExpr(children)
}

// Contains is a case-insensitive substring match. NULL columns never match.
func Contains(col Column, value string) Predicate {
	return containsExpr{col: col, value: value}
}

// Eq is an exact comparison.
func Eq(col Column, value any) Predicate {
	return eqExpr{col: col, value: value}
}

// BuildWhere renders p with '?' placeholders. Callers Rebind for their driver.
func BuildWhere(p Predicate) (string, []any) {
	if p == nil {
		p = constExpr(true)
	}
	var sb strings.Builder
	args := p.appendSQL(&sb, nil)
	return sb.String(), args
}

func compact(ps []Predicate) []Predicate {
	out := make([]Predicate, 0, len(ps))
	for _, p := range ps {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

func (e andExpr) appendSQL(sb *strings.Builder, args []any) []any {
	return joinSQL(sb, args, []Predicate(e), " AND ")
}

func (e orExpr) appendSQL(sb *strings.Builder, args []any) []any {
	return joinSQL(sb, args, []Predicate(e), " OR ")
}

func joinSQL(sb *strings.Builder, args []any, children []Predicate, sep string) []any {
	sb.WriteByte('(')
	for i, c := range children {
		if i > 0 {
			sb.WriteString(sep)
		}
		args = c.appendSQL(sb, args)
	}
	sb.WriteByte(')')
	return args
}

func (e containsExpr) appendSQL(sb *strings.Builder, args []any) []any {
	sb.WriteString("LOWER(")
	sb.WriteString(string(e.col))
	sb.WriteString(`) LIKE ? ESCAPE '\'`)
	return append(args, "%"+escapeLike(strings.ToLower(e.value))+"%")
}

func (e eqExpr) appendSQL(sb *strings.Builder, args []any) []any {
	sb.WriteString(string(e.col))
	sb.WriteString(" = ?")
	return append(args, e.value)
}

func (e constExpr) appendSQL(sb *strings.Builder, args []any) []any {
	if e {
		sb.WriteString("1 = 1")
	} else {
		sb.WriteString("1 = 0")
	}
	return args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
