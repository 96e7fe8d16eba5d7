package persistence

import (
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

// ClientColumn is the tenant column carried by every scoped table.
const ClientColumn = "client_id"

// Filter is the where predicate of a scoped query. It can only be created from a client id, so
// every query built from it is restricted to one tenant. Filters are values: each combinator
// returns a copy, which lets a page query and its count share the identical predicate.
type Filter struct {
	preds []sq.Sqlizer
}

// ForClient starts a filter scoped to clientID. A nil client id matches nothing.
func ForClient(clientID uuid.UUID) Filter {
	if clientID == uuid.Nil {
		return Filter{preds: []sq.Sqlizer{sq.Expr("1 = 0")}}
	}
	return Filter{preds: []sq.Sqlizer{sq.Eq{ClientColumn: clientID}}}
}

func (f Filter) with(p sq.Sqlizer) Filter {
	preds := make([]sq.Sqlizer, len(f.preds), len(f.preds)+1)
	copy(preds, f.preds)
	return Filter{preds: append(preds, p)}
}

// Eq adds column = value.
func (f Filter) Eq(column string, value any) Filter {
	return f.with(sq.Eq{column: value})
}

// EqIfSet adds column = *value when value is non-nil.
func EqIfSet[T any](f Filter, column string, value *T) Filter {
	if value == nil {
		return f
	}
	return f.Eq(column, *value)
}

// In adds column IN (values...). An empty list matches nothing.
func In[T any](f Filter, column string, values []T) Filter {
	if len(values) == 0 {
		return f.with(sq.Expr("1 = 0"))
	}
	return f.with(sq.Eq{column: values})
}

// Contains adds a substring match on column. Empty terms are ignored. Case sensitivity follows
// the database collation.
func (f Filter) Contains(column, term string) Filter {
	if term == "" {
		return f
	}
	return f.with(sq.Like{column: "%" + escapeLike(term) + "%"})
}

// ContainsAny matches term as a substring of at least one of columns.
func (f Filter) ContainsAny(columns []string, term string) Filter {
	if term == "" || len(columns) == 0 {
		return f
	}
	pattern := "%" + escapeLike(term) + "%"
	or := make(sq.Or, 0, len(columns))
	for _, c := range columns {
		or = append(or, sq.Like{c: pattern})
	}
	return f.with(or)
}

// Range adds inclusive bounds on column; a nil bound is open.
func Range[T any](f Filter, column string, from, to *T) Filter {
	out := f
	if from != nil {
		out = out.with(sq.GtOrEq{column: *from})
	}
	if to != nil {
		out = out.with(sq.LtOrEq{column: *to})
	}
	return out
}

// Sqlizer renders the filter for squirrel builders.
func (f Filter) Sqlizer() sq.Sqlizer {
	return sq.And(f.preds)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike neutralises LIKE wildcards so the term is matched literally.
func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}
