package persistence

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/sync/errgroup"
)

// ErrRecordNotFound is returned by FindUnique and FindFirst when no row matches.
var ErrRecordNotFound = errors.New("record not found")

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Querier is satisfied by *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Table describes how a scoped table is selected and scanned.
type Table[T any] struct {
	Name    string
	Columns []string
	Scan    func(row pgx.Row) (T, error)
}

// FindOptions carries ordering and the optional take/skip window.
type FindOptions struct {
	OrderBy []string
	Take    int
	Skip    int
}

// FindMany returns every row matching where, ordered and windowed by opts.
func FindMany[T any](ctx context.Context, q Querier, t Table[T], where Filter, opts FindOptions) ([]T, error) {
	builder := psql.Select(t.Columns...).From(t.Name).Where(where.Sqlizer())
	if len(opts.OrderBy) > 0 {
		builder = builder.OrderBy(opts.OrderBy...)
	}
	if opts.Take > 0 {
		builder = builder.Limit(uint64(opts.Take))
	}
	if opts.Skip > 0 {
		builder = builder.Offset(uint64(opts.Skip))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", t.Name, err)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", t.Name, err)
	}
	defer rows.Close()

	items := make([]T, 0)
	for rows.Next() {
		item, scanErr := t.Scan(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan %s: %w", t.Name, scanErr)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", t.Name, err)
	}

	return items, nil
}

// FindFirst returns the first row in orderBy order, or ErrRecordNotFound.
func FindFirst[T any](ctx context.Context, q Querier, t Table[T], where Filter, orderBy ...string) (T, error) {
	var zero T
	builder := psql.Select(t.Columns...).From(t.Name).Where(where.Sqlizer()).Limit(1)
	if len(orderBy) > 0 {
		builder = builder.OrderBy(orderBy...)
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return zero, fmt.Errorf("build %s query: %w", t.Name, err)
	}

	item, err := t.Scan(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return zero, ErrRecordNotFound
		}
		return zero, fmt.Errorf("query %s: %w", t.Name, err)
	}
	return item, nil
}

// FindUnique returns the single row matching where. The predicate is expected to pin a unique key.
func FindUnique[T any](ctx context.Context, q Querier, t Table[T], where Filter) (T, error) {
	return FindFirst(ctx, q, t, where)
}

// Count returns the number of rows in table matching where.
func Count(ctx context.Context, q Querier, table string, where Filter) (int, error) {
	query, args, err := psql.Select("COUNT(*)").From(table).Where(where.Sqlizer()).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build %s count: %w", table, err)
	}

	var total int
	if err := q.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return total, nil
}

// Page is one window of a list plus the total under the same filter.
type Page[T any] struct {
	Items []T
	Total int
}

// FindPage runs the page query and its count concurrently under the identical filter.
// q must be safe for concurrent use, i.e. a pool rather than a transaction.
func FindPage[T any](ctx context.Context, q Querier, t Table[T], where Filter, orderBy []string, limit, offset int) (Page[T], error) {
	var page Page[T]

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		items, err := FindMany(gctx, q, t, where, FindOptions{OrderBy: orderBy, Take: limit, Skip: offset})
		if err != nil {
			return err
		}
		page.Items = items
		return nil
	})
	g.Go(func() error {
		total, err := Count(gctx, q, t.Name, where)
		if err != nil {
			return err
		}
		page.Total = total
		return nil
	})

	if err := g.Wait(); err != nil {
		return Page[T]{}, err
	}
	return page, nil
}

// Upsert inserts create, or on conflict over conflictColumns applies update, returning the
// resulting row. update keys are column names; values are bound as parameters.
func Upsert[T any](ctx context.Context, q Querier, t Table[T], conflictColumns []string, create, update map[string]any) (T, error) {
	var zero T
	if len(conflictColumns) == 0 || len(create) == 0 {
		return zero, errors.New("upsert requires conflict columns and values")
	}

	conflict := fmt.Sprintf("ON CONFLICT (%s) DO NOTHING", strings.Join(conflictColumns, ", "))
	var conflictArgs []any
	if len(update) > 0 {
		cols := make([]string, 0, len(update))
		for c := range update {
			cols = append(cols, c)
		}
		sort.Strings(cols)

		sets := make([]string, 0, len(cols))
		for _, c := range cols {
			if expr, ok := update[c].(sq.Sqlizer); ok {
				sql, exprArgs, err := expr.ToSql()
				if err != nil {
					return zero, fmt.Errorf("build upsert %s.%s: %w", t.Name, c, err)
				}
				sets = append(sets, c+" = "+sql)
				conflictArgs = append(conflictArgs, exprArgs...)
				continue
			}
			sets = append(sets, c+" = ?")
			conflictArgs = append(conflictArgs, update[c])
		}
		conflict = fmt.Sprintf("ON CONFLICT (%s) DO UPDATE SET %s", strings.Join(conflictColumns, ", "), strings.Join(sets, ", "))
	}

	query, args, err := psql.Insert(t.Name).
		SetMap(create).
		Suffix(conflict, conflictArgs...).
		Suffix("RETURNING " + strings.Join(t.Columns, ", ")).
		ToSql()
	if err != nil {
		return zero, fmt.Errorf("build upsert %s: %w", t.Name, err)
	}

	item, err := t.Scan(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return zero, ErrRecordNotFound
		}
		return zero, fmt.Errorf("upsert %s: %w", t.Name, err)
	}
	return item, nil
}

// isUniqueViolation reports a Postgres unique_violation (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
