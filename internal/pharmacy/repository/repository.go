// Package repository persists pharmacy entities in PostgreSQL.
//
// Every statement runs through database.DB.Ext so a caller's InTx
// transaction is joined automatically.
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Page selects a window of a list query.
type Page struct {
	Page    int
	PerPage int
}

// NewPage clamps page and perPage to sane values.
func NewPage(page, perPage int) Page {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return Page{Page: page, PerPage: perPage}
}

func (p Page) limit() uint64 {
	return uint64(NewPage(p.Page, p.PerPage).PerPage)
}

func (p Page) offset() uint64 {
	n := NewPage(p.Page, p.PerPage)
	return uint64((n.Page - 1) * n.PerPage)
}

// selectPage runs a COUNT over base, then the paged select of columns.
// base must carry FROM and WHERE but no columns.
func selectPage[T any](ctx context.Context, q sqlx.QueryerContext, base squirrel.SelectBuilder, columns []string, orderBy string, page Page) ([]T, int64, error) {
	countSQL, countArgs, err := base.Columns("COUNT(*)").ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var total int64
	if err := sqlx.GetContext(ctx, q, &total, countSQL, countArgs...); err != nil {
		return nil, 0, err
	}

	query, args, err := base.Columns(columns...).
		OrderBy(orderBy).
		Limit(page.limit()).
		Offset(page.offset()).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list query: %w", err)
	}

	items := []T{}
	if err := sqlx.SelectContext(ctx, q, &items, query, args...); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// selectAll runs a built select without paging.
func selectAll[T any](ctx context.Context, q sqlx.QueryerContext, qb squirrel.SelectBuilder) ([]T, error) {
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	items := []T{}
	if err := sqlx.SelectContext(ctx, q, &items, query, args...); err != nil {
		return nil, err
	}
	return items, nil
}

// affected returns the row count of a write, or sql.ErrNoRows when it is zero.
func affected(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// conditional reports whether a guarded write hit its row.
func conditional(res sql.Result, err error) (bool, error) {
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func rowCount(res sql.Result, err error) (int64, error) {
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
