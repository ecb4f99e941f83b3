package store

import (
	"context"
	"database/sql"
)

var (
	_ DB         = stubDB{}
	_ Execer     = stubExecer{}
	_ Execer     = stubTx{}
	_ Getter     = stubTx{}
	_ sql.Result = stubResult{}
)

// execFunc and getFunc back the fake connections below. A nil func succeeds
// without touching dest and reports zero affected rows.
type (
	execFunc func(ctx context.Context, query string, args ...any) (sql.Result, error)
	getFunc  func(ctx context.Context, dest any, query string, args ...any) error
)

func (f execFunc) call(ctx context.Context, query string, args []any) (sql.Result, error) {
	if f == nil {
		return stubResult{}, nil
	}
	return f(ctx, query, args...)
}

func (f getFunc) call(ctx context.Context, dest any, query string, args []any) error {
	if f == nil {
		return nil
	}
	return f(ctx, dest, query, args...)
}

// stubDB stands in for the pool in read paths.
type stubDB struct {
	getFn    getFunc
	selectFn getFunc
	execFn   execFunc
}

func (s stubDB) GetContext(ctx context.Context, dest any, query string, args ...any) error {
	return s.getFn.call(ctx, dest, query, args)
}

func (s stubDB) SelectContext(ctx context.Context, dest any, query string, args ...any) error {
	return s.selectFn.call(ctx, dest, query, args)
}

func (s stubDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.execFn.call(ctx, query, args)
}

type stubExecer struct {
	execFn execFunc
}

func (s stubExecer) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.execFn.call(ctx, query, args)
}

// stubTx covers the locking reads and writes done inside a ledger transaction.
type stubTx struct {
	execFn execFunc
	getFn  getFunc
}

func (s stubTx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.execFn.call(ctx, query, args)
}

func (s stubTx) GetContext(ctx context.Context, dest any, query string, args ...any) error {
	return s.getFn.call(ctx, dest, query, args)
}

type stubResult struct {
	rows int64
	err  error
}

func (r stubResult) LastInsertId() (int64, error) { return 0, r.err }

func (r stubResult) RowsAffected() (int64, error) { return r.rows, r.err }
