package postgres_test

import (
	"context"
	"errors"
	"reflect"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// rowStub implements pgx.Row.
type rowStub struct {
	vals []any
	err  error
}

func (r rowStub) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return assign(dest, r.vals)
}

func assign(dest []any, vals []any) error {
	if len(dest) != len(vals) {
		return errors.New("scan arity mismatch")
	}
	for i, d := range dest {
		reflect.ValueOf(d).Elem().Set(reflect.ValueOf(vals[i]))
	}
	return nil
}

// rowsStub implements pgx.Rows over in-memory values.
type rowsStub struct {
	data [][]any
	idx  int
	err  error
}

func (r *rowsStub) Close()                                       {}
func (r *rowsStub) Err() error                                   { return r.err }
func (r *rowsStub) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *rowsStub) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *rowsStub) Next() bool {
	if r.idx >= len(r.data) {
		return false
	}
	r.idx++
	return true
}
func (r *rowsStub) Scan(dest ...any) error { return assign(dest, r.data[r.idx-1]) }
func (r *rowsStub) Values() ([]any, error) { return r.data[r.idx-1], nil }
func (r *rowsStub) RawValues() [][]byte    { return nil }
func (r *rowsStub) Conn() *pgx.Conn        { return nil }

type call struct {
	sql  string
	args []any
}

// poolStub implements postgres.PgxPool and records every statement.
type poolStub struct {
	execTag  pgconn.CommandTag
	execErr  error
	row      rowStub
	rows     *rowsStub
	queryErr error
	tx       *txStub
	beginErr error
	calls    []call
}

func (p *poolStub) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	p.calls = append(p.calls, call{sql, args})
	return p.execTag, p.execErr
}

func (p *poolStub) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	p.calls = append(p.calls, call{sql, args})
	if p.row.vals == nil && p.row.err == nil {
		return rowStub{err: errors.New("no row configured")}
	}
	return p.row
}

func (p *poolStub) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	p.calls = append(p.calls, call{sql, args})
	if p.queryErr != nil {
		return nil, p.queryErr
	}
	if p.rows == nil {
		return &rowsStub{}, nil
	}
	return p.rows, nil
}

func (p *poolStub) BeginTx(_ context.Context, _ pgx.TxOptions) (pgx.Tx, error) {
	if p.beginErr != nil {
		return nil, p.beginErr
	}
	return p.tx, nil
}

func (p *poolStub) last() call { return p.calls[len(p.calls)-1] }

// txStub overrides the pgx.Tx methods the repos use.
type txStub struct {
	pgx.Tx
	row        rowStub
	execErr    error
	commitErr  error
	committed  bool
	rolledBack bool
	execs      []call
}

func (t *txStub) QueryRow(_ context.Context, _ string, _ ...any) pgx.Row { return t.row }
func (t *txStub) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	t.execs = append(t.execs, call{sql, args})
	return pgconn.CommandTag{}, t.execErr
}
func (t *txStub) Commit(_ context.Context) error {
	t.committed = t.commitErr == nil
	return t.commitErr
}
func (t *txStub) Rollback(_ context.Context) error {
	t.rolledBack = true
	return nil
}
