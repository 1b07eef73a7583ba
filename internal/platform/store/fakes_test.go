package store

import (
	"context"
	"errors"

	"adpulse/internal/platform/store/ch"
)

// fakeRows yields rows of values, assigning each into the matching *T dest
type fakeRows struct {
	cols    []string
	data    [][]any
	i       int
	err     error
	scanErr error
	closed  bool
}

func (f *fakeRows) Next() bool {
	if f.i >= len(f.data) {
		return false
	}
	f.i++
	return true
}

func (f *fakeRows) Scan(dest ...any) error {
	if f.scanErr != nil {
		return f.scanErr
	}
	row := f.data[f.i-1]
	if len(dest) != len(row) {
		return errors.New("fakeRows: dest/column count mismatch")
	}
	for k, d := range dest {
		switch p := d.(type) {
		case *int64:
			*p = row[k].(int64)
		case *uint64:
			*p = row[k].(uint64)
		case *string:
			*p = row[k].(string)
		case *int32:
			*p = row[k].(int32)
		default:
			return errors.New("fakeRows: unsupported dest")
		}
	}
	return nil
}

func (f *fakeRows) Err() error        { return f.err }
func (f *fakeRows) Columns() []string { return f.cols }

// Close satisfies both store.Rows and ch.Rows through the wrappers below
func (f *fakeRows) close() { f.closed = true }

type storeRows struct{ *fakeRows }

func (r storeRows) Close() { r.close() }

type chRows struct{ *fakeRows }

func (r chRows) Close() error { r.close(); return nil }

var (
	_ Rows    = storeRows{}
	_ ch.Rows = chRows{}
)

// fakeQuerier returns canned rows and records the last sql
type fakeQuerier struct {
	rows    *fakeRows
	err     error
	lastSQL string
	args    []any
}

func (f *fakeQuerier) Query(_ context.Context, sql string, args ...any) (Rows, error) {
	f.lastSQL, f.args = sql, args
	if f.err != nil {
		return nil, f.err
	}
	return storeRows{f.rows}, nil
}

// fakeCH implements chClient
type fakeCH struct {
	rows     *fakeRows
	queryErr error
	pingErrs []error
	pings    int
	closed   bool

	lastCtx   context.Context
	lastSQL   string
	lastTable string
	inserted  [][]any
}

func (f *fakeCH) Query(ctx context.Context, sql string, _ ...any) (ch.Rows, error) {
	f.lastCtx, f.lastSQL = ctx, sql
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return chRows{f.rows}, nil
}

func (f *fakeCH) Exec(ctx context.Context, sql string, _ ...any) error {
	f.lastCtx, f.lastSQL = ctx, sql
	return nil
}

func (f *fakeCH) Insert(ctx context.Context, table string, rows [][]any) error {
	f.lastCtx, f.lastTable, f.inserted = ctx, table, rows
	return nil
}

func (f *fakeCH) Ping(context.Context) error {
	f.pings++
	if len(f.pingErrs) == 0 {
		return nil
	}
	err := f.pingErrs[0]
	f.pingErrs = f.pingErrs[1:]
	return err
}

func (f *fakeCH) Close() error { f.closed = true; return nil }
