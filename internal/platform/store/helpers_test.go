package store

import (
	"context"
	"errors"
	"testing"

)

type siteRow struct {
	ID     int64
	Domain string
}

func scanSite(r Row) (siteRow, error) {
	var s siteRow
	err := r.Scan(&s.ID, &s.Domain)
	return s, err
}

func TestMany(t *testing.T) {
	t.Parallel()

	fr := &fakeRows{data: [][]any{{int64(1), "a.com"}, {int64(2), "b.com"}}}
	q := &fakeQuerier{rows: fr}

	got, err := Many(context.Background(), q, scanSite, "SELECT site_id, domain FROM t WHERE d = ?", "2024-01-01")
	if err != nil {
		t.Fatalf("Many: %v", err)
	}
	if len(got) != 2 || got[1] != (siteRow{2, "b.com"}) {
		t.Fatalf("got %+v", got)
	}
	if !fr.closed {
		t.Fatalf("rows not closed")
	}
	if len(q.args) != 1 || q.args[0] != "2024-01-01" {
		t.Fatalf("args not forwarded: %v", q.args)
	}
}

func TestMany_Errors(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")

	if _, err := Many(context.Background(), &fakeQuerier{err: boom}, scanSite, "x"); !errors.Is(err, boom) {
		t.Fatalf("query error lost: %v", err)
	}

	fr := &fakeRows{data: [][]any{{int64(1), "a"}}, scanErr: boom}
	if _, err := Many(context.Background(), &fakeQuerier{rows: fr}, scanSite, "x"); !errors.Is(err, boom) {
		t.Fatalf("scan error lost: %v", err)
	}

	fr = &fakeRows{err: boom}
	if _, err := Many(context.Background(), &fakeQuerier{rows: fr}, scanSite, "x"); !errors.Is(err, boom) {
		t.Fatalf("iteration error lost: %v", err)
	}
}
