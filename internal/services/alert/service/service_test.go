package service

import (
	"context"
	"errors"
	"testing"

	"adpulse/internal/core/recon"
	perr "adpulse/internal/platform/errors"
	kit "adpulse/internal/platform/testkit"
	tim "adpulse/internal/platform/time"
	"adpulse/internal/services/alert/domain"

	notifydom "adpulse/internal/services/notify/domain"
)

type fakeSource struct {
	rows      []recon.SiteEconomics
	err       error
	day, from tim.Date
}

func (f *fakeSource) Economics(_ context.Context, day, from tim.Date) ([]recon.SiteEconomics, error) {
	f.day, f.from = day, from
	return f.rows, f.err
}

type fakeWriter struct {
	calls int
	name  string
	rows  []recon.SiteEconomics
	err   error
}

func (f *fakeWriter) WriteRecords(context.Context, string, []recon.Record) (string, error) {
	return "", nil
}

func (f *fakeWriter) WriteSites(context.Context, string, []recon.SiteTotal) (string, error) {
	return "", nil
}

func (f *fakeWriter) WriteEconomics(_ context.Context, name string, rows []recon.SiteEconomics) (string, error) {
	f.calls++
	f.name, f.rows = name, rows
	return "/out/" + name, f.err
}

type fakeNotifier struct{ msgs []notifydom.Message }

func (f *fakeNotifier) Notify(_ context.Context, m notifydom.Message, _ []string) bool {
	f.msgs = append(f.msgs, m)
	return true
}

func econ(site int64, domain string, cost, revenue float64) recon.SiteEconomics {
	return recon.SiteEconomics{SiteID: site, Domain: domain, Cost: &cost, Revenue: &revenue}
}

var yday = tim.MustDate("2024-03-10")

func TestRun_FlagsRoundsWritesAndAlerts(t *testing.T) {
	src := &fakeSource{rows: []recon.SiteEconomics{
		econ(0, "", 5, 0),
		econ(1, "a.com", 10.456, 0.1234567),
		econ(2, "b.com", 3, 1.0),
		econ(3, "c.com", 3, 1.01),
	}}
	w, n := &fakeWriter{}, &fakeNotifier{}
	s := New(domain.Ports{Source: src, Writer: w, Notifier: n}, Config{MaxRevenue: 1, FilterZeroSite: true, LookbackDays: 7})

	out, err := s.Run(context.Background(), yday)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if src.from.String() != "2024-03-04" || src.day != yday {
		t.Fatalf("window = %s..%s", src.from, src.day)
	}
	if out.Scanned != 4 || len(out.Rows) != 2 {
		t.Fatalf("scanned=%d rows=%#v", out.Scanned, out.Rows)
	}
	if out.Rows[0].SiteID != 1 || *out.Rows[0].Cost != 10.46 || *out.Rows[0].Revenue != 0.123457 {
		t.Fatalf("rounded = %v %v", *out.Rows[0].Cost, *out.Rows[0].Revenue)
	}
	// inclusive limit
	if out.Rows[1].SiteID != 2 {
		t.Fatalf("second = %#v", out.Rows[1])
	}
	if w.name != ReportName || out.ReportPath != "/out/"+ReportName {
		t.Fatalf("report %q %q", w.name, out.ReportPath)
	}
	if !out.Notified || len(n.msgs) != 1 {
		t.Fatalf("notified=%v", out.Notified)
	}
	kit.MustContain(t, n.msgs[0].Summary, "Found 2 sites")
	kit.MustContain(t, n.msgs[0].Summary, "2024-03-10")
	kit.MustContain(t, n.msgs[0].Preview, "a.com")
}

func TestRun_ZeroSiteKeptWhenFilterOff(t *testing.T) {
	src := &fakeSource{rows: []recon.SiteEconomics{econ(0, "", 5, 0)}}
	out, err := New(domain.Ports{Source: src, Writer: &fakeWriter{}}, Config{MaxRevenue: 1}).Run(context.Background(), yday)
	if err != nil || len(out.Rows) != 1 {
		t.Fatalf("rows=%#v err=%v", out.Rows, err)
	}
	if src.from != yday {
		t.Fatalf("default lookback should be the day itself, got %s", src.from)
	}
}

func TestRun_NothingFlaggedStillWritesHeader(t *testing.T) {
	w, n := &fakeWriter{}, &fakeNotifier{}
	src := &fakeSource{rows: []recon.SiteEconomics{econ(4, "d.com", 2, 50)}}
	out, err := New(domain.Ports{Source: src, Writer: w, Notifier: n}, Config{MaxRevenue: 1}).Run(context.Background(), yday)
	if err != nil {
		t.Fatal(err)
	}
	if w.calls != 1 || len(w.rows) != 0 || out.Notified || len(n.msgs) != 0 {
		t.Fatalf("calls=%d rows=%d notified=%v", w.calls, len(w.rows), out.Notified)
	}
}

func TestRun_SourceAndWriterErrors(t *testing.T) {
	w := &fakeWriter{}
	src := &fakeSource{err: perr.New(perr.ErrorCodeQuery, "bad sql")}
	_, err := New(domain.Ports{Source: src, Writer: w}, Config{}).Run(context.Background(), yday)
	if !perr.IsCode(err, perr.ErrorCodeQuery) || w.calls != 0 {
		t.Fatalf("err=%v calls=%d", err, w.calls)
	}

	boom := errors.New("disk full")
	n := &fakeNotifier{}
	src = &fakeSource{rows: []recon.SiteEconomics{econ(1, "a.com", 1, 0)}}
	_, err = New(domain.Ports{Source: src, Writer: &fakeWriter{err: boom}, Notifier: n}, Config{MaxRevenue: 1}).Run(context.Background(), yday)
	if !errors.Is(err, boom) || len(n.msgs) != 0 {
		t.Fatalf("err=%v msgs=%d", err, len(n.msgs))
	}
}

func TestNew_RequiresPorts(t *testing.T) {
	kit.MustPanic(t, func() { New(domain.Ports{Writer: &fakeWriter{}}, Config{}) })
	kit.MustPanic(t, func() { New(domain.Ports{Source: &fakeSource{}}, Config{}) })
}
