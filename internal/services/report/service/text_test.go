package service

import (
	"strings"
	"testing"
	"time"

	"adpulse/internal/core/recon"
	kit "adpulse/internal/platform/testkit"
	tim "adpulse/internal/platform/time"
)

func TestFileName(t *testing.T) {
	at := time.Date(2024, 1, 15, 15, 30, 0, 0, time.UTC)
	if got := FileName("requests_vs_visitors", at, true); got != "requests_vs_visitors_20240115_153000.csv" {
		t.Fatalf("timestamped = %q", got)
	}
	if got := FileName("requests_vs_visitors", at, false); got != "requests_vs_visitors_20240115.csv" {
		t.Fatalf("dated = %q", got)
	}
}

func TestSummary_ThousandsAndTopSites(t *testing.T) {
	d := tim.MustDate("2024-01-15")
	res := recon.Result{
		Records: []recon.Record{
			{SiteID: ptr(int64(1)), Date: d, Domain: "a.com", TotalRequests: ptr(uint64(1234567)), Visitors: ptr(uint64(1000))},
			{SiteID: ptr(int64(2)), Date: d, Domain: "b.com", TotalRequests: ptr(uint64(5000))},
			{Date: d, Domain: "c.com", Visitors: ptr(uint64(2500))},
		},
		Unmatched: []recon.Unmatched{{Side: recon.SideRequests}},
	}
	out := Summary(res, 1)
	kit.MustContain(t, out, "Reconciled 3 records across 2 sites and 3 domains (1 matched on both sides)")
	kit.MustContain(t, out, "Total requests: 1,239,567 | total visitors: 3,500")
	kit.MustContain(t, out, "Unmatched rows: 1 | duplicate visitor keys: 0")
	kit.MustContain(t, out, "1. site 1: 1,234,567 requests")
	kit.MustNotContain(t, out, "site 2:")
}

func TestSummary_EmptyRun(t *testing.T) {
	out := Summary(recon.Result{}, 5)
	kit.MustContain(t, out, "Reconciled 0 records")
	kit.MustNotContain(t, out, "Top")
	kit.MustNotContain(t, out, "per visitor")
}

func TestPreview(t *testing.T) {
	d := tim.MustDate("2024-01-15")
	recs := []recon.Record{
		{Date: d, Domain: "a.com", TotalRequests: ptr(uint64(10)), Visitors: ptr(uint64(5)), VisitorsPerRequest: ptr(0.5)},
		{Date: d, Domain: "b.com", Visitors: ptr(uint64(1))},
	}
	out := Preview(recs, 5)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %q", lines)
	}
	kit.MustContain(t, lines[1], "0.5000")
	kit.MustContain(t, lines[2], "-")
	if got := Preview(recs, 0); strings.Count(got, "\n") != 1 {
		t.Fatalf("n=0 should render header only: %q", got)
	}

	econ := PreviewEconomics([]recon.SiteEconomics{{SiteID: 7, Domain: "x.com", Cost: ptr(3.14159), Revenue: ptr(0.5)}}, 10)
	kit.MustContain(t, econ, "3.14")
	kit.MustContain(t, econ, "0.500000")
}
