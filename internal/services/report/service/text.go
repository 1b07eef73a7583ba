package service

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"adpulse/internal/core/recon"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FileName builds "<prefix>_YYYYMMDD[_HHMMSS].csv" from at
func FileName(prefix string, at time.Time, timestamped bool) string {
	layout := "20060102"
	if timestamped {
		layout = "20060102_150405"
	}
	return prefix + "_" + at.Format(layout) + ".csv"
}

var printer = message.NewPrinter(language.English)

// Summary renders run totals and the top n sites by requests
func Summary(res recon.Result, n int) string {
	t := recon.Summarize(res.Records)
	var b strings.Builder
	printer.Fprintf(&b, "Reconciled %d records across %d sites and %d domains (%d matched on both sides)\n",
		t.Records, t.Sites, t.Domains, t.Matched)
	printer.Fprintf(&b, "Total requests: %d | total visitors: %d\n", t.TotalRequests, t.TotalVisitors)
	if t.TotalVisitors > 0 {
		printer.Fprintf(&b, "Overall requests per visitor: %.2f\n", float64(t.TotalRequests)/float64(t.TotalVisitors))
	}
	if len(res.Unmatched) > 0 || len(res.Warnings) > 0 {
		printer.Fprintf(&b, "Unmatched rows: %d | duplicate visitor keys: %d\n", len(res.Unmatched), len(res.Warnings))
	}
	top := recon.TopSites(res.Records, n)
	if len(top) > 0 {
		printer.Fprintf(&b, "Top %d sites by requests:\n", len(top))
		for i, s := range top {
			printer.Fprintf(&b, "  %d. site %d: %d requests\n", i+1, s.SiteID, s.TotalRequests)
		}
	}
	return b.String()
}

// Preview renders up to n records as an aligned text table
func Preview(records []recon.Record, n int) string {
	if n > len(records) {
		n = len(records)
	}
	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "date\tdomain\trequests\tvisitors\tv/r")
	for _, r := range records[:max(n, 0)] {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			r.Date, r.Domain, optUint(r.TotalRequests), optUint(r.Visitors), fixed(r.VisitorsPerRequest, 4))
	}
	_ = tw.Flush()
	return b.String()
}

// PreviewEconomics renders up to n economics rows as an aligned text table
func PreviewEconomics(rows []recon.SiteEconomics, n int) string {
	if n > len(rows) {
		n = len(rows)
	}
	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "site_id\tdomain\tcost\trevenue")
	for _, s := range rows[:max(n, 0)] {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", s.SiteID, s.Domain, fixed(s.Cost, 2), fixed(s.Revenue, 6))
	}
	_ = tw.Flush()
	return b.String()
}

func fixed(p *float64, prec int) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprintf("%.*f", prec, *p)
}
