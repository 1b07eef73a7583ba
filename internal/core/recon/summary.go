package recon

import (
	"cmp"
	"slices"
)

// Totals summarises a run
type Totals struct {
	Records       int
	Sites         int
	Domains       int
	TotalRequests uint64
	TotalVisitors uint64
	Matched       int // records with both sides present
}

// Summarize counts distinct sites and domains and sums both sides
func Summarize(records []Record) Totals {
	sites := map[int64]struct{}{}
	domains := map[string]struct{}{}
	t := Totals{Records: len(records)}
	for _, r := range records {
		if r.SiteID != nil {
			sites[*r.SiteID] = struct{}{}
		}
		domains[r.Domain] = struct{}{}
		if r.TotalRequests != nil {
			t.TotalRequests += *r.TotalRequests
		}
		if r.Visitors != nil {
			t.TotalVisitors += *r.Visitors
		}
		if r.TotalRequests != nil && r.Visitors != nil {
			t.Matched++
		}
	}
	t.Sites = len(sites)
	t.Domains = len(domains)
	return t
}

// SiteRequests is one site's summed requests across a run
type SiteRequests struct {
	SiteID        int64
	TotalRequests uint64
}

// TopSites ranks sites by summed requests, lower site id first on ties
func TopSites(records []Record, n int) []SiteRequests {
	if n <= 0 {
		return []SiteRequests{}
	}
	sums := map[int64]uint64{}
	for _, r := range records {
		if r.SiteID == nil || r.TotalRequests == nil {
			continue
		}
		sums[*r.SiteID] += *r.TotalRequests
	}
	out := make([]SiteRequests, 0, len(sums))
	for id, s := range sums {
		out = append(out, SiteRequests{SiteID: id, TotalRequests: s})
	}
	slices.SortFunc(out, func(a, b SiteRequests) int {
		if c := cmp.Compare(b.TotalRequests, a.TotalRequests); c != 0 {
			return c
		}
		return cmp.Compare(a.SiteID, b.SiteID)
	})
	return out[:min(n, len(out))]
}
