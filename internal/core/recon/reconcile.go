package recon

import (
	"cmp"
	"slices"

	"adpulse/internal/core/hostname"
	perr "adpulse/internal/platform/errors"
	tim "adpulse/internal/platform/time"
)

type key struct {
	domain string
	date   tim.Date
}

type requestAgg struct {
	total   uint64
	perSite map[int64]uint64
}

// representative picks the site carrying the most requests, lower id on ties
func (a *requestAgg) representative() int64 {
	var (
		best    int64
		bestSum uint64
		first   = true
	)
	for id, sum := range a.perSite {
		if first || sum > bestSum || (sum == bestSum && id < best) {
			best, bestSum, first = id, sum, false
		}
	}
	return best
}

// Reconcile outer-joins requests and visitors on (domain, date).
// Rows with no usable domain land in Result.Unmatched; a row with no date fails the whole call
func Reconcile(requests []RequestRecord, visitors []VisitorRecord) (Result, error) {
	var res Result

	reqs := make(map[key]*requestAgg, len(requests))
	for _, r := range requests {
		if r.Date.IsZero() {
			return Result{}, perr.Validationf("date", "request record for site %d domain %q has no date", r.SiteID, r.Domain)
		}
		d := hostname.Normalize(r.Domain)
		if d == "" {
			res.Unmatched = append(res.Unmatched, Unmatched{
				Side: SideRequests, SiteID: ptr(r.SiteID), Date: r.Date, Domain: r.Domain, Value: r.TotalRequests,
			})
			continue
		}
		k := key{domain: d, date: r.Date}
		agg, ok := reqs[k]
		if !ok {
			agg = &requestAgg{perSite: map[int64]uint64{}}
			reqs[k] = agg
		}
		agg.total += r.TotalRequests
		agg.perSite[r.SiteID] += r.TotalRequests
	}

	vis := make(map[key]uint64, len(visitors))
	for _, v := range visitors {
		if v.Date.IsZero() {
			return Result{}, perr.Validationf("date", "visitor record for domain %q has no date", v.Domain)
		}
		d := hostname.Normalize(v.Domain)
		if d == "" {
			res.Unmatched = append(res.Unmatched, Unmatched{
				Side: SideVisitors, Date: v.Date, Domain: v.Domain, Value: v.Visitors,
			})
			continue
		}
		k := key{domain: d, date: v.Date}
		if prev, dup := vis[k]; dup {
			res.Warnings = append(res.Warnings, Warning{Domain: d, Date: v.Date, Previous: prev, Kept: v.Visitors})
		}
		vis[k] = v.Visitors
	}

	keys := make(map[key]struct{}, len(reqs)+len(vis))
	for k := range reqs {
		keys[k] = struct{}{}
	}
	for k := range vis {
		keys[k] = struct{}{}
	}

	res.Records = make([]Record, 0, len(keys))
	for k := range keys {
		rec := Record{Date: k.date, Domain: k.domain}
		if agg, ok := reqs[k]; ok {
			rec.SiteID = ptr(agg.representative())
			rec.TotalRequests = ptr(agg.total)
		}
		if n, ok := vis[k]; ok {
			rec.Visitors = ptr(n)
		}
		withRatios(&rec)
		res.Records = append(res.Records, rec)
	}

	slices.SortFunc(res.Records, compareRecords)
	slices.SortStableFunc(res.Unmatched, compareUnmatched)
	return res, nil
}

// withRatios fills the ratios; a side that is absent or zero leaves its ratio absent
func withRatios(r *Record) {
	if r.TotalRequests == nil || r.Visitors == nil {
		return
	}
	req, v := float64(*r.TotalRequests), float64(*r.Visitors)
	if *r.Visitors > 0 {
		r.RequestsPerVisitor = ptr(req / v)
	}
	if *r.TotalRequests > 0 {
		r.VisitorsPerRequest = ptr(v / req)
	}
}

// compareRecords orders by date asc, total_requests desc (absent last), domain asc
func compareRecords(a, b Record) int {
	if c := a.Date.Compare(b.Date); c != 0 {
		return c
	}
	if c := descAbsentLast(a.TotalRequests, b.TotalRequests); c != 0 {
		return c
	}
	return cmp.Compare(a.Domain, b.Domain)
}

func compareUnmatched(a, b Unmatched) int {
	if c := cmp.Compare(a.Side, b.Side); c != 0 {
		return c
	}
	if c := a.Date.Compare(b.Date); c != 0 {
		return c
	}
	return cmp.Compare(a.Domain, b.Domain)
}

// descAbsentLast sorts present values high to low and nil after all of them
func descAbsentLast[T cmp.Ordered](a, b *T) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return cmp.Compare(*b, *a)
}
