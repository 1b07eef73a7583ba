package recon

import (
	"fmt"
	"slices"
	"strings"
)

// SortKey selects the metric TopN ranks by
type SortKey int

// Sort keys
const (
	ByRequests SortKey = iota
	ByVisitors
	ByRequestsPerVisitor
	ByVisitorsPerRequest
)

func (k SortKey) String() string {
	switch k {
	case ByVisitors:
		return "visitors"
	case ByRequestsPerVisitor:
		return "requests_per_visitor"
	case ByVisitorsPerRequest:
		return "visitors_per_request"
	default:
		return "requests"
	}
}

// ParseSortKey accepts the String forms, case-insensitively
func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "requests", "total_requests":
		return ByRequests, nil
	case "visitors":
		return ByVisitors, nil
	case "requests_per_visitor", "rpv":
		return ByRequestsPerVisitor, nil
	case "visitors_per_request", "vpr":
		return ByVisitorsPerRequest, nil
	}
	return ByRequests, fmt.Errorf("unknown sort key %q", s)
}

// TopN returns the first n records ranked by key.
// ByRequests trusts the order Reconcile produced; other keys sort a copy stably,
// high to low with absent values last, so the reconcile order breaks ties
func TopN(records []Record, n int, by SortKey) []Record {
	if n <= 0 || len(records) == 0 {
		return []Record{}
	}
	var ranked []Record
	switch by {
	case ByVisitors:
		ranked = rankBy(records, func(r Record) *uint64 { return r.Visitors })
	case ByRequestsPerVisitor:
		ranked = rankBy(records, func(r Record) *float64 { return r.RequestsPerVisitor })
	case ByVisitorsPerRequest:
		ranked = rankBy(records, func(r Record) *float64 { return r.VisitorsPerRequest })
	default:
		ranked = records
	}
	n = min(n, len(ranked))
	return slices.Clone(ranked[:n])
}

func rankBy[T uint64 | float64](records []Record, metric func(Record) *T) []Record {
	out := slices.Clone(records)
	slices.SortStableFunc(out, func(a, b Record) int {
		return descAbsentLast(metric(a), metric(b))
	})
	return out
}
