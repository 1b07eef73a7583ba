package recon

// BelowThreshold keeps rows whose metric is present and at most max.
// With filterZeroSite the placeholder site 0 is dropped before the metric is looked at.
// Input order is preserved
func BelowThreshold[T Sited](rows []T, limit float64, metric func(T) (float64, bool), filterZeroSite bool) []T {
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		if filterZeroSite {
			if id, ok := r.Site(); ok && id == ZeroSite {
				continue
			}
		}
		v, ok := metric(r)
		if !ok || v > limit {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Metric helpers for BelowThreshold

// VisitorsPerRequest reads the record's visitors_per_request
func VisitorsPerRequest(r Record) (float64, bool) { return deref(r.VisitorsPerRequest) }

// RequestsPerVisitor reads the record's requests_per_visitor
func RequestsPerVisitor(r Record) (float64, bool) { return deref(r.RequestsPerVisitor) }

// Revenue reads a site's revenue
func Revenue(s SiteEconomics) (float64, bool) { return deref(s.Revenue) }

func deref(p *float64) (float64, bool) {
	if p == nil {
		return 0, false
	}
	return *p, true
}
