package plausible

import tim "adpulse/internal/platform/time"

// Site is one site registered on the Plausible instance
type Site struct {
	Domain   string `json:"domain"`
	Timezone string `json:"timezone,omitempty"`
}

// sitesEnvelope is the paginated /sites shape; some instances return a bare array instead
type sitesEnvelope struct {
	Sites []Site `json:"sites"`
}

// Point is one day of a visitors timeseries
type Point struct {
	Date     tim.Date
	Visitors uint64
}

type timeseriesRow struct {
	Date     string   `json:"date"`
	Visitors *float64 `json:"visitors"`
}

type timeseriesResp struct {
	Results []timeseriesRow `json:"results"`
}

// BreakdownRow is one property value with its visitors for a day
type BreakdownRow struct {
	Value    string
	Visitors uint64
}

type breakdownResp struct {
	Results []map[string]any `json:"results"`
}
