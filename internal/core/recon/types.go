// Package recon joins warehouse request volume with analytics visitor counts
// on (domain, date) and derives per-record ratios
package recon

import (
	tim "adpulse/internal/platform/time"
)

// RequestRecord is one warehouse aggregate for a site on a day
type RequestRecord struct {
	SiteID        int64
	Date          tim.Date
	Domain        string
	TotalRequests uint64
}

// VisitorRecord is one analytics count for a domain on a day
type VisitorRecord struct {
	Domain   string
	Date     tim.Date
	Visitors uint64
}

// Record is one joined row; nil pointers are absent values, never zero
type Record struct {
	SiteID             *int64
	Date               tim.Date
	Domain             string
	TotalRequests      *uint64
	Visitors           *uint64
	RequestsPerVisitor *float64
	VisitorsPerRequest *float64
}

// Site implements Sited
func (r Record) Site() (int64, bool) {
	if r.SiteID == nil {
		return 0, false
	}
	return *r.SiteID, true
}

// Side names the input a row came from
type Side string

// Sides
const (
	SideRequests Side = "requests"
	SideVisitors Side = "visitors"
)

// Unmatched is a row that carried no usable domain and could not be joined
type Unmatched struct {
	Side   Side
	SiteID *int64
	Date   tim.Date
	Domain string // the raw value as received
	Value  uint64
}

// Warning flags a duplicate visitor key; the last value seen wins
type Warning struct {
	Domain   string
	Date     tim.Date
	Previous uint64
	Kept     uint64
}

// Result is the outcome of Reconcile
type Result struct {
	Records   []Record
	Unmatched []Unmatched
	Warnings  []Warning
}

// SiteTotal aggregates one site's requests over a window
type SiteTotal struct {
	SiteID        int64
	Domain        string
	TotalRequests uint64
	DaysWithData  uint64
}

// Site implements Sited
func (s SiteTotal) Site() (int64, bool) { return s.SiteID, true }

// SiteEconomics is one site's ad spend against revenue for a day
type SiteEconomics struct {
	SiteID  int64
	Domain  string
	Cost    *float64
	Revenue *float64
}

// Site implements Sited
func (s SiteEconomics) Site() (int64, bool) { return s.SiteID, true }

// Sited is anything keyed by a warehouse site id
type Sited interface {
	Site() (int64, bool)
}

// ZeroSite is the warehouse placeholder id for aggregate rows, never a real property
const ZeroSite int64 = 0

func ptr[T any](v T) *T { return &v }
