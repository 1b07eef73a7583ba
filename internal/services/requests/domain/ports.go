// Package domain declares the warehouse reader contract
package domain

import (
	"context"

	"adpulse/internal/core/recon"
	tim "adpulse/internal/platform/time"
)

// ReaderPort reads ad request volume from the warehouse.
// Windows are inclusive on both ends
type ReaderPort interface {
	// FetchRequests returns one row per (site, date, domain) with a positive request total
	FetchRequests(ctx context.Context, start, end tim.Date) ([]recon.RequestRecord, error)

	// ListSites aggregates each site over the window, biggest first; limit <= 0 means all
	ListSites(ctx context.Context, start, end tim.Date, limit int) ([]recon.SiteTotal, error)
}
