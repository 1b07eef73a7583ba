// Package domain declares the analytics reader contract
package domain

import (
	"context"

	"adpulse/internal/core/recon"
	tim "adpulse/internal/platform/time"
)

// Batch is the outcome of one visitors fetch
type Batch struct {
	Records []recon.VisitorRecord

	// Skipped lists domains the analytics side does not know (404), in request order
	Skipped []string
}

// FetcherPort reads daily visitors per domain over an inclusive window
type FetcherPort interface {
	// FetchVisitors fetches domains, or every site the analytics account has when domains is empty
	FetchVisitors(ctx context.Context, domains []string, start, end tim.Date) (Batch, error)
}
