// Package domain declares the low revenue alert job contract
package domain

import (
	"context"

	"adpulse/internal/core/recon"
	tim "adpulse/internal/platform/time"

	notifydom "adpulse/internal/services/notify/domain"
	reportdom "adpulse/internal/services/report/domain"
)

// SourcePort reads per site cost and revenue for one day.
// from bounds the window used to recover a domain the day itself lacks
type SourcePort interface {
	Economics(ctx context.Context, day, from tim.Date) ([]recon.SiteEconomics, error)
}

// Ports the alert job consumes. Source falls back to the warehouse when nil
type Ports struct {
	Source   SourcePort
	Writer   reportdom.WriterPort
	Notifier notifydom.NotifierPort
}

// Outcome of one run
type Outcome struct {
	Day        tim.Date
	Scanned    int
	Rows       []recon.SiteEconomics
	ReportPath string
	Notified   bool
}

// RunnerPort runs the job for a day
type RunnerPort interface {
	Run(ctx context.Context, day tim.Date) (Outcome, error)
}
