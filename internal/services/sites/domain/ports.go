// Package domain declares the site listing job contract
package domain

import (
	"context"

	"adpulse/internal/core/recon"
	tim "adpulse/internal/platform/time"

	reportdom "adpulse/internal/services/report/domain"
	reqdom "adpulse/internal/services/requests/domain"
)

// Ports the job consumes
type Ports struct {
	Requests reqdom.ReaderPort
	Writer   reportdom.WriterPort
}

// Outcome of one listing
type Outcome struct {
	Sites      []recon.SiteTotal
	ReportPath string
}

// RunnerPort lists sites with traffic in a window; top 0 lists all
type RunnerPort interface {
	Run(ctx context.Context, start, end tim.Date, top int) (Outcome, error)
}
