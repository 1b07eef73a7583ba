// Package domain declares the reconcile job contract and the ports it consumes
package domain

import (
	"context"

	"adpulse/internal/core/recon"
	tim "adpulse/internal/platform/time"

	notifydom "adpulse/internal/services/notify/domain"
	reportdom "adpulse/internal/services/report/domain"
	reqdom "adpulse/internal/services/requests/domain"
	visdom "adpulse/internal/services/visitors/domain"
)

// Ports are the upstream ports the job is wired with; Notifier is optional
type Ports struct {
	Requests reqdom.ReaderPort
	Visitors visdom.FetcherPort
	Writer   reportdom.WriterPort
	Notifier notifydom.NotifierPort
}

// Outcome summarizes one run
type Outcome struct {
	Start, End tim.Date
	Result     recon.Result
	Skipped    []string
	ReportPath string

	// Low are records at or under the ratio threshold, in report order
	Low      []recon.Record
	Notified bool
	Summary  string
}

// RunnerPort runs the reconcile job over an inclusive window
type RunnerPort interface {
	Run(ctx context.Context, start, end tim.Date) (Outcome, error)
}
