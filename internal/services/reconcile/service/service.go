// Package service runs the requests vs visitors reconciliation end to end
package service

import (
	"context"
	"fmt"
	"time"

	"adpulse/internal/core/recon"
	"adpulse/internal/platform/logger"
	tim "adpulse/internal/platform/time"
	"adpulse/internal/services/reconcile/domain"

	notifydom "adpulse/internal/services/notify/domain"
	report "adpulse/internal/services/report/service"
	visdom "adpulse/internal/services/visitors/domain"

	"golang.org/x/sync/errgroup"
)

// ReportPrefix names the reconcile CSV
const ReportPrefix = "requests_vs_visitors"

// Config carries runtime knobs
type Config struct {
	TopN   int
	SortBy recon.SortKey

	// RatioThreshold flags records with visitors_per_request <= it; negative disables
	RatioThreshold float64

	// FilterZeroSite keeps the aggregate site 0 out of the low ratio list
	FilterZeroSite bool

	// Domains restricts the analytics lookup; empty asks the analytics side for every site
	Domains []string

	// DomainsFromRequests looks visitors up only for domains the warehouse reported,
	// which serializes the two fetches
	DomainsFromRequests bool

	Timestamped bool
	PreviewRows int
}

// Svc implements domain.RunnerPort
type Svc struct {
	ports domain.Ports
	cfg   Config
	now   func() time.Time
}

var _ domain.RunnerPort = (*Svc)(nil)

// New constructs the job; Requests, Visitors and Writer are required
func New(p domain.Ports, cfg Config) *Svc {
	if p.Requests == nil || p.Visitors == nil || p.Writer == nil {
		panic("reconcile.Service requires Requests, Visitors and Writer ports")
	}
	if cfg.PreviewRows <= 0 {
		cfg.PreviewRows = 10
	}
	return &Svc{ports: p, cfg: cfg, now: time.Now}
}

// Run fetches both sides, reconciles, writes the CSV and sends the alert
func (s *Svc) Run(ctx context.Context, start, end tim.Date) (domain.Outcome, error) {
	log := logger.C(ctx)
	out := domain.Outcome{Start: start, End: end}
	log.Info().Str("start", start.String()).Str("end", end.String()).Msg("reconcile started")

	reqs, vis, err := s.fetch(ctx, start, end)
	if err != nil {
		return out, err
	}
	out.Skipped = vis.Skipped

	res, err := recon.Reconcile(reqs, vis.Records)
	if err != nil {
		return out, err
	}
	out.Result = res
	for _, w := range res.Warnings {
		log.Warn().
			Str("domain", w.Domain).
			Str("date", w.Date.String()).
			Uint64("previous", w.Previous).
			Uint64("kept", w.Kept).
			Msg("duplicate visitors row, last value kept")
	}
	if len(res.Unmatched) > 0 {
		log.Warn().Int("rows", len(res.Unmatched)).Msg("rows without a domain left unmatched")
	}

	name := report.FileName(ReportPrefix, s.now(), s.cfg.Timestamped)
	path, err := s.ports.Writer.WriteRecords(ctx, name, res.Records)
	if err != nil {
		return out, err
	}
	out.ReportPath = path

	out.Summary = report.Summary(res, s.cfg.TopN)
	log.Info().Str("summary", out.Summary).Msg("reconcile summary")

	if s.cfg.RatioThreshold >= 0 {
		out.Low = recon.BelowThreshold(res.Records, s.cfg.RatioThreshold, recon.VisitorsPerRequest, s.cfg.FilterZeroSite)
	}

	if len(res.Records) == 0 {
		log.Warn().Msg("no records in window, alert skipped")
		return out, nil
	}
	out.Notified = s.notify(ctx, out)
	return out, nil
}

func (s *Svc) fetch(ctx context.Context, start, end tim.Date) ([]recon.RequestRecord, visdom.Batch, error) {
	if s.cfg.DomainsFromRequests {
		reqs, err := s.ports.Requests.FetchRequests(ctx, start, end)
		if err != nil {
			return nil, visdom.Batch{}, err
		}
		domains := distinctDomains(reqs)
		if len(domains) == 0 {
			return reqs, visdom.Batch{}, nil
		}
		vis, err := s.ports.Visitors.FetchVisitors(ctx, domains, start, end)
		return reqs, vis, err
	}

	var (
		reqs []recon.RequestRecord
		vis  visdom.Batch
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		reqs, err = s.ports.Requests.FetchRequests(gctx, start, end)
		return err
	})
	g.Go(func() error {
		var err error
		vis, err = s.ports.Visitors.FetchVisitors(gctx, s.cfg.Domains, start, end)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, visdom.Batch{}, err
	}
	return reqs, vis, nil
}

func (s *Svc) notify(ctx context.Context, out domain.Outcome) bool {
	if s.ports.Notifier == nil {
		return false
	}
	top := recon.TopN(out.Result.Records, s.cfg.TopN, s.cfg.SortBy)
	summary := out.Summary
	preview := report.Preview(top, s.cfg.PreviewRows)
	if s.cfg.RatioThreshold >= 0 {
		summary += fmt.Sprintf("\n%d records with visitors per request <= %g", len(out.Low), s.cfg.RatioThreshold)
		if len(out.Low) > 0 {
			preview = report.Preview(out.Low, s.cfg.PreviewRows)
		}
	}
	return s.ports.Notifier.Notify(ctx, notifydom.Message{
		Title:      fmt.Sprintf("Requests vs visitors %s to %s", out.Start, out.End),
		Summary:    summary,
		Preview:    preview,
		ReportPath: out.ReportPath,
	}, nil)
}

func distinctDomains(reqs []recon.RequestRecord) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range reqs {
		if r.Domain == "" || seen[r.Domain] {
			continue
		}
		seen[r.Domain] = true
		out = append(out, r.Domain)
	}
	return out
}
