// Package service validates windows and reads request volume through the repo
package service

import (
	"context"
	"time"

	"adpulse/internal/core/recon"
	perr "adpulse/internal/platform/errors"
	"adpulse/internal/platform/logger"
	tim "adpulse/internal/platform/time"
	"adpulse/internal/services/requests/domain"
	"adpulse/internal/services/requests/repo"
)

// Config carries runtime knobs for the reader
type Config struct {
	// MaxWindowDays rejects windows wider than this; 0 disables the check
	MaxWindowDays int
}

// Svc implements domain.ReaderPort
type Svc struct {
	repo repo.Repo
	cfg  Config
	now  func() time.Time
}

var _ domain.ReaderPort = (*Svc)(nil)

// New constructs the reader over a bound repo
func New(r repo.Repo, cfg Config) *Svc {
	if r == nil {
		panic("requests.Service requires a non nil repo")
	}
	return &Svc{repo: r, cfg: cfg, now: time.Now}
}

// FetchRequests reads per (site, date, domain) totals for [start, end]
func (s *Svc) FetchRequests(ctx context.Context, start, end tim.Date) ([]recon.RequestRecord, error) {
	if err := s.checkWindow(start, end); err != nil {
		return nil, err
	}
	t0 := s.now()
	out, err := s.repo.Requests(ctx, start, end)
	if err != nil {
		return nil, err
	}
	logger.C(ctx).Info().
		Str("start", start.String()).
		Str("end", end.String()).
		Int("rows", len(out)).
		Dur("took", s.now().Sub(t0)).
		Msg("requests fetched")
	return out, nil
}

// ListSites reads per site totals for [start, end]
func (s *Svc) ListSites(ctx context.Context, start, end tim.Date, limit int) ([]recon.SiteTotal, error) {
	if err := s.checkWindow(start, end); err != nil {
		return nil, err
	}
	if limit < 0 {
		return nil, perr.Validationf("limit", "limit must be >= 0, got %d", limit)
	}
	out, err := s.repo.SiteTotals(ctx, start, end, limit)
	if err != nil {
		return nil, err
	}
	logger.C(ctx).Info().Int("sites", len(out)).Int("limit", limit).Msg("sites listed")
	return out, nil
}

func (s *Svc) checkWindow(start, end tim.Date) error {
	if start.IsZero() {
		return perr.Validationf("start", "window start is required")
	}
	if end.IsZero() {
		return perr.Validationf("end", "window end is required")
	}
	if end.Before(start) {
		return perr.Validationf("end", "window end %s before start %s", end, start)
	}
	if s.cfg.MaxWindowDays > 0 && start.DaysUntil(end)+1 > s.cfg.MaxWindowDays {
		return perr.Validationf("start", "window of %d days exceeds max %d", start.DaysUntil(end)+1, s.cfg.MaxWindowDays)
	}
	return nil
}
