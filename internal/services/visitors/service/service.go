// Package service fans visitor lookups out over the analytics API
package service

import (
	"context"
	"strings"

	"adpulse/internal/adapters/plausible"
	"adpulse/internal/core/hostname"
	"adpulse/internal/core/recon"
	perr "adpulse/internal/platform/errors"
	"adpulse/internal/platform/logger"
	tim "adpulse/internal/platform/time"
	"adpulse/internal/services/visitors/domain"

	"golang.org/x/sync/errgroup"
)

// Mode selects how visitors are read
type Mode string

// Modes
const (
	// ModeTimeseries issues one request per domain
	ModeTimeseries Mode = "timeseries"
	// ModeBreakdown issues one request per day against a single umbrella site and groups pages by host
	ModeBreakdown Mode = "breakdown"
)

// Client is the slice of the Plausible client the service uses
type Client interface {
	Sites(ctx context.Context) ([]plausible.Site, error)
	Timeseries(ctx context.Context, siteID string, start, end tim.Date) ([]plausible.Point, error)
	Breakdown(ctx context.Context, siteID string, day tim.Date, property string, limit int) ([]plausible.BreakdownRow, error)
}

// Config carries runtime knobs
type Config struct {
	Mode    Mode
	Workers int

	// SiteID is the umbrella site for breakdown mode
	SiteID         string
	BreakdownLimit int
}

// Svc implements domain.FetcherPort
type Svc struct {
	client Client
	cfg    Config
}

var _ domain.FetcherPort = (*Svc)(nil)

// New constructs the service
func New(c Client, cfg Config) *Svc {
	if c == nil {
		panic("visitors.Service requires a non nil client")
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeTimeseries
	}
	if cfg.BreakdownLimit <= 0 {
		cfg.BreakdownLimit = 1000
	}
	return &Svc{client: c, cfg: cfg}
}

// FetchVisitors reads visitors for domains over [start, end]
func (s *Svc) FetchVisitors(ctx context.Context, domains []string, start, end tim.Date) (domain.Batch, error) {
	if start.IsZero() || end.IsZero() {
		return domain.Batch{}, perr.Validationf("date", "visitors window needs both start and end")
	}
	if end.Before(start) {
		return domain.Batch{}, perr.Validationf("end", "window end %s before start %s", end, start)
	}
	switch s.cfg.Mode {
	case ModeBreakdown:
		return s.breakdown(ctx, domains, start, end)
	case ModeTimeseries:
		return s.timeseries(ctx, domains, start, end)
	default:
		return domain.Batch{}, perr.Validationf("mode", "unknown visitors mode %q", s.cfg.Mode)
	}
}

type slot struct {
	recs    []recon.VisitorRecord
	skipped bool
}

func (s *Svc) timeseries(ctx context.Context, domains []string, start, end tim.Date) (domain.Batch, error) {
	log := logger.C(ctx)
	if len(domains) == 0 {
		sites, err := s.client.Sites(ctx)
		if err != nil {
			return domain.Batch{}, err
		}
		for _, st := range sites {
			domains = append(domains, st.Domain)
		}
		log.Info().Int("sites", len(domains)).Msg("visitors domains discovered")
	}
	domains = dedupe(domains)

	// each worker owns its slot; merged in input order after Wait
	slots := make([]slot, len(domains))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)
	for i, d := range domains {
		g.Go(func() error {
			pts, err := s.client.Timeseries(gctx, d, start, end)
			if plausible.IsNotFound(err) {
				slots[i].skipped = true
				return nil
			}
			if err != nil {
				return perr.WithField(err, d)
			}
			recs := make([]recon.VisitorRecord, 0, len(pts))
			for _, p := range pts {
				recs = append(recs, recon.VisitorRecord{Domain: d, Date: p.Date, Visitors: p.Visitors})
			}
			slots[i].recs = recs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.Batch{}, err
	}

	var out domain.Batch
	for i, sl := range slots {
		if sl.skipped {
			out.Skipped = append(out.Skipped, domains[i])
			log.Warn().Str("domain", domains[i]).Msg("domain unknown to analytics, no visitors")
			continue
		}
		out.Records = append(out.Records, sl.recs...)
	}
	log.Info().
		Int("domains", len(domains)).
		Int("records", len(out.Records)).
		Int("skipped", len(out.Skipped)).
		Msg("visitors fetched")
	return out, nil
}

func (s *Svc) breakdown(ctx context.Context, domains []string, start, end tim.Date) (domain.Batch, error) {
	if s.cfg.SiteID == "" {
		return domain.Batch{}, perr.Validationf("PLAUSIBLE_SITE_ID", "breakdown mode needs an umbrella site id")
	}
	var want map[string]bool
	if len(domains) > 0 {
		want = make(map[string]bool, len(domains))
		for _, d := range domains {
			want[hostname.Normalize(d)] = true
		}
	}

	days := start.DaysUntil(end) + 1
	perDay := make([]map[string]uint64, days)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)
	for i := range days {
		g.Go(func() error {
			rows, err := s.client.Breakdown(gctx, s.cfg.SiteID, start.AddDays(i), "event:page", s.cfg.BreakdownLimit)
			if err != nil {
				return err
			}
			m := make(map[string]uint64)
			for _, r := range rows {
				h := hostname.FromPage(r.Value)
				if h == "" || (want != nil && !want[h]) {
					continue
				}
				m[h] += r.Visitors
			}
			perDay[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.Batch{}, err
	}

	var out domain.Batch
	seen := make(map[string]bool)
	for i, m := range perDay {
		day := start.AddDays(i)
		for _, h := range sortedKeys(m) {
			out.Records = append(out.Records, recon.VisitorRecord{Domain: h, Date: day, Visitors: m[h]})
			seen[h] = true
		}
	}
	for _, d := range domains {
		if !seen[hostname.Normalize(d)] {
			out.Skipped = append(out.Skipped, d)
		}
	}
	logger.C(ctx).Info().
		Str("site_id", s.cfg.SiteID).
		Int("days", days).
		Int("records", len(out.Records)).
		Msg("visitors breakdown fetched")
	return out, nil
}

// dedupe drops blanks and repeats that fold to the same host, keeping first spelling
func dedupe(domains []string) []string {
	seen := make(map[string]bool, len(domains))
	out := make([]string, 0, len(domains))
	for _, d := range domains {
		d = strings.TrimSpace(d)
		k := hostname.Normalize(d)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, d)
	}
	return out
}
