// Package service flags sites that spent on ads but earned little the same day
package service

import (
	"context"
	"fmt"
	"math"

	"adpulse/internal/core/recon"
	"adpulse/internal/platform/logger"
	tim "adpulse/internal/platform/time"
	"adpulse/internal/services/alert/domain"

	notifydom "adpulse/internal/services/notify/domain"
	report "adpulse/internal/services/report/service"
)

// ReportName is written on every successful run, header only when nothing is flagged
const ReportName = "sites_cost_pos_lowrev_yday_with_domain.csv"

// Config carries the alert thresholds
type Config struct {
	// MaxRevenue flags sites earning at most this much
	MaxRevenue     float64
	FilterZeroSite bool
	// LookbackDays bounds the domain fallback window, the day itself included
	LookbackDays int
	PreviewRows  int
}

// Svc implements domain.RunnerPort
type Svc struct {
	ports domain.Ports
	cfg   Config
}

var _ domain.RunnerPort = (*Svc)(nil)

// New constructs the job; Source and Writer are required
func New(p domain.Ports, cfg Config) *Svc {
	if p.Source == nil || p.Writer == nil {
		panic("alert.Service requires Source and Writer ports")
	}
	if cfg.LookbackDays < 1 {
		cfg.LookbackDays = 1
	}
	if cfg.PreviewRows <= 0 {
		cfg.PreviewRows = 10
	}
	return &Svc{ports: p, cfg: cfg}
}

// Run reads day's economics, writes the flagged sites and alerts when any exist
func (s *Svc) Run(ctx context.Context, day tim.Date) (domain.Outcome, error) {
	log := logger.C(ctx)
	out := domain.Outcome{Day: day}

	from, _ := tim.Window(day, s.cfg.LookbackDays)
	rows, err := s.ports.Source.Economics(ctx, day, from)
	if err != nil {
		return out, err
	}
	out.Scanned = len(rows)

	low := recon.BelowThreshold(rows, s.cfg.MaxRevenue, recon.Revenue, s.cfg.FilterZeroSite)
	for i := range low {
		low[i].Cost = round(low[i].Cost, 2)
		low[i].Revenue = round(low[i].Revenue, 6)
	}
	out.Rows = low
	log.Info().
		Str("day", day.String()).
		Int("with_cost", len(rows)).
		Int("flagged", len(low)).
		Float64("max_revenue", s.cfg.MaxRevenue).
		Msg("low revenue scan done")

	path, err := s.ports.Writer.WriteEconomics(ctx, ReportName, low)
	if err != nil {
		return out, err
	}
	out.ReportPath = path

	if len(low) == 0 {
		log.Info().Msg("no sites flagged, alert skipped")
		return out, nil
	}
	if s.ports.Notifier != nil {
		out.Notified = s.ports.Notifier.Notify(ctx, notifydom.Message{
			Title: "Alert: sites with ad spend and low revenue",
			Summary: fmt.Sprintf("Found %d sites with cost > 0 and revenue <= %g on %s.",
				len(low), s.cfg.MaxRevenue, day),
			Preview:    report.PreviewEconomics(low, s.cfg.PreviewRows),
			ReportPath: path,
		}, nil)
	}
	return out, nil
}

func round(p *float64, places int) *float64 {
	if p == nil {
		return nil
	}
	f := math.Pow10(places)
	v := math.Round(*p*f) / f
	return &v
}
