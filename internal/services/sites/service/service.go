// Package service lists warehouse sites by request volume
package service

import (
	"context"

	"adpulse/internal/platform/logger"
	tim "adpulse/internal/platform/time"
	"adpulse/internal/services/sites/domain"
)

// Svc implements domain.RunnerPort
type Svc struct {
	ports domain.Ports
}

var _ domain.RunnerPort = (*Svc)(nil)

// New constructs the job
func New(p domain.Ports) *Svc {
	if p.Requests == nil || p.Writer == nil {
		panic("sites.Service requires Requests and Writer ports")
	}
	return &Svc{ports: p}
}

// FileName is clickhouse_sites_YYYYMMDD.csv for the window end
func FileName(end tim.Date) string { return "clickhouse_sites_" + end.Compact() + ".csv" }

// Run lists sites and writes them to the report directory
func (s *Svc) Run(ctx context.Context, start, end tim.Date, top int) (domain.Outcome, error) {
	sites, err := s.ports.Requests.ListSites(ctx, start, end, top)
	if err != nil {
		return domain.Outcome{}, err
	}
	path, err := s.ports.Writer.WriteSites(ctx, FileName(end), sites)
	if err != nil {
		return domain.Outcome{Sites: sites}, err
	}
	ev := logger.C(ctx).Info().Int("sites", len(sites)).Str("path", path)
	if len(sites) > 0 {
		ev = ev.Int64("top_site", sites[0].SiteID).Uint64("top_requests", sites[0].TotalRequests)
	}
	ev.Msg("sites listed")
	return domain.Outcome{Sites: sites, ReportPath: path}, nil
}
