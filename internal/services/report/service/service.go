// Package service writes job output as CSV and renders run summaries
package service

import (
	"context"
	"path/filepath"
	"strings"

	"adpulse/internal/core/recon"
	perr "adpulse/internal/platform/errors"
	"adpulse/internal/platform/logger"
	"adpulse/internal/services/report/domain"
)

// Config carries the report directory
type Config struct {
	Dir string
}

// Svc implements domain.WriterPort
type Svc struct {
	cfg Config
}

var _ domain.WriterPort = (*Svc)(nil)

// New constructs the report writer; an empty Dir means the working directory
func New(cfg Config) *Svc {
	if cfg.Dir == "" {
		cfg.Dir = "."
	}
	return &Svc{cfg: cfg}
}

// WriteRecords writes reconciled records under the report dir
func (s *Svc) WriteRecords(ctx context.Context, name string, records []recon.Record) (string, error) {
	return s.write(ctx, name, len(records), func(p string) error { return WriteCSV(records, p) })
}

// WriteSites writes site totals under the report dir
func (s *Svc) WriteSites(ctx context.Context, name string, rows []recon.SiteTotal) (string, error) {
	return s.write(ctx, name, len(rows), func(p string) error { return WriteSites(rows, p) })
}

// WriteEconomics writes site economics under the report dir
func (s *Svc) WriteEconomics(ctx context.Context, name string, rows []recon.SiteEconomics) (string, error) {
	return s.write(ctx, name, len(rows), func(p string) error { return WriteEconomics(rows, p) })
}

func (s *Svc) write(ctx context.Context, name string, n int, fn func(string) error) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", perr.Validationf("name", "report name %q must be a plain file name", name)
	}
	p := filepath.Join(s.cfg.Dir, name)
	if err := fn(p); err != nil {
		return "", perr.WithOp(err, "write report")
	}
	logger.C(ctx).Info().Str("path", p).Int("rows", n).Msg("report written")
	return p, nil
}
