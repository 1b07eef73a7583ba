// Package domain declares the report sink contract
package domain

import (
	"context"

	"adpulse/internal/core/recon"
)

// WriterPort persists job output as CSV files under the report directory.
// Each method takes a bare file name and returns the full path written
type WriterPort interface {
	WriteRecords(ctx context.Context, name string, records []recon.Record) (string, error)
	WriteSites(ctx context.Context, name string, rows []recon.SiteTotal) (string, error)
	WriteEconomics(ctx context.Context, name string, rows []recon.SiteEconomics) (string, error)
}
