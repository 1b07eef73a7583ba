package service

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"

	"adpulse/internal/core/recon"
	perr "adpulse/internal/platform/errors"
)

// Column headers, in file order
var (
	RecordsHeader   = []string{"site_id", "date", "domain", "total_requests", "visitors", "requests_per_visitor", "visitors_per_request"}
	SitesHeader     = []string{"site_id", "domain", "total_requests", "days_with_data"}
	EconomicsHeader = []string{"site_id", "domain", "cost", "revenue"}
)

// WriteCSV writes reconciled records to path; absent values are empty cells
func WriteCSV(records []recon.Record, path string) error {
	return writeAtomic(path, RecordsHeader, len(records), func(i int) []string {
		r := records[i]
		return []string{
			optInt(r.SiteID),
			r.Date.String(),
			r.Domain,
			optUint(r.TotalRequests),
			optUint(r.Visitors),
			optFloat(r.RequestsPerVisitor),
			optFloat(r.VisitorsPerRequest),
		}
	})
}

// WriteSites writes per site window totals to path
func WriteSites(rows []recon.SiteTotal, path string) error {
	return writeAtomic(path, SitesHeader, len(rows), func(i int) []string {
		s := rows[i]
		return []string{
			strconv.FormatInt(s.SiteID, 10),
			s.Domain,
			strconv.FormatUint(s.TotalRequests, 10),
			strconv.FormatUint(s.DaysWithData, 10),
		}
	})
}

// WriteEconomics writes per site cost and revenue to path; an empty slice still writes the header
func WriteEconomics(rows []recon.SiteEconomics, path string) error {
	return writeAtomic(path, EconomicsHeader, len(rows), func(i int) []string {
		s := rows[i]
		return []string{
			strconv.FormatInt(s.SiteID, 10),
			s.Domain,
			optFloat(s.Cost),
			optFloat(s.Revenue),
		}
	})
}

// writeAtomic writes to a temp file next to path and renames it into place,
// so readers never observe a partial file
func writeAtomic(path string, header []string, n int, row func(int) []string) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "report dir %s", dir)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "create temp for %s", path)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	w := csv.NewWriter(tmp)
	if err = w.Write(header); err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnknown, "write csv header")
	}
	for i := range n {
		if err = w.Write(row(i)); err != nil {
			return perr.Wrapf(err, perr.ErrorCodeUnknown, "write csv row %d", i)
		}
	}
	w.Flush()
	if err = w.Error(); err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnknown, "flush csv")
	}
	if err = tmp.Sync(); err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnknown, "sync csv")
	}
	if err = tmp.Close(); err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnknown, "close csv")
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnknown, "chmod csv")
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "rename csv into %s", path)
	}
	return nil
}

func optInt(p *int64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatInt(*p, 10)
}

func optUint(p *uint64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatUint(*p, 10)
}

// optFloat renders the shortest decimal that round trips
func optFloat(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}
