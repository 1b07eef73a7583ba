// Package repo reads request aggregates from ClickHouse
package repo

import (
	"context"
	"fmt"
	"time"

	"adpulse/internal/core/recon"
	"adpulse/internal/modkit/repokit"
	tim "adpulse/internal/platform/time"
	"adpulse/internal/platform/store"
)

// Repo is the warehouse read surface for request volume
type Repo interface {
	Requests(ctx context.Context, start, end tim.Date) ([]recon.RequestRecord, error)
	SiteTotals(ctx context.Context, start, end tim.Date, limit int) ([]recon.SiteTotal, error)
}

type (
	// CH is a ClickHouse requests repository bound to database.table
	CH struct {
		Database string
		Table    string
	}
	queries struct {
		q     repokit.Queryer
		table string
	}
)

// NewCH constructs a ClickHouse requests repository; database and table must be plain identifiers
func NewCH(database, table string) repokit.Binder[Repo] { return CH{Database: database, Table: table} }

// Bind binds a Queryer to the ClickHouse implementation of Repo
func (c CH) Bind(q repokit.Queryer) Repo {
	return &queries{q: q, table: c.Database + "." + c.Table}
}

// Requests sums ad exchange requests per (site, date, domain) in the window
func (r *queries) Requests(ctx context.Context, start, end tim.Date) ([]recon.RequestRecord, error) {
	sql := fmt.Sprintf(`
		SELECT
			toInt64(site_id),
			toDate(date),
			toString(domain),
			toUInt64(sum(ad_exchange_total_requests))
		FROM %s
		WHERE date >= ? AND date <= ? AND ad_exchange_total_requests > 0
		GROUP BY site_id, date, domain
		ORDER BY site_id, date
	`, r.table)

	out, err := store.Many(ctx, r.q, func(row store.Row) (recon.RequestRecord, error) {
		var (
			rec recon.RequestRecord
			day time.Time
		)
		if err := row.Scan(&rec.SiteID, &day, &rec.Domain, &rec.TotalRequests); err != nil {
			return rec, err
		}
		rec.Date = tim.DateOf(day)
		return rec, nil
	}, sql, start.String(), end.String())
	if err != nil {
		return nil, repokit.Classify(err, "fetch requests")
	}
	return out, nil
}

// SiteTotals lists sites with requests in the window, biggest first
func (r *queries) SiteTotals(ctx context.Context, start, end tim.Date, limit int) ([]recon.SiteTotal, error) {
	lim := ""
	if limit > 0 {
		lim = fmt.Sprintf("LIMIT %d", limit)
	}
	sql := fmt.Sprintf(`
		SELECT
			toInt64(site_id),
			toString(domain),
			toUInt64(sum(ad_exchange_total_requests)) AS total_requests,
			toUInt64(count(DISTINCT date))
		FROM %s
		WHERE date >= ? AND date <= ? AND ad_exchange_total_requests > 0
		GROUP BY site_id, domain
		ORDER BY total_requests DESC, site_id ASC
		%s
	`, r.table, lim)

	out, err := store.Many(ctx, r.q, func(row store.Row) (recon.SiteTotal, error) {
		var s recon.SiteTotal
		err := row.Scan(&s.SiteID, &s.Domain, &s.TotalRequests, &s.DaysWithData)
		return s, err
	}, sql, start.String(), end.String())
	if err != nil {
		return nil, repokit.Classify(err, "list sites")
	}
	return out, nil
}
