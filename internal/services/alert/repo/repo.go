// Package repo reads ad spend and revenue snapshots from ClickHouse
package repo

import (
	"context"
	"fmt"

	"adpulse/internal/core/recon"
	"adpulse/internal/modkit/repokit"
	"adpulse/internal/platform/store"
	tim "adpulse/internal/platform/time"
	"adpulse/internal/services/alert/domain"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// RevenueDivisor converts ad exchange revenue micros to currency units
const RevenueDivisor = 1_000_000.0

// CH is a ClickHouse economics repository
type CH struct {
	Database     string
	RevenueTable string
	CostTable    string
	// TZ is the IANA zone snapshot timestamps are bucketed in
	TZ string
}

type queries struct {
	q    repokit.Queryer
	sql  string
	zone string
}

// NewCH constructs the repository; names must be plain identifiers
func NewCH(c CH) repokit.Binder[domain.SourcePort] { return c }

// Bind binds a Queryer to the ClickHouse implementation
func (c CH) Bind(q repokit.Queryer) domain.SourcePort {
	return &queries{q: q, sql: economicsSQL(c.Database+"."+c.RevenueTable, c.Database+"."+c.CostTable), zone: c.TZ}
}

// Only the latest snapshot of the day counts on each side: both tables are appended
// to several times a day and every snapshot carries the running total
func economicsSQL(rev, cost string) string {
	return fmt.Sprintf(`
		WITH
		rev_latest AS (
			SELECT site_id, max(toTimeZone(toDateTime(timestamp), @tz)) AS ts
			FROM %[1]s
			WHERE toDate(date) = toDate(@day)
			GROUP BY site_id
		),
		rev AS (
			SELECT
				r.site_id AS site_id,
				argMax(r.domain, toTimeZone(toDateTime(r.timestamp), @tz)) AS domain_day,
				sum(r.ad_exchange_line_item_level_revenue) / %[3]f AS revenue
			FROM %[1]s AS r
			INNER JOIN rev_latest AS rl
				ON r.site_id = rl.site_id AND toTimeZone(toDateTime(r.timestamp), @tz) = rl.ts
			WHERE toDate(r.date) = toDate(@day)
			GROUP BY r.site_id
		),
		cost_latest AS (
			SELECT site_id, max(toTimeZone(toDateTime(timestamp), @tz)) AS ts
			FROM %[2]s
			WHERE toDate(toTimeZone(toDateTime(timestamp), @tz)) = toDate(@day)
			GROUP BY site_id
		),
		cost AS (
			SELECT c.site_id AS site_id, sum(c.metrics_cost) AS cost
			FROM %[2]s AS c
			INNER JOIN cost_latest AS cl
				ON c.site_id = cl.site_id AND toTimeZone(toDateTime(c.timestamp), @tz) = cl.ts
			WHERE toDate(toTimeZone(toDateTime(c.timestamp), @tz)) = toDate(@day)
			GROUP BY c.site_id
		),
		recent AS (
			SELECT site_id, argMax(domain, toTimeZone(toDateTime(timestamp), @tz)) AS domain_recent
			FROM %[1]s
			WHERE toDate(date) >= toDate(@from) AND toDate(date) <= toDate(@day)
			GROUP BY site_id
		),
		joined AS (
			SELECT
				coalesce(rev.site_id, cost.site_id) AS site_id,
				coalesce(rev.revenue, 0) AS revenue,
				coalesce(cost.cost, 0) AS cost,
				rev.domain_day AS domain_day
			FROM rev
			FULL OUTER JOIN cost ON rev.site_id = cost.site_id
		)
		SELECT
			toInt64(j.site_id),
			toString(ifNull(coalesce(j.domain_day, recent.domain_recent), '')),
			toFloat64(j.cost),
			toFloat64(j.revenue)
		FROM joined AS j
		LEFT JOIN recent ON j.site_id = recent.site_id
		WHERE j.cost > 0
		ORDER BY j.site_id
		SETTINGS join_use_nulls = 1
	`, rev, cost, RevenueDivisor)
}

// Economics returns sites with positive spend on day, with revenue (0 when absent)
func (r *queries) Economics(ctx context.Context, day, from tim.Date) ([]recon.SiteEconomics, error) {
	out, err := store.Many(ctx, r.q, func(row store.Row) (recon.SiteEconomics, error) {
		var (
			s             recon.SiteEconomics
			cost, revenue float64
		)
		if err := row.Scan(&s.SiteID, &s.Domain, &cost, &revenue); err != nil {
			return s, err
		}
		s.Cost, s.Revenue = &cost, &revenue
		return s, nil
	}, r.sql,
		clickhouse.Named("tz", r.zone),
		clickhouse.Named("day", day.String()),
		clickhouse.Named("from", from.String()),
	)
	if err != nil {
		return nil, repokit.Classify(err, "fetch economics")
	}
	return out, nil
}
