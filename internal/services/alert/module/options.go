package module

import (
	"time"

	"adpulse/internal/platform/config"
	"adpulse/internal/platform/validate"
)

// Options controls the low revenue alert. Values may also be read from env
type Options struct {
	MaxRevenue     float64        `env:"CORE_ALERT_MAX_REVENUE" validate:"gte=0"`
	FilterZeroSite bool           `env:"CORE_ALERT_FILTER_SITE_ZERO"`
	LookbackDays   int            `env:"CORE_ALERT_LOOKBACK_DAYS" validate:"min=1,max=90"`
	Location       *time.Location `env:"CORE_ALERT_TZ" validate:"required"`
	Database       string         `env:"CLICKHOUSE_DATABASE" validate:"sql_ident"`
	RevenueTable   string         `env:"CORE_ALERT_REVENUE_TABLE" validate:"sql_ident"`
	CostTable      string         `env:"CORE_ALERT_COST_TABLE" validate:"sql_ident"`
}

var saoPaulo = mustLoad("America/Sao_Paulo")

// FromConfig reads options using the CORE_ALERT_ prefix
func FromConfig(cfg config.Conf) Options {
	a := cfg.Prefix("CORE_ALERT_")
	return Options{
		MaxRevenue:     a.MayFloat64("MAX_REVENUE", 1.0),
		FilterZeroSite: a.MayBool("FILTER_SITE_ZERO", true),
		LookbackDays:   a.MayInt("LOOKBACK_DAYS", 1),
		Location:       a.MayLocation("TZ", saoPaulo),
		Database:       cfg.Prefix("CLICKHOUSE_").MayString("DATABASE", "default"),
		RevenueTable:   a.MayString("REVENUE_TABLE", "gam_impressions"),
		CostTable:      a.MayString("COST_TABLE", "gads_costs"),
	}
}

// Validate checks the merged options
func (o Options) Validate() error { return validate.Struct(o) }

// images without tzdata still get a fixed UTC-3 zone
func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone(name, -3*60*60)
	}
	return loc
}
