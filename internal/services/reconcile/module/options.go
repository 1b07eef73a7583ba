package module

import (
	"time"

	"adpulse/internal/platform/config"
	"adpulse/internal/platform/validate"
)

// Options controls the reconcile job. Values may also be read from env
type Options struct {
	LookbackDays        int            `env:"CORE_RECONCILE_LOOKBACK_DAYS" validate:"min=1,max=400"`
	TopN                int            `env:"CORE_RECONCILE_TOP_N" validate:"min=0,max=1000"`
	SortBy              string         `env:"CORE_RECONCILE_SORT_BY" validate:"oneof=requests visitors requests_per_visitor visitors_per_request"`
	RatioThreshold      float64        `env:"CORE_RECONCILE_RATIO_THRESHOLD"`
	FilterZeroSite      bool           `env:"CORE_RECONCILE_FILTER_SITE_ZERO"`
	Domains             []string       `env:"CORE_RECONCILE_DOMAINS"`
	DomainsFromRequests bool           `env:"CORE_RECONCILE_DOMAINS_FROM_REQUESTS"`
	Location            *time.Location `env:"CORE_RECONCILE_TZ" validate:"required"`
	Timestamped         bool           `env:"CORE_REPORT_TIMESTAMP"`
}

// FromConfig reads options using the CORE_RECONCILE_ prefix
func FromConfig(cfg config.Conf) Options {
	r := cfg.Prefix("CORE_RECONCILE_")
	return Options{
		LookbackDays:        r.MayInt("LOOKBACK_DAYS", 7),
		TopN:                r.MayInt("TOP_N", 10),
		SortBy:              r.MayEnum("SORT_BY", "requests", "requests", "visitors", "requests_per_visitor", "visitors_per_request"),
		RatioThreshold:      r.MayFloat64("RATIO_THRESHOLD", 0.01),
		FilterZeroSite:      r.MayBool("FILTER_SITE_ZERO", true),
		Domains:             r.MayCSV("DOMAINS", nil),
		DomainsFromRequests: r.MayBool("DOMAINS_FROM_REQUESTS", false),
		Location:            r.MayLocation("TZ", time.UTC),
		Timestamped:         cfg.Prefix("CORE_REPORT_").MayBool("TIMESTAMP", true),
	}
}

// Validate checks the merged options
func (o Options) Validate() error { return validate.Struct(o) }
