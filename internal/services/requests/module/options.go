package module

import (
	"adpulse/internal/platform/config"
	"adpulse/internal/platform/validate"
)

// Options controls the warehouse reader. Values may also be read from env
type Options struct {
	Database      string `env:"CLICKHOUSE_DATABASE" validate:"sql_ident"`
	Table         string `env:"CLICKHOUSE_REQUESTS_TABLE" validate:"sql_ident"`
	MaxWindowDays int    `env:"CORE_REQUESTS_MAX_WINDOW_DAYS" validate:"min=0,max=3660"`
}

// FromConfig reads options from CLICKHOUSE_ and CORE_REQUESTS_
func FromConfig(cfg config.Conf) Options {
	ch := cfg.Prefix("CLICKHOUSE_")
	core := cfg.Prefix("CORE_REQUESTS_")
	return Options{
		Database:      ch.MayString("DATABASE", "default"),
		Table:         ch.MayString("REQUESTS_TABLE", "gam_ecpms"),
		MaxWindowDays: core.MayInt("MAX_WINDOW_DAYS", 400),
	}
}

// Validate checks the merged options
func (o Options) Validate() error { return validate.Struct(o) }
