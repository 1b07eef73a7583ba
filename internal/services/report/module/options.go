package module

import (
	"adpulse/internal/platform/config"
	"adpulse/internal/platform/validate"
)

// Options controls where reports go
type Options struct {
	Dir         string `env:"CORE_REPORT_DIR" validate:"required"`
	Timestamped bool   `env:"CORE_REPORT_TIMESTAMP"`
}

// FromConfig reads options using the CORE_REPORT_ prefix
func FromConfig(cfg config.Conf) Options {
	r := cfg.Prefix("CORE_REPORT_")
	return Options{
		Dir:         r.MayString("DIR", "."),
		Timestamped: r.MayBool("TIMESTAMP", true),
	}
}

// Validate checks the merged options
func (o Options) Validate() error { return validate.Struct(o) }
