package module

import (
	"time"

	"adpulse/internal/platform/config"
	"adpulse/internal/platform/validate"
)

// Options controls the site listing
type Options struct {
	Top      int            `env:"CORE_SITES_TOP" validate:"min=0"`
	Location *time.Location `env:"CORE_SITES_TZ" validate:"required"`
}

// FromConfig reads options using the CORE_SITES_ prefix
func FromConfig(cfg config.Conf) Options {
	s := cfg.Prefix("CORE_SITES_")
	return Options{
		Top:      s.MayInt("TOP", 0),
		Location: s.MayLocation("TZ", time.UTC),
	}
}

// Validate checks the merged options
func (o Options) Validate() error { return validate.Struct(o) }
