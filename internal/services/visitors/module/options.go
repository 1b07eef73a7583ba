package module

import (
	"time"

	"adpulse/internal/platform/config"
	"adpulse/internal/platform/validate"
)

// Options controls the analytics reader. Values may also be read from env
type Options struct {
	Token string `env:"PLAUSIBLE_API_TOKEN" validate:"required"`

	// BaseURL pins the API root; when empty the first answering BaseURLs entry is used
	BaseURL  string   `env:"PLAUSIBLE_BASE_URL" validate:"omitempty,url"`
	BaseURLs []string `env:"PLAUSIBLE_BASE_URLS" validate:"dive,url"`

	Mode           string        `env:"PLAUSIBLE_MODE" validate:"oneof=timeseries breakdown"`
	SiteID         string        `env:"PLAUSIBLE_SITE_ID" validate:"required_if=Mode breakdown"`
	Workers        int           `env:"PLAUSIBLE_WORKERS" validate:"min=1,max=64"`
	RPS            float64       `env:"PLAUSIBLE_RPS" validate:"gt=0,lte=100"`
	MaxRetries     int           `env:"PLAUSIBLE_MAX_RETRIES" validate:"min=0,max=10"`
	Timeout        time.Duration `env:"PLAUSIBLE_TIMEOUT" validate:"gt=0"`
	BreakdownLimit int           `env:"PLAUSIBLE_BREAKDOWN_LIMIT" validate:"min=1,max=10000"`
}

// FromConfig reads options using the PLAUSIBLE_ prefix
func FromConfig(cfg config.Conf) Options {
	p := cfg.Prefix("PLAUSIBLE_")
	return Options{
		Token:          p.MayString("API_TOKEN", ""),
		BaseURL:        p.MayString("BASE_URL", ""),
		BaseURLs:       p.MayCSV("BASE_URLS", nil),
		Mode:           p.MayEnum("MODE", "timeseries", "timeseries", "breakdown"),
		SiteID:         p.MayString("SITE_ID", ""),
		Workers:        p.MayInt("WORKERS", 4),
		RPS:            p.MayFloat64("RPS", 10),
		MaxRetries:     p.MayInt("MAX_RETRIES", 3),
		Timeout:        p.MayDuration("TIMEOUT", 30*time.Second),
		BreakdownLimit: p.MayInt("BREAKDOWN_LIMIT", 1000),
	}
}

// Validate checks the merged options
func (o Options) Validate() error { return validate.Struct(o) }
