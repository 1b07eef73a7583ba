package store

import (
	"time"

	"adpulse/internal/platform/config"
)

// Config aggregates per backend configuration
type Config struct {
	AppName string

	CH CHConfig
}

// CHConfig configures clickhouse connectivity
type CHConfig struct {
	Enabled  bool
	URL      string
	Database string
	Username string
	Password string

	// ClientTag names the job in system.query_log
	ClientTag string

	DialTimeout  time.Duration
	MaxOpenConns int

	// Guard/boot knobs
	ConnectRetries int           // default 5
	PingTimeout    time.Duration // default 5s
}

// FromConfig reads CLICKHOUSE_* from cfg; URL is required
func FromConfig(cfg config.Conf, job string) Config {
	c := cfg.Prefix("CLICKHOUSE_")
	return Config{
		AppName: "adpulse",
		CH: CHConfig{
			Enabled:        true,
			URL:            c.MustString("URL"),
			Database:       c.MayString("DATABASE", "default"),
			Username:       c.MayString("USER", ""),
			Password:       c.MayString("PASSWORD", ""),
			ClientTag:      job,
			DialTimeout:    c.MayDuration("DIAL_TIMEOUT", 10*time.Second),
			MaxOpenConns:   c.MayInt("MAX_CONNS", 4),
			ConnectRetries: c.MayInt("CONNECT_RETRIES", 5),
			PingTimeout:    c.MayDuration("PING_TIMEOUT", 5*time.Second),
		},
	}
}
