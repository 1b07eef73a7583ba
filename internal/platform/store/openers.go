package store

import (
	"context"
	"time"

	perr "adpulse/internal/platform/errors"
	chx "adpulse/internal/platform/store/ch"
)

// seams for tests
var (
	dialCH = func(ctx context.Context, cfg chx.Config) (chClient, error) { return chx.Open(ctx, cfg) }
	sleep  = time.Sleep
)

// openCH opens clickhouse and only publishes the adapter once a ping succeeds
func openCH(ctx context.Context, cfg Config, s *Store) (Clickhouse, error) {
	c, err := dialCH(ctx, chx.Config{
		URL:          cfg.CH.URL,
		Database:     cfg.CH.Database,
		Username:     cfg.CH.Username,
		Password:     cfg.CH.Password,
		DialTimeout:  cfg.CH.DialTimeout,
		MaxOpenConns: cfg.CH.MaxOpenConns,
		ClientName:   cfg.AppName,
		ClientTag:    cfg.CH.ClientTag,
	})
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeConnection, "clickhouse open")
	}

	maxAttempts := cfg.CH.ConnectRetries
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	pingTimeout := cfg.CH.PingTimeout
	if pingTimeout <= 0 {
		pingTimeout = 5 * time.Second
	}
	const (
		backoffStart   = 150 * time.Millisecond
		backoffCeiling = 2 * time.Second
	)

	var lastErr error
	backoff := backoffStart
	for i := 0; i < maxAttempts; i++ {
		toCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		lastErr = c.Ping(toCtx)
		cancel()

		if lastErr == nil {
			return newCHAdapter(c), nil
		}
		if ctx.Err() != nil {
			_ = c.Close()
			return nil, perr.Wrap(ctx.Err(), perr.ErrorCodeConnection, "clickhouse open canceled")
		}
		// bad credentials will not heal with time
		if !perr.IsRetryableCH(lastErr) {
			break
		}
		s.Log.Warn().Err(lastErr).Int("attempt", i+1).Dur("backoff", backoff).Msg("clickhouse ping failed")
		sleep(backoff)
		backoff = min(backoff*2, backoffCeiling)
	}

	_ = c.Close()
	return nil, perr.Wrapf(lastErr, perr.ErrorCodeConnection, "clickhouse ping failed")
}
