// Package store owns the warehouse connection the jobs read from
package store

import (
	"context"

	perr "adpulse/internal/platform/errors"
	"adpulse/internal/platform/logger"
)

// Row is what a scanner sees for one result row
type Row interface {
	Scan(dest ...any) error
}

// Rows is an open result set
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
	Columns() []string
}

// Querier is the read surface repos bind to
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
}

// Clickhouse is the full warehouse seam; jobs only read, Exec and Insert serve fixtures
type Clickhouse interface {
	Querier
	Exec(ctx context.Context, sql string, args ...any) error
	Insert(ctx context.Context, table string, data any) error
	Close() error
}

// Pinger reports readiness
type Pinger interface{ Ping(context.Context) error }

// Store holds the opened warehouse. A zero Store has no backend and closes cleanly
type Store struct {
	Log logger.Logger
	CH  Clickhouse
}

// Option adjusts a Store before backends open
type Option func(*Store) error

// WithLogger sets the logger the store reports connection retries on
func WithLogger(log logger.Logger) Option {
	return func(s *Store) error {
		s.Log = log.With().Str("component", "store").Logger()
		return nil
	}
}

// Open applies opts then connects ClickHouse when cfg enables it
func Open(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	s := &Store{}
	for _, o := range opts {
		if err := o(s); err != nil {
			return nil, err
		}
	}
	if !cfg.CH.Enabled {
		return s, nil
	}
	c, err := openCH(ctx, cfg, s)
	if err != nil {
		return nil, err
	}
	s.CH = c
	s.Log.Debug().Str("client_tag", cfg.CH.ClientTag).Msg("clickhouse ready")
	return s, nil
}

// Ping checks the warehouse is still reachable
func (s *Store) Ping(ctx context.Context) error {
	if s == nil {
		return perr.Connectionf("store not opened")
	}
	p, ok := s.CH.(Pinger)
	if !ok {
		return nil
	}
	if err := p.Ping(ctx); err != nil {
		return perr.Wrap(err, perr.ErrorCodeConnection, "clickhouse ping")
	}
	return nil
}

// Close releases the warehouse connection
func (s *Store) Close(_ context.Context) error {
	if s == nil || s.CH == nil {
		return nil
	}
	return s.CH.Close()
}
