package plausible

import (
	"context"
	"errors"
	"strings"

	perr "adpulse/internal/platform/errors"
)

// DefaultCandidates are tried in order when no base URL is configured
var DefaultCandidates = []string{
	"https://plausible.io/api/v1",
	"https://plausible.io/api/v2",
}

// Probe returns the first candidate base URL that answers 200 on /sites.
// Each candidate gets a single attempt; an auth failure on any candidate surfaces as Unauthorized
func (c *Client) Probe(ctx context.Context, candidates []string) (string, error) {
	if len(candidates) == 0 {
		candidates = DefaultCandidates
	}
	var authFailed bool
	var last error
	for _, raw := range candidates {
		base := strings.TrimRight(strings.TrimSpace(raw), "/")
		if base == "" {
			continue
		}
		resp, err := c.get(ctx, base, "/sites", nil, 0)
		if err == nil {
			_ = drainAndClose(resp.Body)
			c.log.Info().Str("base_url", base).Msg("plausible api detected")
			return base, nil
		}
		if ctx.Err() != nil {
			return "", perr.Wrap(ctx.Err(), perr.ErrorCodeConnection, "plausible probe canceled")
		}
		if perr.IsCode(err, perr.ErrorCodeUnauthorized) {
			authFailed = true
		}
		var se *StatusError
		if errors.As(err, &se) {
			c.log.Debug().Str("base_url", base).Int("status", se.Status).Msg("plausible probe miss")
		} else {
			c.log.Debug().Err(err).Str("base_url", base).Msg("plausible probe miss")
		}
		last = err
	}
	if authFailed {
		return "", perr.Wrap(last, perr.ErrorCodeUnauthorized, "plausible probe: token rejected")
	}
	return "", perr.Wrap(last, perr.ErrorCodeNotFound, "plausible probe: no candidate answered")
}

// WithBaseURL returns a copy of the client bound to base, sharing limiter and breaker
func (c *Client) WithBaseURL(base string) *Client {
	cp := *c
	cp.opts.BaseURL = strings.TrimRight(base, "/")
	return &cp
}
