// Package plausible provides a resilient Plausible Stats API v1 client
package plausible

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	perr "adpulse/internal/platform/errors"
	"adpulse/internal/platform/logger"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

const (
	baseURLDefault      = "https://plausible.io/api/v1"
	defaultTimeout      = 30 * time.Second
	defaultUA           = "adpulse"
	defaultMaxRetry     = 3
	defaultRetryBase    = 500 * time.Millisecond
	defaultRPS          = 10
	defaultTripAfter    = 5
	defaultBreakerPause = 30 * time.Second
)

// Options configures the Client
type Options struct {
	BaseURL   string
	Token     string
	UserAgent string
	Timeout   time.Duration

	// Retry config for transport failures and 5xx; 429 is never retried here
	MaxRetries int
	RetryBase  time.Duration

	// RPS caps outgoing requests across all goroutines sharing the client
	RPS float64

	// TripAfter consecutive transport/5xx failures open the breaker for BreakerPause
	TripAfter    uint32
	BreakerPause time.Duration

	// HTTPClient overrides the default client (tests)
	HTTPClient *http.Client
}

// Client talks to one Plausible instance
type Client struct {
	http  *http.Client
	opts  Options
	lim   *rate.Limiter
	cb    *gobreaker.CircuitBreaker[*http.Response]
	log   logger.Logger
	now   func() time.Time
	sleep func(time.Duration)
}

// errServer marks a 5xx so the breaker counts it as a failure
var errServer = errors.New("plausible server error")

// NewClient creates a new Client with sane defaults
func NewClient(o Options) *Client {
	o.BaseURL = strings.TrimRight(o.BaseURL, "/")
	if o.BaseURL == "" {
		o.BaseURL = baseURLDefault
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	} else if o.MaxRetries == 0 {
		o.MaxRetries = defaultMaxRetry
	}
	if o.RetryBase <= 0 {
		o.RetryBase = defaultRetryBase
	}
	if o.RPS <= 0 {
		o.RPS = defaultRPS
	}
	if o.TripAfter == 0 {
		o.TripAfter = defaultTripAfter
	}
	if o.BreakerPause <= 0 {
		o.BreakerPause = defaultBreakerPause
	}
	hc := o.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: o.Timeout}
	}

	log := *logger.Named("plausible")
	tripAfter := o.TripAfter
	cb := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        "plausible-api",
		MaxRequests: 1,
		Timeout:     o.BreakerPause,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= tripAfter
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("plausible breaker state change")
		},
	})

	return &Client{
		http:  hc,
		opts:  o,
		lim:   rate.NewLimiter(rate.Limit(o.RPS), 1),
		cb:    cb,
		log:   log,
		now:   time.Now,
		sleep: time.Sleep,
	}
}

// BaseURL returns the API root the client talks to
func (c *Client) BaseURL() string { return c.opts.BaseURL }

// Do issues an authenticated GET against the configured base and returns a 200 response.
// The caller owns the body
func (c *Client) Do(ctx context.Context, path string, q url.Values) (*http.Response, error) {
	return c.get(ctx, c.opts.BaseURL, path, q, c.opts.MaxRetries)
}

func (c *Client) get(ctx context.Context, base, path string, q url.Values, maxRetries int) (*http.Response, error) {
	u := base + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	attempts := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, perr.Wrap(err, perr.ErrorCodeConnection, "plausible request canceled")
		}
		if err := c.lim.Wait(ctx); err != nil {
			return nil, perr.Wrap(err, perr.ErrorCodeConnection, "plausible rate limiter wait")
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "plausible new request failed")
		}
		req.Header.Set("User-Agent", c.opts.UserAgent)
		req.Header.Set("Accept", "application/json")
		if c.opts.Token != "" {
			req.Header.Set("Authorization", "Bearer "+c.opts.Token)
		}

		start := c.now()
		resp, err := c.cb.Execute(func() (*http.Response, error) {
			r, err := c.http.Do(req)
			if err != nil {
				return nil, err
			}
			if r.StatusCode >= 500 {
				return r, errServer
			}
			return r, nil
		})
		lat := c.now().Sub(start)

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "plausible circuit open")
		}
		if err != nil && !errors.Is(err, errServer) {
			if attempts >= maxRetries || ctx.Err() != nil {
				return nil, perr.Wrapf(err, perr.ErrorCodeConnection, "plausible %s failed", path)
			}
			back := c.backoff(attempts)
			c.log.Warn().Err(err).Dur("retry_in", back).Int("attempt", attempts).Str("path", path).Msg("plausible transport error retrying")
			c.sleep(back)
			attempts++
			continue
		}

		c.log.Debug().
			Str("path", path).
			Int("status", resp.StatusCode).
			Int("attempt", attempts).
			Dur("latency", lat).
			Msg("plausible http response")

		switch {
		case resp.StatusCode == http.StatusOK:
			return resp, nil
		case resp.StatusCode >= 500:
			if attempts >= maxRetries {
				_ = drainAndClose(resp.Body)
				return nil, perr.Newf(perr.ErrorCodeUnavailable, "plausible %s: server error %d after %d attempts", path, resp.StatusCode, attempts+1)
			}
			back := c.backoff(attempts)
			c.log.Warn().Int("status", resp.StatusCode).Dur("retry_in", back).Int("attempt", attempts).Msg("plausible transient error retrying")
			_ = drainAndClose(resp.Body)
			c.sleep(back)
			attempts++
			continue
		case resp.StatusCode == http.StatusTooManyRequests:
			// surfaced to the caller; backing off is its decision
			wait := retryAfter(resp.Header, c.now())
			_ = drainAndClose(resp.Body)
			return nil, &StatusError{
				Status: resp.StatusCode,
				Err:    perr.Newf(perr.ErrorCodeTooManyRequests, "plausible rate limited, retry after %s", wait),
				Wait:   wait,
			}
		default:
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			_ = resp.Body.Close()
			return nil, &StatusError{
				Status: resp.StatusCode,
				Body:   string(body),
				Err:    perr.Newf(perr.FromHTTPStatus(resp.StatusCode), "plausible %s: status %d", path, resp.StatusCode),
			}
		}
	}
}

func (c *Client) backoff(attempt int) time.Duration {
	d := c.opts.RetryBase << uint(attempt)
	return min(d, 30*time.Second)
}

func (c *Client) String() string { return fmt.Sprintf("plausible(%s)", c.opts.BaseURL) }
