package plausible

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	perr "adpulse/internal/platform/errors"
	kit "adpulse/internal/platform/testkit"
	tim "adpulse/internal/platform/time"
)

func newTestClient(t *testing.T, base string, o Options) *Client {
	t.Helper()
	o.BaseURL = base
	if o.Token == "" {
		o.Token = "tok"
	}
	if o.RPS == 0 {
		o.RPS = 1000
	}
	c := NewClient(o)
	c.sleep = func(time.Duration) {}
	return c
}

func serve(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func TestSites_ArrayAndEnvelope(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{"array", `[{"domain":"a.com"},{"domain":" b.com "},{"domain":""}]`, []string{"a.com", "b.com"}},
		{"envelope", `{"sites":[{"domain":"c.com","timezone":"UTC"}],"meta":{"after":null}}`, []string{"c.com"}},
		{"empty envelope", `{"sites":[]}`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/sites" {
					t.Errorf("path = %s", r.URL.Path)
				}
				_, _ = w.Write([]byte(tt.body))
			})
			got, err := newTestClient(t, srv.URL, Options{}).Sites(context.Background())
			if err != nil {
				t.Fatalf("Sites: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d sites, want %d: %#v", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i].Domain != tt.want[i] {
					t.Fatalf("site[%d] = %q, want %q", i, got[i].Domain, tt.want[i])
				}
			}
		})
	}
}

func TestSites_GarbagePayloadIsJSONError(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("<html>")) })
	_, err := newTestClient(t, srv.URL, Options{}).Sites(context.Background())
	if !perr.IsCode(err, perr.ErrorCodeJSON) {
		t.Fatalf("want JSON error, got %v", err)
	}
}

func TestTimeseries_QueryHeadersAndDecode(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("auth header = %q", got)
		}
		q := r.URL.Query()
		if r.URL.Path != "/stats/timeseries" ||
			q.Get("site_id") != "a.com" ||
			q.Get("period") != "custom" ||
			q.Get("date") != "2024-01-14,2024-01-15" ||
			q.Get("metrics") != "visitors" ||
			q.Get("interval") != "date" {
			t.Errorf("unexpected request %s", r.URL.String())
		}
		_, _ = w.Write([]byte(`{"results":[{"date":"2024-01-14","visitors":120},{"date":"2024-01-15","visitors":null}]}`))
	})
	c := newTestClient(t, srv.URL, Options{Token: "secret"})
	pts, err := c.Timeseries(context.Background(), "a.com", tim.MustDate("2024-01-14"), tim.MustDate("2024-01-15"))
	if err != nil {
		t.Fatalf("Timeseries: %v", err)
	}
	if len(pts) != 1 || pts[0].Date != tim.MustDate("2024-01-14") || pts[0].Visitors != 120 {
		t.Fatalf("points = %#v", pts)
	}
}

func TestTimeseries_ArgumentGuards(t *testing.T) {
	c := newTestClient(t, "http://127.0.0.1:1", Options{})
	d := tim.MustDate("2024-01-15")
	if _, err := c.Timeseries(context.Background(), "", d, d); !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("empty site: %v", err)
	}
	if _, err := c.Timeseries(context.Background(), "a.com", d, d.AddDays(-1)); !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("inverted window: %v", err)
	}
}

func TestBreakdown_PropertyKey(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("period") != "day" || q.Get("date") != "2024-01-15" || q.Get("property") != "event:page" || q.Get("limit") != "50" {
			t.Errorf("unexpected request %s", r.URL.String())
		}
		_, _ = w.Write([]byte(`{"results":[{"page":"/blog.example.com/post","visitors":7},{"page":"/","visitors":3}]}`))
	})
	rows, err := newTestClient(t, srv.URL, Options{}).Breakdown(context.Background(), "umbrella.io", tim.MustDate("2024-01-15"), "", 50)
	if err != nil {
		t.Fatalf("Breakdown: %v", err)
	}
	if len(rows) != 2 || rows[0].Value != "/blog.example.com/post" || rows[0].Visitors != 7 || rows[1].Visitors != 3 {
		t.Fatalf("rows = %#v", rows)
	}
}

func TestDo_StatusMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantCode perr.ErrorCode
		wantHits int32
	}{
		{"unauthorized", http.StatusUnauthorized, perr.ErrorCodeUnauthorized, 1},
		{"forbidden", http.StatusForbidden, perr.ErrorCodeUnauthorized, 1},
		{"rate limited not retried", http.StatusTooManyRequests, perr.ErrorCodeTooManyRequests, 1},
		{"not found", http.StatusNotFound, perr.ErrorCodeNotFound, 1},
		{"server error retried", http.StatusBadGateway, perr.ErrorCodeUnavailable, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hits atomic.Int32
			srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				w.Header().Set("Retry-After", "2")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error":"nope"}`))
			})
			c := newTestClient(t, srv.URL, Options{MaxRetries: 2, TripAfter: 100})
			_, err := c.Sites(context.Background())
			if err == nil {
				t.Fatal("expected error")
			}
			if got := perr.CodeOf(err); got != tt.wantCode {
				t.Fatalf("code = %v, want %v (%v)", got, tt.wantCode, err)
			}
			if got := hits.Load(); got != tt.wantHits {
				t.Fatalf("hits = %d, want %d", got, tt.wantHits)
			}
		})
	}
}

func TestDo_RateLimitCarriesRetryAfter(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
	})
	_, err := newTestClient(t, srv.URL, Options{}).Sites(context.Background())
	se, ok := err.(*StatusError)
	if !ok {
		t.Fatalf("want *StatusError, got %T", err)
	}
	if se.Wait != 7*time.Second {
		t.Fatalf("wait = %s", se.Wait)
	}
}

func TestDo_NotFoundHelper(t *testing.T) {
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) { http.NotFound(w, r) })
	_, err := newTestClient(t, srv.URL, Options{}).Timeseries(context.Background(), "ghost.com", tim.MustDate("2024-01-01"), tim.MustDate("2024-01-02"))
	if !IsNotFound(err) {
		t.Fatalf("IsNotFound(%v) = false", err)
	}
}

func TestDo_RecoversAfterTransientFailure(t *testing.T) {
	var hits atomic.Int32
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`[{"domain":"a.com"}]`))
	})
	var slept []time.Duration
	c := newTestClient(t, srv.URL, Options{MaxRetries: 3, RetryBase: 10 * time.Millisecond})
	c.sleep = func(d time.Duration) { slept = append(slept, d) }

	sites, err := c.Sites(context.Background())
	if err != nil || len(sites) != 1 {
		t.Fatalf("sites=%v err=%v", sites, err)
	}
	if len(slept) != 1 || slept[0] != 10*time.Millisecond {
		t.Fatalf("slept = %v", slept)
	}
}

func TestDo_TransportErrorIsConnection(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c := newTestClient(t, base, Options{MaxRetries: 1, TripAfter: 100})
	_, err := c.Sites(context.Background())
	if !perr.IsCode(err, perr.ErrorCodeConnection) {
		t.Fatalf("want Connection, got %v", err)
	}
}

func TestDo_BreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var hits atomic.Int32
	srv := serve(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})
	c := newTestClient(t, srv.URL, Options{MaxRetries: -1, TripAfter: 2, BreakerPause: time.Hour})

	for range 2 {
		if _, err := c.Sites(context.Background()); !perr.IsCode(err, perr.ErrorCodeUnavailable) {
			t.Fatalf("want Unavailable, got %v", err)
		}
	}
	_, err := c.Sites(context.Background())
	if !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("want Unavailable from open breaker, got %v", err)
	}
	kit.MustContain(t, err.Error(), "circuit open")
	if got := hits.Load(); got != 2 {
		t.Fatalf("server hits = %d, want 2", got)
	}
}

func TestDo_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestClient(t, "http://127.0.0.1:1", Options{}).Sites(ctx)
	if !perr.IsCode(err, perr.ErrorCodeConnection) {
		t.Fatalf("want Connection, got %v", err)
	}
}

func TestProbe(t *testing.T) {
	miss := serve(t, func(w http.ResponseWriter, r *http.Request) { http.NotFound(w, r) })
	hit := serve(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/sites" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	})

	c := newTestClient(t, "http://unused", Options{})
	base, err := c.Probe(context.Background(), []string{" ", miss.URL + "/api/v2", hit.URL + "/api/v1/"})
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if base != hit.URL+"/api/v1" {
		t.Fatalf("base = %q", base)
	}
	if got := c.WithBaseURL(base).BaseURL(); got != base {
		t.Fatalf("WithBaseURL = %q", got)
	}
}

func TestProbe_Failures(t *testing.T) {
	denied := serve(t, func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusUnauthorized) })
	miss := serve(t, func(w http.ResponseWriter, r *http.Request) { http.NotFound(w, r) })

	c := newTestClient(t, "http://unused", Options{})
	if _, err := c.Probe(context.Background(), []string{denied.URL, miss.URL}); !perr.IsCode(err, perr.ErrorCodeUnauthorized) {
		t.Fatalf("want Unauthorized, got %v", err)
	}
	if _, err := c.Probe(context.Background(), []string{miss.URL}); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("want NotFound, got %v", err)
	}
}

func TestRetryAfter(t *testing.T) {
	now := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	h := http.Header{}
	if got := retryAfter(h, now); got != 0 {
		t.Fatalf("empty = %s", got)
	}
	h.Set("Retry-After", "3")
	if got := retryAfter(h, now); got != 3*time.Second {
		t.Fatalf("seconds = %s", got)
	}
	h.Set("Retry-After", now.Add(time.Minute).Format(http.TimeFormat))
	if got := retryAfter(h, now); got != time.Minute {
		t.Fatalf("date = %s", got)
	}
}
