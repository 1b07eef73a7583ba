package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	perr "adpulse/internal/platform/errors"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func gauge(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatal(err)
	}
	return m.GetGauge().GetValue()
}

func clock(times ...time.Time) func() time.Time {
	i := 0
	return func() time.Time {
		t := times[min(i, len(times)-1)]
		i++
		return t
	}
}

func TestRun_FinishSuccess(t *testing.T) {
	t0 := time.Unix(1_700_000_000, 0)
	r := newRun("reconcile", clock(t0, t0.Add(90*time.Second)))
	r.Rows("records", 42)
	r.Finish(nil)

	if got := gauge(t, r.duration); got != 90 {
		t.Fatalf("duration = %v", got)
	}
	if got := gauge(t, r.lastSuccess); got != float64(t0.Add(90*time.Second).Unix()) {
		t.Fatalf("last success = %v", got)
	}
	if got := gauge(t, r.failed); got != 0 {
		t.Fatalf("failed = %v", got)
	}
	if got := gauge(t, r.rows.WithLabelValues("records")); got != 42 {
		t.Fatalf("rows = %v", got)
	}

	mfs, err := r.Registry().Gather()
	if err != nil || len(mfs) != 4 {
		t.Fatalf("gathered %d families, err=%v", len(mfs), err)
	}
}

func TestRun_FinishFailureKeepsLastSuccessUnset(t *testing.T) {
	r := newRun("alert", clock(time.Unix(10, 0), time.Unix(12, 0)))
	r.Finish(errors.New("boom"))
	if gauge(t, r.failed) != 1 || gauge(t, r.lastSuccess) != 0 {
		t.Fatal("failure must not stamp last success")
	}
}

func TestRun_Push(t *testing.T) {
	var method, path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	r := NewRun("sites")
	r.Finish(nil)
	if err := r.Push(context.Background(), srv.URL); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if method != http.MethodPut || !strings.HasPrefix(path, "/metrics/job/adpulse_sites") {
		t.Fatalf("%s %s", method, path)
	}
}

func TestRun_PushDisabledAndFailing(t *testing.T) {
	r := NewRun("sites")
	if err := r.Push(context.Background(), ""); err != nil {
		t.Fatalf("empty url should be a no-op: %v", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()
	if err := r.Push(context.Background(), srv.URL); !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("err = %v", err)
	}
}
