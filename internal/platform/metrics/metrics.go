// Package metrics records one job run in Prometheus form and pushes it to a Pushgateway.
// Jobs exit after each run, so nothing is scraped; the gateway keeps the last value
package metrics

import (
	"context"
	"os"
	"time"

	perr "adpulse/internal/platform/errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Run holds the gauges of a single job run on a private registry
type Run struct {
	job   string
	now   func() time.Time
	start time.Time
	reg   *prometheus.Registry

	duration    prometheus.Gauge
	failed      prometheus.Gauge
	lastSuccess prometheus.Gauge
	rows        *prometheus.GaugeVec
}

// NewRun starts timing job
func NewRun(job string) *Run { return newRun(job, time.Now) }

func newRun(job string, now func() time.Time) *Run {
	r := &Run{
		job:   job,
		now:   now,
		start: now(),
		reg:   prometheus.NewRegistry(),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "adpulse_job_duration_seconds",
			Help: "Wall time of the last run",
		}),
		failed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "adpulse_job_failed",
			Help: "1 when the last run returned an error",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "adpulse_job_last_success_timestamp_seconds",
			Help: "Unix time the job last finished without error",
		}),
		rows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "adpulse_job_rows",
			Help: "Rows handled by the last run, by kind",
		}, []string{"kind"}),
	}
	r.reg.MustRegister(r.duration, r.failed, r.lastSuccess, r.rows)
	return r
}

// Rows records a row count such as "requests", "visitors" or "flagged"
func (r *Run) Rows(kind string, n int) { r.rows.WithLabelValues(kind).Set(float64(n)) }

// Finish stamps duration and outcome
func (r *Run) Finish(err error) {
	end := r.now()
	r.duration.Set(end.Sub(r.start).Seconds())
	if err != nil {
		r.failed.Set(1)
		return
	}
	r.failed.Set(0)
	r.lastSuccess.Set(float64(end.Unix()))
}

// Registry exposes the run's collectors
func (r *Run) Registry() *prometheus.Registry { return r.reg }

// Push replaces the job's group on the gateway at url. An empty url is a no-op
func (r *Run) Push(ctx context.Context, url string) error {
	if url == "" {
		return nil
	}
	p := push.New(url, "adpulse_"+r.job).Gatherer(r.reg)
	if h, err := os.Hostname(); err == nil {
		p = p.Grouping("instance", h)
	}
	if err := p.PushContext(ctx); err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "pushgateway")
	}
	return nil
}
