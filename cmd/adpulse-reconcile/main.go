package main

import (
	"context"
	"flag"
	"os"
	"time"

	"adpulse/internal/modkit"
	"adpulse/internal/modkit/module"
	"adpulse/internal/platform/config"
	"adpulse/internal/platform/config/raw"
	"adpulse/internal/platform/logger"
	"adpulse/internal/platform/metrics"
	"adpulse/internal/platform/store"
	tim "adpulse/internal/platform/time"

	notifymod "adpulse/internal/services/notify/module"
	recondom "adpulse/internal/services/reconcile/domain"
	reconmod "adpulse/internal/services/reconcile/module"
	reportmod "adpulse/internal/services/report/module"
	reqmod "adpulse/internal/services/requests/module"
	vismod "adpulse/internal/services/visitors/module"

	"github.com/google/uuid"
)

const job = "reconcile"

func main() {
	var (
		startStr  = flag.String("start", "", "first day, YYYY-MM-DD (default: lookback window)")
		endStr    = flag.String("end", "", "last day, YYYY-MM-DD (default: today)")
		threshold = flag.String("ratio-threshold", "", "flag records with visitors/request <= this; negative disables")
		top       = flag.String("top", "", "rows in the summary and alert preview")
		sortBy    = flag.String("sort", "", "preview order: requests|visitors|requests_per_visitor|visitors_per_request")
		domains   = flag.String("domains", "", "comma separated analytics domains (default: all sites)")
		chained   = flag.Bool("domains-from-requests", false, "look visitors up only for domains the warehouse reported")
		keepZero  = flag.Bool("keep-site-zero", false, "keep the aggregate site 0 in the low ratio list")
		mode      = flag.String("mode", "", "analytics fetch mode: timeseries|breakdown")
		workers   = flag.String("workers", "", "concurrent analytics requests")
		envFile   = flag.String("env", ".env", "dotenv file, existing env wins")
	)
	flag.Parse()
	_, _ = raw.LoadDotenv(*envFile)

	// flags land in env so every module reads one source
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "ratio-threshold":
			mustSetEnv("CORE_RECONCILE_RATIO_THRESHOLD", *threshold)
		case "top":
			mustSetEnv("CORE_RECONCILE_TOP_N", *top)
		case "sort":
			mustSetEnv("CORE_RECONCILE_SORT_BY", *sortBy)
		case "domains":
			mustSetEnv("CORE_RECONCILE_DOMAINS", *domains)
		case "domains-from-requests":
			mustSetEnv("CORE_RECONCILE_DOMAINS_FROM_REQUESTS", map[bool]string{true: "1", false: "0"}[*chained])
		case "keep-site-zero":
			mustSetEnv("CORE_RECONCILE_FILTER_SITE_ZERO", map[bool]string{true: "0", false: "1"}[*keepZero])
		case "mode":
			mustSetEnv("PLAUSIBLE_MODE", *mode)
		case "workers":
			mustSetEnv("PLAUSIBLE_WORKERS", *workers)
		}
	})

	root := config.New()
	l := logger.Get()

	start, err := parseDay(*startStr)
	if err != nil {
		l.Fatal().Err(err).Msg("bad -start")
	}
	end, err := parseDay(*endStr)
	if err != nil {
		l.Fatal().Err(err).Msg("bad -end")
	}

	runID := uuid.NewString()
	ctx := store.WithQueryLabel(logger.WithRun(context.Background(), runID, job), job+"-"+runID)

	st, err := store.Open(ctx, store.FromConfig(root, job), store.WithLogger(*l))
	if err != nil {
		l.Fatal().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	deps := modkit.Deps{Cfg: root, CH: st.CH, Log: *l}

	rm, err := reqmod.New(deps, reqmod.Options{})
	if err != nil {
		l.Fatal().Err(err).Msg("requests module")
	}
	vm, err := vismod.New(deps, vismod.Options{})
	if err != nil {
		l.Fatal().Err(err).Msg("visitors module")
	}
	wm, err := reportmod.New(deps, reportmod.Options{})
	if err != nil {
		l.Fatal().Err(err).Msg("report module")
	}
	nm, err := notifymod.New(deps, notifymod.Options{})
	if err != nil {
		l.Fatal().Err(err).Msg("notify module")
	}

	cm, err := reconmod.New(deps, reconmod.Options{}, modkit.WithPorts(recondom.Ports{
		Requests: module.MustPortsOf[reqmod.Ports](rm).Reader,
		Visitors: module.MustPortsOf[vismod.Ports](vm).Fetcher,
		Writer:   module.MustPortsOf[reportmod.Ports](wm).Writer,
		Notifier: module.MustPortsOf[notifymod.Ports](nm).Notifier,
	}))
	if err != nil {
		l.Fatal().Err(err).Msg("reconcile module")
	}

	for _, m := range []module.Module{rm, vm, wm, nm, cm} {
		module.Register(m)
	}

	start, end, err = cm.Window(time.Now(), start, end)
	if err != nil {
		l.Fatal().Err(err).Msg("bad window")
	}

	run := metrics.NewRun(job)
	out, err := cm.Ports().(reconmod.Ports).Runner.Run(ctx, start, end)
	run.Rows("records", len(out.Result.Records))
	run.Rows("low", len(out.Low))
	run.Rows("skipped_domains", len(out.Skipped))
	run.Finish(err)
	if pushErr := run.Push(ctx, root.Prefix("METRICS_").MayString("PUSHGATEWAY_URL", "")); pushErr != nil {
		l.Warn().Err(pushErr).Msg("metrics push failed")
	}
	if err != nil {
		l.Fatal().Err(err).Msg("reconcile failed")
	}
	logger.C(ctx).Info().
		Str("report", out.ReportPath).
		Int("records", len(out.Result.Records)).
		Int("low", len(out.Low)).
		Int("skipped_domains", len(out.Skipped)).
		Bool("notified", out.Notified).
		Msg("reconcile done")
}

func mustSetEnv(k, v string) {
	if v != "" {
		_ = os.Setenv(k, v)
	}
}

func parseDay(s string) (tim.Date, error) {
	if s == "" {
		return tim.Date{}, nil
	}
	return tim.ParseDate(s)
}
