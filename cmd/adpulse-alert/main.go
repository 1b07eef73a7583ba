package main

import (
	"context"
	"flag"
	"os"
	"strconv"
	"time"

	"adpulse/internal/modkit"
	"adpulse/internal/modkit/module"
	"adpulse/internal/platform/config"
	"adpulse/internal/platform/config/raw"
	"adpulse/internal/platform/logger"
	"adpulse/internal/platform/metrics"
	"adpulse/internal/platform/store"
	tim "adpulse/internal/platform/time"

	alertdom "adpulse/internal/services/alert/domain"
	alertmod "adpulse/internal/services/alert/module"
	notifymod "adpulse/internal/services/notify/module"
	reportmod "adpulse/internal/services/report/module"

	"github.com/google/uuid"
)

const job = "alert"

func main() {
	var (
		dayStr     = flag.String("day", "", "day to check, YYYY-MM-DD (default: yesterday in CORE_ALERT_TZ)")
		maxRevenue = flag.Float64("max-revenue", 0, "flag sites earning at most this")
		keepZero   = flag.Bool("keep-site-zero", false, "keep the placeholder site 0")
		envFile    = flag.String("env", ".env", "dotenv file, existing env wins")
	)
	flag.Parse()
	_, _ = raw.LoadDotenv(*envFile)

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "max-revenue":
			mustSetEnv("CORE_ALERT_MAX_REVENUE", strconv.FormatFloat(*maxRevenue, 'f', -1, 64))
		case "keep-site-zero":
			mustSetEnv("CORE_ALERT_FILTER_SITE_ZERO", strconv.FormatBool(!*keepZero))
		}
	})

	root := config.New()
	l := logger.Get()

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

	wm, err := reportmod.New(deps, reportmod.Options{})
	if err != nil {
		l.Fatal().Err(err).Msg("report module")
	}
	nm, err := notifymod.New(deps, notifymod.Options{})
	if err != nil {
		l.Fatal().Err(err).Msg("notify module")
	}
	am, err := alertmod.New(deps, alertmod.Options{}, modkit.WithPorts(alertdom.Ports{
		Writer:   module.MustPortsOf[reportmod.Ports](wm).Writer,
		Notifier: module.MustPortsOf[notifymod.Ports](nm).Notifier,
	}))
	if err != nil {
		l.Fatal().Err(err).Msg("alert module")
	}
	for _, m := range []module.Module{wm, nm, am} {
		module.Register(m)
	}

	day := am.Yesterday(time.Now())
	if *dayStr != "" {
		if day, err = tim.ParseDate(*dayStr); err != nil {
			l.Fatal().Err(err).Msg("bad -day")
		}
	}

	run := metrics.NewRun(job)
	out, err := am.Ports().(alertmod.Ports).Runner.Run(ctx, day)
	run.Rows("with_cost", out.Scanned)
	run.Rows("flagged", len(out.Rows))
	run.Finish(err)
	if pushErr := run.Push(ctx, root.Prefix("METRICS_").MayString("PUSHGATEWAY_URL", "")); pushErr != nil {
		l.Warn().Err(pushErr).Msg("metrics push failed")
	}
	if err != nil {
		l.Fatal().Err(err).Msg("alert failed")
	}
	logger.C(ctx).Info().
		Str("day", day.String()).
		Str("report", out.ReportPath).
		Int("flagged", len(out.Rows)).
		Bool("notified", out.Notified).
		Msg("alert done")
}

func mustSetEnv(k, v string) {
	if v != "" {
		_ = os.Setenv(k, v)
	}
}
