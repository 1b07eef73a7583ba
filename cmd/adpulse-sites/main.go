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

	reportmod "adpulse/internal/services/report/module"
	reqmod "adpulse/internal/services/requests/module"
	sitesdom "adpulse/internal/services/sites/domain"
	sitesmod "adpulse/internal/services/sites/module"

	"github.com/google/uuid"
)

const job = "sites"

func main() {
	var (
		startStr = flag.String("start", "", "first day, YYYY-MM-DD (default: -end)")
		endStr   = flag.String("end", "", "last day, YYYY-MM-DD (default: yesterday)")
		top      = flag.Int("top", 0, "keep only the N busiest sites, 0 keeps all")
		envFile  = flag.String("env", ".env", "dotenv file, existing env wins")
	)
	flag.Parse()
	_, _ = raw.LoadDotenv(*envFile)

	flag.Visit(func(f *flag.Flag) {
		if f.Name == "top" {
			mustSetEnv("CORE_SITES_TOP", strconv.Itoa(*top))
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
	wm, err := reportmod.New(deps, reportmod.Options{})
	if err != nil {
		l.Fatal().Err(err).Msg("report module")
	}
	sm, err := sitesmod.New(deps, sitesmod.Options{}, modkit.WithPorts(sitesdom.Ports{
		Requests: module.MustPortsOf[reqmod.Ports](rm).Reader,
		Writer:   module.MustPortsOf[reportmod.Ports](wm).Writer,
	}))
	if err != nil {
		l.Fatal().Err(err).Msg("sites module")
	}
	for _, m := range []module.Module{rm, wm, sm} {
		module.Register(m)
	}

	start, end, err = sm.Window(time.Now(), start, end)
	if err != nil {
		l.Fatal().Err(err).Msg("bad window")
	}
	run := metrics.NewRun(job)
	out, err := sm.Ports().(sitesmod.Ports).Runner.Run(ctx, start, end, sm.Top())
	run.Rows("sites", len(out.Sites))
	run.Finish(err)
	if pushErr := run.Push(ctx, root.Prefix("METRICS_").MayString("PUSHGATEWAY_URL", "")); pushErr != nil {
		l.Warn().Err(pushErr).Msg("metrics push failed")
	}
	if err != nil {
		l.Fatal().Err(err).Msg("sites failed")
	}
	logger.C(ctx).Info().Str("report", out.ReportPath).Int("sites", len(out.Sites)).Msg("sites done")
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
