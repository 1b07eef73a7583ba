package service

import (
	perr "adpulse/internal/platform/errors"
	tim "adpulse/internal/platform/time"
)

// ResolveWindow fills a partial window: no bounds means lookback days ending today,
// only end means lookback days ending there, only start runs through today
func ResolveWindow(today tim.Date, lookback int, start, end tim.Date) (tim.Date, tim.Date, error) {
	switch {
	case start.IsZero() && end.IsZero():
		start, end = tim.Window(today, lookback)
	case start.IsZero():
		start, end = tim.Window(end, lookback)
	case end.IsZero():
		end = today
	}
	if end.Before(start) {
		return start, end, perr.Validationf("end", "window end %s before start %s", end, start)
	}
	return start, end, nil
}
