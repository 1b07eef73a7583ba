// Package module wires the site listing job
package module

import (
	"time"

	"adpulse/internal/modkit"
	perr "adpulse/internal/platform/errors"
	tim "adpulse/internal/platform/time"
	"adpulse/internal/services/sites/domain"
	"adpulse/internal/services/sites/service"
)

// Ports exposed by the sites module
type Ports struct {
	Runner domain.RunnerPort
}

// Module implements modkit.Module
type Module struct {
	ports Ports
	opts  Options
}

// New constructs the job over modkit.WithPorts(domain.Ports{...})
func New(deps modkit.Deps, overrides Options, opts ...modkit.Option) (*Module, error) {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("sites")}, opts...)...)
	ports, ok := b.Ports.(domain.Ports)
	if !ok {
		panic("sites module: expected WithPorts(sites/domain.Ports)")
	}

	o := FromConfig(deps.Cfg)
	if overrides.Top != 0 {
		o.Top = overrides.Top
	}
	if overrides.Location != nil {
		o.Location = overrides.Location
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return &Module{ports: Ports{Runner: service.New(ports)}, opts: o}, nil
}

// Top is the configured row limit
func (m *Module) Top() int { return m.opts.Top }

// Window defaults a missing bound to yesterday in the configured zone
func (m *Module) Window(now time.Time, start, end tim.Date) (tim.Date, tim.Date, error) {
	yday := tim.Today(now, m.opts.Location).AddDays(-1)
	if end.IsZero() {
		end = yday
	}
	if start.IsZero() {
		start = end
	}
	if end.Before(start) {
		return start, end, perr.Validationf("end", "window end %s before start %s", end, start)
	}
	return start, end, nil
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "sites" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }
