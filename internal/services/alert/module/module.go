// Package module wires the low revenue alert job
package module

import (
	"time"

	"adpulse/internal/modkit"
	"adpulse/internal/modkit/repokit"
	tim "adpulse/internal/platform/time"
	"adpulse/internal/services/alert/domain"
	"adpulse/internal/services/alert/repo"
	"adpulse/internal/services/alert/service"
)

// Ports exposed by the alert module
type Ports struct {
	Runner domain.RunnerPort
}

// Module implements modkit.Module
type Module struct {
	ports Ports
	opts  Options
}

// New constructs the job. Writer and Notifier arrive through modkit.WithPorts(domain.Ports{...});
// without a Source the warehouse repo is bound to deps.CH
func New(deps modkit.Deps, overrides Options, opts ...modkit.Option) (*Module, error) {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("alert")}, opts...)...)

	ports, ok := b.Ports.(domain.Ports)
	if !ok {
		panic("alert module: expected WithPorts(alert/domain.Ports)")
	}

	o := FromConfig(deps.Cfg)
	if overrides.MaxRevenue != 0 {
		o.MaxRevenue = overrides.MaxRevenue
	}
	if overrides.LookbackDays != 0 {
		o.LookbackDays = overrides.LookbackDays
	}
	if overrides.Location != nil {
		o.Location = overrides.Location
	}
	if overrides.RevenueTable != "" {
		o.RevenueTable = overrides.RevenueTable
	}
	if overrides.CostTable != "" {
		o.CostTable = overrides.CostTable
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}

	if ports.Source == nil {
		ports.Source = repokit.MustBind(repo.NewCH(repo.CH{
			Database:     o.Database,
			RevenueTable: o.RevenueTable,
			CostTable:    o.CostTable,
			TZ:           o.Location.String(),
		}), deps.RequireCH(b.Name))
	}

	svc := service.New(ports, service.Config{
		MaxRevenue:     o.MaxRevenue,
		FilterZeroSite: o.FilterZeroSite,
		LookbackDays:   o.LookbackDays,
	})
	return &Module{ports: Ports{Runner: svc}, opts: o}, nil
}

// Yesterday is the day before now in the configured zone
func (m *Module) Yesterday(now time.Time) tim.Date {
	return tim.Today(now, m.opts.Location).AddDays(-1)
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "alert" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }
