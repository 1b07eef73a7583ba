// Package module wires the reconcile job from its upstream modules
package module

import (
	"time"

	"adpulse/internal/core/recon"
	"adpulse/internal/modkit"
	tim "adpulse/internal/platform/time"
	"adpulse/internal/services/reconcile/domain"
	"adpulse/internal/services/reconcile/service"
)

// Ports exposed by the reconcile module
type Ports struct {
	Runner domain.RunnerPort
}

// Module implements modkit.Module
type Module struct {
	ports Ports
	opts  Options
}

// New constructs the job. Upstream ports arrive through modkit.WithPorts(domain.Ports{...}).
// Non-zero override fields win over env; a zero threshold or turning a bool off is env only
func New(deps modkit.Deps, overrides Options, opts ...modkit.Option) (*Module, error) {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("reconcile")}, opts...)...)

	ports, ok := b.Ports.(domain.Ports)
	if !ok {
		panic("reconcile module: expected WithPorts(reconcile/domain.Ports)")
	}

	o := FromConfig(deps.Cfg)
	if overrides.LookbackDays != 0 {
		o.LookbackDays = overrides.LookbackDays
	}
	if overrides.TopN != 0 {
		o.TopN = overrides.TopN
	}
	if overrides.SortBy != "" {
		o.SortBy = overrides.SortBy
	}
	if overrides.RatioThreshold != 0 {
		o.RatioThreshold = overrides.RatioThreshold
	}
	if overrides.FilterZeroSite {
		o.FilterZeroSite = true
	}
	if overrides.Timestamped {
		o.Timestamped = true
	}
	if len(overrides.Domains) > 0 {
		o.Domains = overrides.Domains
	}
	if overrides.DomainsFromRequests {
		o.DomainsFromRequests = true
	}
	if overrides.Location != nil {
		o.Location = overrides.Location
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	by, err := recon.ParseSortKey(o.SortBy)
	if err != nil {
		return nil, err
	}

	svc := service.New(ports, service.Config{
		TopN:                o.TopN,
		SortBy:              by,
		RatioThreshold:      o.RatioThreshold,
		FilterZeroSite:      o.FilterZeroSite,
		Domains:             o.Domains,
		DomainsFromRequests: o.DomainsFromRequests,
		Timestamped:         o.Timestamped,
	})
	return &Module{ports: Ports{Runner: svc}, opts: o}, nil
}

// Window resolves the run window against now in the configured zone
func (m *Module) Window(now time.Time, start, end tim.Date) (tim.Date, tim.Date, error) {
	return service.ResolveWindow(tim.Today(now, m.opts.Location), m.opts.LookbackDays, start, end)
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "reconcile" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }
