// Package module wires the visitors reader and exposes its ports
package module

import (
	"adpulse/internal/adapters/plausible"
	"adpulse/internal/modkit"
	"adpulse/internal/services/visitors/domain"
	"adpulse/internal/services/visitors/service"
)

// Ports exposed by the visitors module
type Ports struct {
	Fetcher domain.FetcherPort
}

// Module implements modkit.Module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the visitors module. Zero valued overrides keep the env configured value
func New(deps modkit.Deps, overrides Options, opts ...modkit.Option) (*Module, error) {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("visitors")}, opts...)...)
	if p, ok := b.Ports.(Ports); ok && p.Fetcher != nil {
		return &Module{deps: deps, ports: p}, nil
	}

	o := merge(FromConfig(deps.Cfg), overrides)
	if err := o.Validate(); err != nil {
		return nil, err
	}

	pc := plausible.NewClient(plausible.Options{
		BaseURL:    o.BaseURL,
		Token:      o.Token,
		Timeout:    o.Timeout,
		MaxRetries: o.MaxRetries,
		RPS:        o.RPS,
	})
	var client service.Client = pc
	if o.BaseURL == "" {
		client = newProbingClient(pc, o.BaseURLs)
	}

	svc := service.New(client, service.Config{
		Mode:           service.Mode(o.Mode),
		Workers:        o.Workers,
		SiteID:         o.SiteID,
		BreakdownLimit: o.BreakdownLimit,
	})
	return &Module{deps: deps, ports: Ports{Fetcher: svc}}, nil
}

func merge(o, ov Options) Options {
	if ov.Token != "" {
		o.Token = ov.Token
	}
	if ov.BaseURL != "" {
		o.BaseURL = ov.BaseURL
	}
	if len(ov.BaseURLs) > 0 {
		o.BaseURLs = ov.BaseURLs
	}
	if ov.Mode != "" {
		o.Mode = ov.Mode
	}
	if ov.SiteID != "" {
		o.SiteID = ov.SiteID
	}
	if ov.Workers != 0 {
		o.Workers = ov.Workers
	}
	if ov.RPS != 0 {
		o.RPS = ov.RPS
	}
	if ov.MaxRetries != 0 {
		o.MaxRetries = ov.MaxRetries
	}
	if ov.Timeout != 0 {
		o.Timeout = ov.Timeout
	}
	if ov.BreakdownLimit != 0 {
		o.BreakdownLimit = ov.BreakdownLimit
	}
	return o
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "visitors" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }
