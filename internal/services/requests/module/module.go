// Package module wires the requests reader and exposes its ports
package module

import (
	"adpulse/internal/modkit"
	"adpulse/internal/modkit/repokit"
	"adpulse/internal/services/requests/domain"
	"adpulse/internal/services/requests/repo"
	"adpulse/internal/services/requests/service"
)

// Ports exposed by the requests module
type Ports struct {
	Reader domain.ReaderPort
}

// Module implements modkit.Module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the requests module over deps.CH.
// Zero valued overrides keep the env configured value
func New(deps modkit.Deps, overrides Options, opts ...modkit.Option) (*Module, error) {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("requests")}, opts...)...)

	o := FromConfig(deps.Cfg)
	if overrides.Database != "" {
		o.Database = overrides.Database
	}
	if overrides.Table != "" {
		o.Table = overrides.Table
	}
	if overrides.MaxWindowDays != 0 {
		o.MaxWindowDays = overrides.MaxWindowDays
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}

	// an injected reader (tests, dry runs) skips the warehouse entirely
	if p, ok := b.Ports.(Ports); ok && p.Reader != nil {
		return &Module{deps: deps, ports: p}, nil
	}

	r := repokit.MustBind(repo.NewCH(o.Database, o.Table), deps.RequireCH(b.Name))
	svc := service.New(r, service.Config{MaxWindowDays: o.MaxWindowDays})
	return &Module{deps: deps, ports: Ports{Reader: svc}}, nil
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "requests" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }
