// Package module wires the report writer and exposes its ports
package module

import (
	"adpulse/internal/modkit"
	"adpulse/internal/services/report/domain"
	"adpulse/internal/services/report/service"
)

// Ports exposed by the report module
type Ports struct {
	Writer domain.WriterPort
}

// Module implements modkit.Module
type Module struct {
	ports Ports
	opts  Options
}

// New constructs the report module; a non-empty override Dir wins over env
func New(deps modkit.Deps, overrides Options, opts ...modkit.Option) (*Module, error) {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("report")}, opts...)...)

	o := FromConfig(deps.Cfg)
	if overrides.Dir != "" {
		o.Dir = overrides.Dir
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	if p, ok := b.Ports.(Ports); ok && p.Writer != nil {
		return &Module{ports: p, opts: o}, nil
	}
	return &Module{ports: Ports{Writer: service.New(service.Config{Dir: o.Dir})}, opts: o}, nil
}

// Timestamped reports whether file names carry the time of day
func (m *Module) Timestamped() bool { return m.opts.Timestamped }

// Name satisfies modkit.Module
func (m *Module) Name() string { return "report" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }
