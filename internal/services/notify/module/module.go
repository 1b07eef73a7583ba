// Package module wires the notifier and exposes its ports
package module

import (
	"adpulse/internal/adapters/discord"
	"adpulse/internal/modkit"
	"adpulse/internal/services/notify/domain"
	"adpulse/internal/services/notify/service"
)

// Ports exposed by the notify module
type Ports struct {
	Notifier domain.NotifierPort
}

// Module implements modkit.Module
type Module struct {
	ports Ports
}

// New constructs the notify module. An empty webhook URL is valid and disables delivery
func New(deps modkit.Deps, overrides Options, opts ...modkit.Option) (*Module, error) {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("notify")}, opts...)...)
	if p, ok := b.Ports.(Ports); ok && p.Notifier != nil {
		return &Module{ports: p}, nil
	}

	o := FromConfig(deps.Cfg)
	if overrides.WebhookURL != "" {
		o.WebhookURL = overrides.WebhookURL
	}
	if overrides.MentionIDs != "" {
		o.MentionIDs = overrides.MentionIDs
	}
	if overrides.Username != "" {
		o.Username = overrides.Username
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}

	client := discord.New(discord.Options{WebhookURL: o.WebhookURL, Username: o.Username})
	svc := service.New(client, service.Config{Recipients: o.Recipients()})
	return &Module{ports: Ports{Notifier: svc}}, nil
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "notify" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }
