// Package service formats alerts and hands them to the webhook
package service

import (
	"context"
	"path/filepath"

	"adpulse/internal/adapters/discord"
	"adpulse/internal/platform/logger"
	"adpulse/internal/services/notify/domain"
)

// Poster is the slice of the Discord client the service uses
type Poster interface {
	Enabled() bool
	Post(ctx context.Context, p discord.Payload) error
}

// Config carries defaults
type Config struct {
	Recipients []string
	Color      int
}

// Svc implements domain.NotifierPort
type Svc struct {
	poster Poster
	cfg    Config
}

var _ domain.NotifierPort = (*Svc)(nil)

// New constructs the notifier
func New(p Poster, cfg Config) *Svc {
	if p == nil {
		panic("notify.Service requires a non nil poster")
	}
	if cfg.Color == 0 {
		cfg.Color = discord.ColorAlert
	}
	return &Svc{poster: p, cfg: cfg}
}

// Notify posts msg; it never fails the caller
func (s *Svc) Notify(ctx context.Context, msg Message, recipients []string) bool {
	log := logger.C(ctx)
	if !s.poster.Enabled() {
		log.Warn().Str("title", msg.Title).Msg("webhook url not configured, alert not sent")
		return false
	}
	if recipients == nil {
		recipients = s.cfg.Recipients
	}
	if err := s.poster.Post(ctx, s.payload(msg, recipients)); err != nil {
		log.Error().Err(err).Str("title", msg.Title).Msg("alert delivery failed")
		return false
	}
	log.Info().Str("title", msg.Title).Int("recipients", len(recipients)).Msg("alert delivered")
	return true
}

// Message aliases the domain type for callers that only import the service
type Message = domain.Message

func (s *Svc) payload(msg Message, recipients []string) discord.Payload {
	var fields []discord.Field
	if msg.Preview != "" {
		fields = append(fields, discord.Field{Name: "Preview", Value: "```\n" + msg.Preview + "```"})
	}
	if msg.ReportPath != "" {
		fields = append(fields, discord.Field{Name: "Full report", Value: "`" + filepath.Base(msg.ReportPath) + "`"})
	}
	return discord.Payload{
		Content: discord.Mentions(recipients),
		Embeds: []discord.Embed{{
			Title:       msg.Title,
			Color:       s.cfg.Color,
			Description: msg.Summary,
			Fields:      fields,
		}},
	}
}
