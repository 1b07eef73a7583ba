package module

import (
	"strings"

	"adpulse/internal/platform/config"
	"adpulse/internal/platform/validate"
)

// Options controls alert delivery
type Options struct {
	WebhookURL string `env:"DISCORD_WEBHOOK_URL" validate:"omitempty,url"`
	MentionIDs string `env:"MENTION_IDS" validate:"comma_ints"`
	Username   string `env:"DISCORD_USERNAME"`
}

// FromConfig reads DISCORD_WEBHOOK_URL, DISCORD_USERNAME and MENTION_IDS
func FromConfig(cfg config.Conf) Options {
	return Options{
		WebhookURL: cfg.MayString("DISCORD_WEBHOOK_URL", ""),
		MentionIDs: cfg.MayString("MENTION_IDS", ""),
		Username:   cfg.MayString("DISCORD_USERNAME", "adpulse"),
	}
}

// Recipients splits MentionIDs
func (o Options) Recipients() []string {
	var out []string
	for p := range strings.SplitSeq(o.MentionIDs, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks the merged options
func (o Options) Validate() error { return validate.Struct(o) }
