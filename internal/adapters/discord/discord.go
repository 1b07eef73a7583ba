// Package discord posts messages to a Discord webhook
package discord

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	perr "adpulse/internal/platform/errors"
	"adpulse/internal/platform/logger"

	json "github.com/goccy/go-json"
)

// ColorAlert is the red used for alert embeds
const ColorAlert = 15158332

const (
	defaultUsername = "adpulse"
	defaultTimeout  = 10 * time.Second

	// Discord rejects longer embed descriptions, field values and content
	maxDescription = 4096
	maxContent     = 2000
	maxFieldName   = 256
	maxFieldValue  = 1024
)

// Field is one name/value row inside an embed
type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// Embed is a rich block attached to a message
type Embed struct {
	Title       string  `json:"title,omitempty"`
	Color       int     `json:"color,omitempty"`
	Description string  `json:"description,omitempty"`
	Fields      []Field `json:"fields,omitempty"`
}

// Payload is the webhook request body
type Payload struct {
	Content  string  `json:"content,omitempty"`
	Username string  `json:"username,omitempty"`
	Embeds   []Embed `json:"embeds,omitempty"`
}

// Options configures the Client
type Options struct {
	WebhookURL string
	Username   string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client posts payloads to one webhook
type Client struct {
	http *http.Client
	opts Options
	log  logger.Logger
}

// New returns a webhook client; an empty URL yields a client whose Enabled is false
func New(o Options) *Client {
	o.WebhookURL = strings.TrimSpace(o.WebhookURL)
	if o.Username == "" {
		o.Username = defaultUsername
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	hc := o.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: o.Timeout}
	}
	return &Client{http: hc, opts: o, log: *logger.Named("discord")}
}

// Enabled reports whether a webhook URL is configured
func (c *Client) Enabled() bool { return c.opts.WebhookURL != "" }

// Post sends p; any non-2xx answer is a Notification error
func (c *Client) Post(ctx context.Context, p Payload) error {
	if !c.Enabled() {
		return perr.New(perr.ErrorCodeNotification, "discord webhook not configured")
	}
	if p.Username == "" {
		p.Username = c.opts.Username
	}
	p.Content = truncate(p.Content, maxContent)
	for i := range p.Embeds {
		p.Embeds[i].Description = truncate(p.Embeds[i].Description, maxDescription)
		for j := range p.Embeds[i].Fields {
			f := &p.Embeds[i].Fields[j]
			f.Name = truncate(f.Name, maxFieldName)
			f.Value = truncateBlock(f.Value, maxFieldValue)
		}
	}

	body, err := json.MarshalNoEscape(p)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeJSON, "encode discord payload")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeNotification, "build discord request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeNotification, "post discord webhook")
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.log.Warn().Err(cerr).Msg("discord body close failed")
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return perr.Newf(perr.ErrorCodeNotification, "discord webhook status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 512))
	c.log.Debug().Int("status", resp.StatusCode).Int("bytes", len(body)).Msg("discord webhook delivered")
	return nil
}

// Mentions renders user ids as a Discord mention string; already formatted mentions pass through
func Mentions(ids []string) string {
	var b strings.Builder
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		if strings.HasPrefix(id, "<@") {
			b.WriteString(id)
			continue
		}
		b.WriteString("<@")
		b.WriteString(id)
		b.WriteByte('>')
	}
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// truncateBlock is truncate that keeps a trailing code fence closed
func truncateBlock(s string, n int) string {
	const fence = "\n```"
	if !strings.HasSuffix(s, "```") || len([]rune(s)) <= n {
		return truncate(s, n)
	}
	return truncate(strings.TrimSuffix(s, "```"), n-len(fence)) + fence
}
