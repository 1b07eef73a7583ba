package module

import (
	"context"
	"sync"

	"adpulse/internal/adapters/plausible"
	"adpulse/internal/platform/logger"
	tim "adpulse/internal/platform/time"
	"adpulse/internal/services/visitors/service"
)

// probingClient picks the API root on first use and then behaves like a plain client.
// A failed probe is not cached so the next call tries again
type probingClient struct {
	base       *plausible.Client
	candidates []string

	mu       sync.Mutex
	resolved service.Client
}

func newProbingClient(base *plausible.Client, candidates []string) *probingClient {
	if base == nil {
		panic("visitors: probing client requires a non-nil plausible client")
	}
	return &probingClient{base: base, candidates: candidates}
}

func (p *probingClient) client(ctx context.Context) (service.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.resolved != nil {
		return p.resolved, nil
	}
	root, err := p.base.Probe(ctx, p.candidates)
	if err != nil {
		return nil, err
	}
	logger.C(ctx).Info().Str("base_url", root).Msg("plausible api root selected")
	p.resolved = p.base.WithBaseURL(root)
	return p.resolved, nil
}

func (p *probingClient) Sites(ctx context.Context) ([]plausible.Site, error) {
	c, err := p.client(ctx)
	if err != nil {
		return nil, err
	}
	return c.Sites(ctx)
}

func (p *probingClient) Timeseries(ctx context.Context, siteID string, start, end tim.Date) ([]plausible.Point, error) {
	c, err := p.client(ctx)
	if err != nil {
		return nil, err
	}
	return c.Timeseries(ctx, siteID, start, end)
}

func (p *probingClient) Breakdown(ctx context.Context, siteID string, day tim.Date, property string, limit int) ([]plausible.BreakdownRow, error) {
	c, err := p.client(ctx)
	if err != nil {
		return nil, err
	}
	return c.Breakdown(ctx, siteID, day, property, limit)
}
