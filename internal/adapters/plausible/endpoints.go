package plausible

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	perr "adpulse/internal/platform/errors"
	tim "adpulse/internal/platform/time"

	json "github.com/goccy/go-json"
)

const maxBody = 8 << 20

// Sites lists the domains registered on the instance.
// Both the bare array and the {"sites": [...]} envelope are accepted
func (c *Client) Sites(ctx context.Context) ([]Site, error) {
	body, err := c.fetch(ctx, "/sites", nil)
	if err != nil {
		return nil, err
	}
	return decodeSites(body)
}

// Timeseries returns daily visitors for siteID over [start, end]. Days with a null count are skipped
func (c *Client) Timeseries(ctx context.Context, siteID string, start, end tim.Date) ([]Point, error) {
	if siteID == "" {
		return nil, perr.Validationf("site_id", "site_id is required")
	}
	if end.Before(start) {
		return nil, perr.Validationf("date", "window end %s before start %s", end, start)
	}
	q := url.Values{}
	q.Set("site_id", siteID)
	q.Set("period", "custom")
	q.Set("date", start.String()+","+end.String())
	q.Set("metrics", "visitors")
	q.Set("interval", "date")

	body, err := c.fetch(ctx, "/stats/timeseries", q)
	if err != nil {
		return nil, err
	}
	var ts timeseriesResp
	if err := json.Unmarshal(body, &ts); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeJSON, "decode timeseries")
	}
	out := make([]Point, 0, len(ts.Results))
	for _, r := range ts.Results {
		if r.Visitors == nil {
			continue
		}
		d, err := tim.ParseDate(r.Date)
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeJSON, "timeseries date %q", r.Date)
		}
		out = append(out, Point{Date: d, Visitors: toCount(*r.Visitors)})
	}
	return out, nil
}

// Breakdown returns visitors per property value for one day, e.g. property "event:page"
func (c *Client) Breakdown(ctx context.Context, siteID string, day tim.Date, property string, limit int) ([]BreakdownRow, error) {
	if siteID == "" {
		return nil, perr.Validationf("site_id", "site_id is required")
	}
	if property == "" {
		property = "event:page"
	}
	q := url.Values{}
	q.Set("site_id", siteID)
	q.Set("period", "day")
	q.Set("date", day.String())
	q.Set("property", property)
	q.Set("metrics", "visitors")
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	body, err := c.fetch(ctx, "/stats/breakdown", q)
	if err != nil {
		return nil, err
	}
	var br breakdownResp
	if err := json.Unmarshal(body, &br); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeJSON, "decode breakdown")
	}

	// "event:page" comes back keyed as "page"
	key := property
	if i := strings.LastIndexByte(key, ':'); i >= 0 {
		key = key[i+1:]
	}
	out := make([]BreakdownRow, 0, len(br.Results))
	for _, r := range br.Results {
		v, _ := r[key].(string)
		n, _ := r["visitors"].(float64)
		out = append(out, BreakdownRow{Value: v, Visitors: toCount(n)})
	}
	return out, nil
}

func (c *Client) fetch(ctx context.Context, path string, q url.Values) ([]byte, error) {
	resp, err := c.Do(ctx, path, q)
	if err != nil {
		return nil, err
	}
	return readBody(resp, c)
}

func readBody(resp *http.Response, c *Client) ([]byte, error) {
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.log.Warn().Err(cerr).Msg("plausible body close failed")
		}
	}()
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeConnection, "read plausible body")
	}
	return b, nil
}

func decodeSites(body []byte) ([]Site, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, perr.New(perr.ErrorCodeJSON, "empty sites response")
	}
	var sites []Site
	switch body[0] {
	case '[':
		if err := json.Unmarshal(body, &sites); err != nil {
			return nil, perr.Wrap(err, perr.ErrorCodeJSON, "decode sites array")
		}
	case '{':
		var env sitesEnvelope
		if err := json.Unmarshal(body, &env); err != nil {
			return nil, perr.Wrap(err, perr.ErrorCodeJSON, "decode sites envelope")
		}
		sites = env.Sites
	default:
		return nil, perr.New(perr.ErrorCodeJSON, fmt.Sprintf("unexpected sites payload starting with %q", body[0]))
	}
	out := sites[:0]
	for _, s := range sites {
		if s.Domain = strings.TrimSpace(s.Domain); s.Domain != "" {
			out = append(out, s)
		}
	}
	return out, nil
}

func toCount(f float64) uint64 {
	if f <= 0 {
		return 0
	}
	return uint64(f + 0.5)
}
