package store

import "context"

type queryLabelKey struct{}

// WithQueryLabel tags every query issued with ctx so it can be found in system.query_log.
// The run id is the usual label
func WithQueryLabel(ctx context.Context, label string) context.Context {
	return context.WithValue(ctx, queryLabelKey{}, label)
}

// QueryLabel retrieves the label if present
func QueryLabel(ctx context.Context) (string, bool) {
	s, _ := ctx.Value(queryLabelKey{}).(string)
	return s, s != ""
}
