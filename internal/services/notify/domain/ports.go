// Package domain declares the alert notifier contract
package domain

import "context"

// Message is one alert; Preview is rendered monospace
type Message struct {
	Title      string
	Summary    string
	Preview    string
	ReportPath string
}

// NotifierPort delivers alerts. Delivery failures are logged and reported as false, never returned
type NotifierPort interface {
	// Notify sends msg mentioning recipients (user ids); nil recipients means the configured defaults
	Notify(ctx context.Context, msg Message, recipients []string) bool
}
