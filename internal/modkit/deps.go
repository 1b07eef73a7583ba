package modkit

import (
	"adpulse/internal/platform/config"
	"adpulse/internal/platform/logger"
	"adpulse/internal/platform/store"
)

// Deps holds core dependencies passed to modules
// this is wiring only and does not introduce new abstractions
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	CH  store.Clickhouse
}

// RequireCH panics when a module that reads the warehouse was wired without it
func (d Deps) RequireCH(module string) store.Clickhouse {
	if d.CH == nil {
		panic(module + ": requires a non nil clickhouse dependency")
	}
	return d.CH
}
