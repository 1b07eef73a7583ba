// Package repokit provides common types and helpers for repository implementations
package repokit

import (
	"context"
	"errors"

	perr "adpulse/internal/platform/errors"
	"adpulse/internal/platform/store"
)

type (
	// Queryer is the read surface warehouse repos bind to
	Queryer = store.Querier
	// Rows are the result set of a query
	Rows = store.Rows
	// Row is a single row result from a query
	Row = store.Row
)

// Binder is a tiny factory that binds a domain repo to a specific Queryer
type Binder[T any] interface {
	Bind(Queryer) T
}

// BindFunc lets you create a Binder from a function
type BindFunc[T any] func(Queryer) T

// Bind calls the underlying function
func (f BindFunc[T]) Bind(q Queryer) T { return f(q) }

// RequireQueryer panics early on programmer error (nil q)
func RequireQueryer(q Queryer) Queryer {
	if q == nil {
		panic("repokit: nil Queryer")
	}
	return q
}

// MustBind is a convenience that validates q then binds
func MustBind[T any](b Binder[T], q Queryer) T {
	return b.Bind(RequireQueryer(q))
}

// Classify maps a warehouse failure onto the two codes repos surface:
// statement and scan failures stay Query, anything else is Connection
func Classify(err error, op string) error {
	if err == nil {
		return nil
	}
	code := perr.CodeOf(err)
	if code == perr.ErrorCodeUnknown {
		code = perr.CodeFromCH(err)
	}
	if code != perr.ErrorCodeQuery || errors.Is(err, context.Canceled) {
		code = perr.ErrorCodeConnection
	}
	return perr.WithOp(perr.Wrap(err, code, op+" failed"), op)
}
