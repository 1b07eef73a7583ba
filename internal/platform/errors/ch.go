package errors

// ClickHouse-specific helpers for mapping driver errors to project ErrorCode

import (
	"context"
	stderrs "errors"
	"io"
	"net"
	"syscall"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// ClickHouse server exception codes we care about
const (
	chErrTimeoutExceeded      = 159
	chErrUnknownUser          = 192
	chErrRequiredPassword     = 194
	chErrSocketTimeout        = 209
	chErrNetworkError         = 210
	chErrTooManySimultaneous  = 202
	chErrReadonly             = 164
	chErrAuthenticationFailed = 516
)

// ExtractCHException returns (*clickhouse.Exception, true) if err carries a server exception
func ExtractCHException(err error) (*clickhouse.Exception, bool) {
	var ex *clickhouse.Exception
	if stderrs.As(err, &ex) {
		return ex, true
	}
	return nil, false
}

// IsCHCode reports whether err is a ClickHouse exception with the given code
func IsCHCode(err error, code int32) bool {
	ex, ok := ExtractCHException(err)
	return ok && ex.Code == code
}

// isTransport reports whether err is a network level failure (dial, reset, timeout, eof)
func isTransport(err error) bool {
	if err == nil {
		return false
	}
	var ne net.Error
	if stderrs.As(err, &ne) {
		return true
	}
	var op *net.OpError
	if stderrs.As(err, &op) {
		return true
	}
	return stderrs.Is(err, io.EOF) ||
		stderrs.Is(err, io.ErrUnexpectedEOF) ||
		stderrs.Is(err, syscall.ECONNREFUSED) ||
		stderrs.Is(err, syscall.ECONNRESET) ||
		stderrs.Is(err, context.DeadlineExceeded)
}

// CodeFromCH classifies a raw driver error
func CodeFromCH(err error) ErrorCode {
	if err == nil {
		return ErrorCodeUnknown
	}
	if ex, ok := ExtractCHException(err); ok {
		switch ex.Code {
		case chErrUnknownUser, chErrRequiredPassword, chErrAuthenticationFailed:
			return ErrorCodeUnauthorized
		case chErrSocketTimeout, chErrNetworkError:
			return ErrorCodeConnection
		case chErrTimeoutExceeded, chErrTooManySimultaneous:
			return ErrorCodeUnavailable
		default:
			return ErrorCodeQuery
		}
	}
	if isTransport(err) {
		return ErrorCodeConnection
	}
	return ErrorCodeQuery
}

// FromCH wraps a driver error with the classified code; nil stays nil
func FromCH(err error, msg string) error {
	if err == nil {
		return nil
	}
	if _, ok := As(err); ok {
		return err
	}
	return Wrap(err, CodeFromCH(err), msg)
}

// IsRetryableCH reports whether a raw driver error is worth retrying
func IsRetryableCH(err error) bool {
	if _, ok := As(err); ok {
		return false
	}
	if IsCHCode(err, chErrReadonly) {
		return false
	}
	switch CodeFromCH(err) {
	case ErrorCodeConnection, ErrorCodeUnavailable:
		return true
	}
	return false
}
