package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/okian/rapport/internal/adapters/provider"
	service "github.com/okian/rapport/internal/app"
	"github.com/okian/rapport/internal/domain/leaderboard"
	"github.com/okian/rapport/internal/domain/transform"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest    = errors.New("bad request")
	ErrLimitExceeded = errors.New("limit exceeded")
)

// Error records the handler operation that failed and the kind of failure.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Kind != nil && e.Err != nil:
		return e.Op + ": " + e.Kind.Error() + ": " + e.Err.Error()
	case e.Kind != nil:
		return e.Op + ": " + e.Kind.Error()
	case e.Err != nil:
		return e.Op + ": " + e.Err.Error()
	default:
		return e.Op
	}
}

func (e *Error) Unwrap() []error {
	var errs []error
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// NewKind returns an Error of kind with no further cause.
func NewKind(op string, kind error) error {
	return &Error{Op: op, Kind: kind}
}

// Wrap attaches op to err.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}

// classify maps a domain error to a status and a stable error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrLimitExceeded):
		return http.StatusBadRequest, "limit_exceeded"
	case errors.Is(err, ErrBadRequest), errors.Is(err, leaderboard.ErrInvalidLimit):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, leaderboard.ErrUnknownBoard):
		return http.StatusNotFound, "unknown_board"
	case errors.Is(err, service.ErrNotFound), errors.Is(err, provider.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, provider.ErrUpstream), errors.Is(err, transform.ErrInvalidAggregate):
		return http.StatusBadGateway, "upstream_error"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
