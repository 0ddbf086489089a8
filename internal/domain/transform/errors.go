package transform

import (
	"errors"
	"fmt"

	"github.com/okian/rapport/internal/domain/scoring"
)

// ErrInvalidAggregate marks a provider row that cannot be scored. Every
// *ValidationError unwraps to it.
var ErrInvalidAggregate = errors.New("invalid aggregate")

// Validation reasons, also used as metric labels.
const (
	ReasonMissing            = "missing"
	ReasonNonNumeric         = "non_numeric"
	ReasonNonInteger         = "non_integer"
	ReasonNegative           = "negative"
	ReasonResultsExceedGames = "results_exceed_games"
	ReasonSamePlayer         = "same_player"
	ReasonReservedSeparator  = "reserved_separator"
	ReasonInvalid            = "invalid"
)

// ValidationError describes why one aggregate row was rejected.
type ValidationError struct {
	Category scoring.Category
	Field    string
	Reason   string
	Detail   string
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("%s %s: %s: %s", ErrInvalidAggregate, e.Category, e.Field, e.Reason)
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

// Unwrap lets errors.Is match ErrInvalidAggregate.
func (e *ValidationError) Unwrap() error { return ErrInvalidAggregate }

// Reason extracts the validation reason from err, or "" when err is not a
// validation failure.
func Reason(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Reason
	}
	return ""
}

func invalid(c scoring.Category, field, reason, detail string) *ValidationError {
	return &ValidationError{Category: c, Field: field, Reason: reason, Detail: detail}
}
