package repository

import "errors"

// Sentinel kinds for snapshot errors.
var (
	ErrNilSnapshot = errors.New("nil snapshot")
)
