package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotFound = errors.New("not found")
	ErrRefresh  = errors.New("refresh failed")
)
