package config

import "errors"

// Sentinel error kinds for this package. Validation problems wrap
// ErrInvalidConfig; an unsupported provider kind also wraps
// ErrUnknownProvider so callers can tell it apart.
var (
	ErrInvalidConfig   = errors.New("invalid config")
	ErrLoadConfig      = errors.New("load config failed")
	ErrUnknownProvider = errors.New("unknown provider")
)
