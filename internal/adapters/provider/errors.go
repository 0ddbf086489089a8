package provider

import "errors"

// Sentinel kinds for provider errors.
var (
	ErrNotFound       = errors.New("aggregate not found")
	ErrUpstream       = errors.New("aggregation provider error")
	ErrInvalidDataset = errors.New("invalid dataset")
)
