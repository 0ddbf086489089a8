package leaderboard

import "errors"

// Sentinel kinds for leaderboard errors.
var (
	ErrInvalidLimit = errors.New("invalid leaderboard limit")
	ErrUnknownBoard = errors.New("unknown leaderboard")
)
