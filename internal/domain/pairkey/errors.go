package pairkey

import "errors"

// ErrArity is returned when a key is requested for anything but 2 or 3 ids.
var ErrArity = errors.New("pair key needs 2 or 3 ids")
