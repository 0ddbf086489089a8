package pairkey

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ID normalises a provider id value to its text form. Strings are trimmed;
// integers, json.Number and whole floats print in base 10. ok is false for
// nil, blank and unsupported values.
func ID(v any) (id string, ok bool) {
	switch t := v.(type) {
	case string:
		id = strings.TrimSpace(t)
	case json.Number:
		id = t.String()
	case int:
		id = strconv.Itoa(t)
	case int64:
		id = strconv.FormatInt(t, 10)
	case uint64:
		id = strconv.FormatUint(t, 10)
	case float64:
		if t != math.Trunc(t) || math.IsInf(t, 0) {
			return "", false
		}
		id = strconv.FormatInt(int64(t), 10)
	case fmt.Stringer:
		id = t.String()
	default:
		return "", false
	}
	return id, id != ""
}

// Reserved reports whether id contains Separator and so cannot be keyed
// without colliding with another set of ids.
func Reserved(id string) bool {
	return strings.Contains(id, Separator)
}
