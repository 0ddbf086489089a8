// Package pairkey builds order-independent identity keys for sets of two or
// three players. Keys are used wherever a pair or trio is stored or looked up
// so that (a, b) and (b, a) always land on the same entry.
package pairkey

import (
	"fmt"
	"sort"
	"strings"
)

// Separator joins sorted identifiers. Decoders reject ids that contain it.
const Separator = "|"

// Pair returns the canonical key for two players.
func Pair(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + Separator + b
}

// Trio returns the canonical key for three players.
func Trio(a, b, c string) string {
	ids := [3]string{a, b, c}
	sort.Strings(ids[:])
	return ids[0] + Separator + ids[1] + Separator + ids[2]
}

// Of returns the canonical key for 2 or 3 identifiers.
func Of(ids ...string) (string, error) {
	switch len(ids) {
	case 2:
		return Pair(ids[0], ids[1]), nil
	case 3:
		return Trio(ids[0], ids[1], ids[2]), nil
	default:
		return "", fmt.Errorf("%w: got %d ids", ErrArity, len(ids))
	}
}

// Split returns the sorted identifiers a key was built from.
func Split(key string) []string {
	if key == "" {
		return nil
	}
	return strings.Split(key, Separator)
}
