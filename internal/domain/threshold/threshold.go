// Package threshold gates records on sample size. A record below its
// category's minimum games stays in the data but is kept off rankings.
package threshold

import "github.com/okian/rapport/internal/domain/scoring"

// Sampled is any record that knows how many games back its scores.
type Sampled interface {
	SampleSize() int
}

// IsSignificant reports whether games meets the minimum for c.
func IsSignificant(c scoring.Category, games int) bool {
	return games >= scoring.MinGames(c)
}

// Significant reports whether record meets the minimum for c.
func Significant[T Sampled](c scoring.Category, record T) bool {
	return IsSignificant(c, record.SampleSize())
}

// Filter returns the significant records in input order. records is not
// modified.
func Filter[T Sampled](c scoring.Category, records []T) []T {
	out := make([]T, 0, len(records))
	for _, r := range records {
		if Significant(c, r) {
			out = append(out, r)
		}
	}
	return out
}
