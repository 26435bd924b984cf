//go:build fastmath

package time

import (
	"math"

	"github.com/meko-christian/algo-approx"
)

// dbPerNeper converts a natural logarithm to decibels: 20 / ln(10).
const dbPerNeper = 8.685889638065036553

// toDB converts a linear level to decibels using a fast log approximation.
// Levels are only reported, never fed back into gain computation.
func toDB(x float64) float64 {
	if x <= 0 {
		return math.Inf(-1)
	}

	return dbPerNeper * approx.FastLog(x)
}
