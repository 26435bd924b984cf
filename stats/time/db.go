//go:build !fastmath

package time

import "github.com/cwbudde/algo-upmix/dsp/core"

// toDB converts a linear level to decibels.
func toDB(x float64) float64 {
	return core.LinearToDB(x)
}
