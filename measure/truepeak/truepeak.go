package truepeak

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-upmix/dsp/resample"
	"github.com/cwbudde/algo-vecmath"
)

// Common oversampling factors.
const (
	Factor2x = 2
	Factor4x = 4
)

// ErrInvalidFactor is returned for an oversampling factor below 1.
var ErrInvalidFactor = errors.New("truepeak: oversampling factor must be >= 1")

// Estimate returns the true-peak estimate of signal at the given
// oversampling factor. An empty signal has peak 0.
//
// Hard onsets and cut-offs make the interpolation filter ring, so a
// full-scale tone with abrupt edges reads about 1% above its crest near
// the edges.
func Estimate(signal []float64, factor int) (float64, error) {
	if factor < 1 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidFactor, factor)
	}

	if len(signal) == 0 {
		return 0, nil
	}

	if factor == 1 {
		return vecmath.MaxAbs(signal), nil
	}

	up, err := resample.Poly(signal, factor, 1)
	if err != nil {
		return 0, fmt.Errorf("truepeak: %w", err)
	}

	// The interpolator passes through the original samples only
	// approximately; never report less than the sample peak.
	return math.Max(vecmath.MaxAbs(up), vecmath.MaxAbs(signal)), nil
}

// Envelope returns the per-sample maximum absolute value across channels.
// Channels shorter than the longest one contribute zeros past their end.
func Envelope(channels [][]float64) []float64 {
	n := 0
	for _, ch := range channels {
		n = max(n, len(ch))
	}

	env := make([]float64, n)
	for _, ch := range channels {
		for i, v := range ch {
			if a := math.Abs(v); a > env[i] {
				env[i] = a
			}
		}
	}

	return env
}

// EstimateChannels returns the largest per-channel true peak.
func EstimateChannels(channels [][]float64, factor int) (float64, error) {
	peak := 0.0

	for i, ch := range channels {
		p, err := Estimate(ch, factor)
		if err != nil {
			return 0, fmt.Errorf("channel %d: %w", i, err)
		}

		peak = math.Max(peak, p)
	}

	return peak, nil
}
