package conv

import (
	"errors"

	"github.com/cwbudde/algo-vecmath"
)

// Errors returned by convolution functions.
var (
	ErrEmptyInput  = errors.New("conv: empty input")
	ErrEmptyKernel = errors.New("conv: empty kernel")
)

// DirectHead returns the first len(signal) samples of the linear
// convolution of signal with kernel, computed in the time domain. The tail
// past the end of signal is never computed.
//
// This is O(N*M) and meant for short kernels; use OverlapAdd otherwise.
func DirectHead(signal, kernel []float64) ([]float64, error) {
	if len(signal) == 0 {
		return nil, ErrEmptyInput
	}

	if len(kernel) == 0 {
		return nil, ErrEmptyKernel
	}

	n := len(signal)
	out := make([]float64, n)
	scaled := make([]float64, len(kernel))

	for i, x := range signal {
		if x == 0 {
			continue
		}

		// out[i:i+m] += x * kernel[:m], clipped at the signal end.
		m := min(len(kernel), n-i)
		vecmath.ScaleBlock(scaled[:m], kernel[:m], x)
		vecmath.AddBlockInPlace(out[i:i+m], scaled[:m])
	}

	return out, nil
}

// nextPowerOf2 returns the next power of 2 >= n.
func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}

	p := 1
	for p < n {
		p *= 2
	}

	return p
}
