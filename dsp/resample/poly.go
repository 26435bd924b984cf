package resample

import "math"

// Default window for zero-phase resampling: 20 taps per phase at the
// larger of up and down, cutoff at the output Nyquist, Kaiser beta 5.
const (
	polyTapsPerPhase = 20
	polyKaiserBeta   = 5.0
)

func polyConfig(opts []Option) config {
	cfg := config{
		quality:      QualityBalanced,
		tapsPerPhase: polyTapsPerPhase,
		cutoffScale:  1,
		kaiserBeta:   polyKaiserBeta,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg.finalized()
}

// Poly resamples a whole signal by up/down with a linear-phase polyphase
// FIR and removes the filter delay, so output sample m is aligned with
// input position m*down/up. The output has ceil(len(input)*up/down)
// samples. A 1/1 ratio returns a copy of input.
//
// Unless options override it, the anti-aliasing filter is a Kaiser
// (beta 5) windowed sinc with 10*max(up, down) taps on each side.
func Poly(input []float64, up, down int, opts ...Option) ([]float64, error) {
	if up <= 0 || down <= 0 {
		return nil, ErrInvalidRatio
	}

	g := gcd(up, down)
	up /= g
	down /= g

	if up == 1 && down == 1 {
		return append([]float64(nil), input...), nil
	}

	if len(input) == 0 {
		return []float64{}, nil
	}

	taps, halfLen, err := designZeroPhaseFIR(up, down, polyConfig(opts))
	if err != nil {
		return nil, err
	}

	n := len(input)
	out := make([]float64, (n*up+down-1)/down)

	// In the zero-stuffed domain only every up-th tap meets an input
	// sample, so each output visits a single polyphase branch.
	for m := range out {
		centre := m*down + halfLen

		var y float64

		for j := centre % up; j < len(taps); j += up {
			idx := (centre - j) / up
			if idx < 0 {
				break
			}

			if idx < n {
				y += taps[j] * input[idx]
			}
		}

		out[m] = y
	}

	return out, nil
}

// ForRates resamples a whole signal from inRate to outRate with Poly,
// approximating outRate/inRate by a rational ratio.
func ForRates(input []float64, inRate, outRate float64, opts ...Option) ([]float64, error) {
	if inRate <= 0 || outRate <= 0 || math.IsNaN(inRate) || math.IsNaN(outRate) ||
		math.IsInf(inRate, 0) || math.IsInf(outRate, 0) {
		return nil, ErrInvalidRate
	}

	up, down := approximateRatio(outRate/inRate, polyConfig(opts).maxDen)

	return Poly(input, up, down, opts...)
}
