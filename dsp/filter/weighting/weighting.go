package weighting

import (
	"math"

	"github.com/cwbudde/algo-upmix/dsp/filter/biquad"
	"github.com/cwbudde/algo-upmix/dsp/filter/design/pass"
)

// ITU-R BS.1770 analog prototype parameters.
const (
	shelfFreq   = 1681.974450955533  // pre-filter centre frequency (Hz)
	shelfGainDB = 3.999843853973347  // pre-filter high-frequency gain (dB)
	shelfQ      = 0.7071752369554196 // pre-filter quality factor
	shelfVbExp  = 0.4996667741545416 // band gain exponent
	rlbFreq     = 38.13547087602444  // RLB high-pass corner (Hz)
	rlbQ        = 0.5003270373238773 // RLB quality factor
)

// Band weighting corners.
const (
	BandLowHz  = 50.0
	BandHighHz = 15000.0
	bandOrder  = 2
)

// Type identifies a frequency weighting curve.
type Type int

const (
	// TypeK is the BS.1770 K-weighting curve.
	TypeK Type = iota

	// TypeBand is the 50 Hz to 15 kHz band limit applied before metering.
	TypeBand

	// TypeZ applies no frequency weighting.
	TypeZ
)

// String returns a human-readable name for the weighting type.
func (t Type) String() string {
	switch t {
	case TypeK:
		return "K"
	case TypeBand:
		return "Band"
	case TypeZ:
		return "Z"
	default:
		return "Unknown"
	}
}

// New returns a [biquad.Chain] configured for the given weighting curve
// at the specified sample rate.
//
// Panics if sampleRate <= 0 or the type is unknown.
func New(t Type, sampleRate float64) *biquad.Chain {
	if sampleRate <= 0 {
		panic("weighting: sample rate must be positive")
	}

	switch t {
	case TypeK:
		return newKWeighting(sampleRate)
	case TypeBand:
		return newBandWeighting(sampleRate)
	case TypeZ:
		return newZWeighting()
	default:
		panic("weighting: unknown type")
	}
}

// newKWeighting builds the two-stage BS.1770 filter.
//
// With K = tan(pi*f0/sr), Vh = 10^(G/20) and Vb = Vh^0.49967 the shelf is
//
//	a0 = 1 + K/Q + K^2
//	B0 = (Vh + Vb*K/Q + K^2)/a0, B1 = 2*(K^2 - Vh)/a0, B2 = (Vh - Vb*K/Q + K^2)/a0
//	A1 = 2*(K^2 - 1)/a0, A2 = (1 - K/Q + K^2)/a0
//
// The RLB stage keeps the unnormalized numerator [1, -2, 1], which at 48 kHz
// reproduces the coefficient table published in the recommendation.
func newKWeighting(sr float64) *biquad.Chain {
	return biquad.NewChain([]biquad.Coefficients{
		preFilter(sr),
		rlbFilter(sr),
	})
}

func preFilter(sr float64) biquad.Coefficients {
	k := math.Tan(math.Pi * shelfFreq / sr)
	k2 := k * k
	vh := math.Pow(10, shelfGainDB/20)
	vb := math.Pow(vh, shelfVbExp)
	a0 := 1 + k/shelfQ + k2

	return biquad.Coefficients{
		B0: (vh + vb*k/shelfQ + k2) / a0,
		B1: 2 * (k2 - vh) / a0,
		B2: (vh - vb*k/shelfQ + k2) / a0,
		A1: 2 * (k2 - 1) / a0,
		A2: (1 - k/shelfQ + k2) / a0,
	}
}

func rlbFilter(sr float64) biquad.Coefficients {
	k := math.Tan(math.Pi * rlbFreq / sr)
	k2 := k * k
	a0 := 1 + k/rlbQ + k2

	return biquad.Coefficients{
		B0: 1,
		B1: -2,
		B2: 1,
		A1: 2 * (k2 - 1) / a0,
		A2: (1 - k/rlbQ + k2) / a0,
	}
}

// newBandWeighting cascades the band-limit high-pass and low-pass.
func newBandWeighting(sr float64) *biquad.Chain {
	coeffs := pass.ButterworthHP(BandLowHz, bandOrder, sr)
	if BandHighHz < sr/2 {
		coeffs = append(coeffs, pass.ButterworthLP(BandHighHz, bandOrder, sr)...)
	}

	if len(coeffs) == 0 {
		return newZWeighting()
	}

	return biquad.NewChain(coeffs)
}

// newZWeighting builds a Z-weighting filter (unity gain).
func newZWeighting() *biquad.Chain {
	return biquad.NewChain([]biquad.Coefficients{
		{B0: 1},
	})
}
