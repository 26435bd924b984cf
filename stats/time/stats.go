package time

import (
	"math"

	"github.com/cwbudde/algo-upmix/dsp/core"
	"github.com/cwbudde/algo-vecmath"
)

// FullScale is the clipping threshold of fixed-point output.
const FullScale = 1.0

// Level holds the time-domain statistics of one channel.
type Level struct {
	Length        int
	DC            float64 // mean
	Peak          float64 // max |x|
	PeakPos       int
	PeakDB        float64
	RMS           float64
	RMSDB         float64
	CrestFactor   float64 // Peak / RMS, 0 for silence
	CrestFactorDB float64
	ZeroCrossings int
	Clipped       int // samples at or beyond FullScale
}

// Calculate returns the statistics of signal. dB fields of an empty or
// silent signal are -Inf.
func Calculate(signal []float64) Level {
	n := len(signal)
	if n == 0 {
		return Level{
			PeakDB:        math.Inf(-1),
			RMSDB:         math.Inf(-1),
			CrestFactorDB: math.Inf(-1),
		}
	}

	lv := Level{
		Length: n,
		DC:     vecmath.Sum(signal) / float64(n),
		RMS:    RMS(signal),
	}

	for i, x := range signal {
		a := math.Abs(x)
		if a > lv.Peak {
			lv.Peak, lv.PeakPos = a, i
		}

		if a >= FullScale {
			lv.Clipped++
		}

		if i > 0 && signal[i-1]*x < 0 {
			lv.ZeroCrossings++
		}
	}

	lv.PeakDB = toDB(lv.Peak)
	lv.RMSDB = toDB(lv.RMS)
	lv.CrestFactor = crest(lv.Peak, lv.RMS)
	lv.CrestFactorDB = toDB(lv.CrestFactor)

	return lv
}

// Channels returns the statistics of every channel of buf.
func Channels(buf core.Buffer) []Level {
	out := make([]Level, len(buf.Channels))
	for i, ch := range buf.Channels {
		out[i] = Calculate(ch)
	}

	return out
}

// Loudest returns the index of the level with the highest RMS, or -1 for
// an empty slice.
func Loudest(levels []Level) int {
	idx := -1
	best := -1.0

	for i, lv := range levels {
		if lv.RMS > best {
			idx, best = i, lv.RMS
		}
	}

	return idx
}

// RMS returns the root-mean-square of signal.
func RMS(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}

	return math.Sqrt(vecmath.DotProduct(signal, signal) / float64(len(signal)))
}

// Peak returns the largest absolute sample of signal.
func Peak(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}

	return vecmath.MaxAbs(signal)
}

// CrestFactor returns Peak / RMS, or 0 for silence.
func CrestFactor(signal []float64) float64 {
	return crest(Peak(signal), RMS(signal))
}

func crest(peak, rms float64) float64 {
	if rms == 0 {
		return 0
	}

	return peak / rms
}
