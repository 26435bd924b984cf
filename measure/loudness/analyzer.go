package loudness

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-upmix/dsp/filter/weighting"
	"github.com/cwbudde/algo-vecmath"
)

// Errors returned by Analyzer.
var (
	ErrNoChannels        = errors.New("loudness: no channels")
	ErrRaggedChannels    = errors.New("loudness: channels differ in length")
	ErrWeightCount       = errors.New("loudness: weight count does not match channel count")
	ErrInvalidSampleRate = errors.New("loudness: sample rate must be positive")
)

// Analyzer measures the integrated loudness of a weighted channel mix.
type Analyzer struct {
	bandLimit bool
}

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*Analyzer)

// WithBandLimit enables or disables the 50 Hz to 15 kHz band limit applied
// to each channel before summing. It is enabled by default.
func WithBandLimit(on bool) AnalyzerOption {
	return func(a *Analyzer) { a.bandLimit = on }
}

// NewAnalyzer returns an Analyzer.
func NewAnalyzer(opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{bandLimit: true}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}

	return a
}

// WeightedMix scales every channel by its weight, band-limits it and sums
// the results into one signal. A nil weights slice weighs every channel 1.
func (a *Analyzer) WeightedMix(channels [][]float64, weights []float64, sampleRate float64) ([]float64, error) {
	if err := checkInput(channels, weights, sampleRate); err != nil {
		return nil, err
	}

	mix := make([]float64, len(channels[0]))
	tmp := make([]float64, len(mix))

	for c, ch := range channels {
		w := 1.0
		if weights != nil {
			w = weights[c]
		}

		vecmath.ScaleBlock(tmp, ch, w)

		if a.bandLimit {
			weighting.New(weighting.TypeBand, sampleRate).ProcessBlock(tmp)
		}

		vecmath.AddBlockInPlace(mix, tmp)
	}

	return mix, nil
}

// Integrated returns the gated loudness of the weighted mix in LUFS, or
// -Inf for input shorter than one 400 ms block or gated silence.
func (a *Analyzer) Integrated(channels [][]float64, weights []float64, sampleRate float64) (float64, error) {
	mix, err := a.WeightedMix(channels, weights, sampleRate)
	if err != nil {
		return math.Inf(-1), err
	}

	return IntegratedMono(mix, sampleRate), nil
}

// IntegratedMono meters a single signal.
func IntegratedMono(signal []float64, sampleRate float64) float64 {
	m := NewMeter(WithSampleRate(sampleRate), WithChannels(1))
	m.StartIntegration()
	m.ProcessBlock(signal)

	return m.Integrated()
}

func checkInput(channels [][]float64, weights []float64, sampleRate float64) error {
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidSampleRate, sampleRate)
	}

	if len(channels) == 0 {
		return ErrNoChannels
	}

	if weights != nil && len(weights) != len(channels) {
		return fmt.Errorf("%w: %d weights, %d channels", ErrWeightCount, len(weights), len(channels))
	}

	n := len(channels[0])
	for i, ch := range channels {
		if len(ch) != n {
			return fmt.Errorf("%w: channel %d has %d samples, want %d", ErrRaggedChannels, i, len(ch), n)
		}
	}

	return nil
}
