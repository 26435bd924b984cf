package ir

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-upmix/dsp/impulse"
	"github.com/cwbudde/algo-vecmath"
)

// Errors returned by the analyzer.
var (
	ErrEmptyIR           = errors.New("ir: impulse response is empty")
	ErrInvalidSampleRate = errors.New("ir: sample rate must be positive")
	ErrNoDecay           = errors.New("ir: insufficient decay for RT calculation")
)

// onsetRatio marks the onset at -20 dB below the peak.
const onsetRatio = 0.1

// schroederFloorDB replaces log(0) on the decay curve.
const schroederFloorDB = -200

// Metrics describes one impulse response.
type Metrics struct {
	Length    int
	Duration  float64 // seconds
	Energy    float64 // sum of squared samples
	Peak      float64 // absolute maximum
	PeakIndex int
	PreDelay  float64 // seconds before the onset
	RT60      float64 // 0 when the response does not decay far enough
	EDT       float64
	C80       float64 // dB
}

// Analyzer computes Metrics at a fixed sample rate.
type Analyzer struct {
	sampleRate float64
}

// NewAnalyzer returns an analyzer for responses sampled at sampleRate.
func NewAnalyzer(sampleRate float64) *Analyzer {
	return &Analyzer{sampleRate: sampleRate}
}

// SampleRate returns the analyzer's sample rate.
func (a *Analyzer) SampleRate() float64 {
	return a.sampleRate
}

// Analyze computes the metrics of ir. Decay metrics are measured from the
// peak onwards.
func (a *Analyzer) Analyze(ir []float64) (Metrics, error) {
	if err := a.check(ir); err != nil {
		return Metrics{}, err
	}

	peakIdx := findPeak(ir)
	tail := ir[peakIdx:]
	curve := schroeder(tail)

	m := Metrics{
		Length:    len(ir),
		Duration:  float64(len(ir)) / a.sampleRate,
		Energy:    vecmath.DotProduct(ir, ir),
		Peak:      math.Abs(ir[peakIdx]),
		PeakIndex: peakIdx,
		PreDelay:  float64(findOnset(ir, onsetRatio)) / a.sampleRate,
		EDT:       a.decayTime(curve, 0, -10),
		C80:       a.clarity(tail, 80),
	}

	m.RT60 = a.decayTime(curve, -5, -35)
	if m.RT60 == 0 {
		m.RT60 = a.decayTime(curve, -5, -25)
	}

	return m, nil
}

// AnalyzeResponse analyzes r at its own sample rate.
func AnalyzeResponse(r impulse.Response) (Metrics, error) {
	if err := r.Validate(); err != nil {
		return Metrics{}, fmt.Errorf("ir: %w", err)
	}

	return NewAnalyzer(float64(r.SampleRate)).Analyze(r.Samples)
}

// AnalyzePair analyzes both sides of p.
func AnalyzePair(p impulse.Pair) (left, right Metrics, err error) {
	left, err = AnalyzeResponse(p.Left)
	if err != nil {
		return Metrics{}, Metrics{}, fmt.Errorf("left: %w", err)
	}

	right, err = AnalyzeResponse(p.Right)
	if err != nil {
		return Metrics{}, Metrics{}, fmt.Errorf("right: %w", err)
	}

	return left, right, nil
}

// SchroederIntegral returns the normalized backward-integrated energy decay
// of ir in dB. The first value is 0 dB for any non-silent response.
func (a *Analyzer) SchroederIntegral(ir []float64) ([]float64, error) {
	if len(ir) == 0 {
		return nil, ErrEmptyIR
	}

	return schroeder(ir), nil
}

// RT60 returns the reverberation time of ir measured from its first sample.
func (a *Analyzer) RT60(ir []float64) (float64, error) {
	if err := a.check(ir); err != nil {
		return 0, err
	}

	curve := schroeder(ir)

	if rt := a.decayTime(curve, -5, -35); rt > 0 {
		return rt, nil
	}

	if rt := a.decayTime(curve, -5, -25); rt > 0 {
		return rt, nil
	}

	return 0, ErrNoDecay
}

func (a *Analyzer) check(ir []float64) error {
	if len(ir) == 0 {
		return ErrEmptyIR
	}

	if !(a.sampleRate > 0) {
		return fmt.Errorf("%w: %v", ErrInvalidSampleRate, a.sampleRate)
	}

	return nil
}

func schroeder(ir []float64) []float64 {
	curve := make([]float64, len(ir))

	var acc float64
	for i := len(ir) - 1; i >= 0; i-- {
		acc += ir[i] * ir[i]
		curve[i] = acc
	}

	total := curve[0]
	if total <= 0 {
		return curve
	}

	for i, v := range curve {
		if v <= 0 {
			curve[i] = schroederFloorDB
			continue
		}

		curve[i] = 10 * math.Log10(v/total)
	}

	return curve
}

// decayTime fits a line to the curve between startDB and endDB and
// extrapolates it to -60 dB. It returns 0 when the range is not reached.
func (a *Analyzer) decayTime(curve []float64, startDB, endDB float64) float64 {
	first, last := -1, -1

	for i, v := range curve {
		if first < 0 && v <= startDB {
			first = i
		}

		if first >= 0 && v <= endDB {
			last = i
			break
		}
	}

	if first < 0 || last <= first {
		return 0
	}

	var sumX, sumY, sumXX, sumXY float64

	for i := first; i <= last; i++ {
		x := float64(i - first)
		sumX += x
		sumY += curve[i]
		sumXX += x * x
		sumXY += x * curve[i]
	}

	n := float64(last - first + 1)

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}

	slope := (n*sumXY - sumX*sumY) / denom // dB per sample
	if slope >= 0 {
		return 0
	}

	return -60 / (slope * a.sampleRate)
}

func (a *Analyzer) clarity(ir []float64, ms float64) float64 {
	boundary := int(math.Round(ms * 0.001 * a.sampleRate))
	if boundary <= 0 {
		return math.Inf(-1)
	}

	if boundary >= len(ir) {
		return math.Inf(1)
	}

	early := vecmath.DotProduct(ir[:boundary], ir[:boundary])
	late := vecmath.DotProduct(ir[boundary:], ir[boundary:])

	switch {
	case late <= 0:
		return math.Inf(1)
	case early <= 0:
		return math.Inf(-1)
	}

	return 10 * math.Log10(early/late)
}

func findPeak(ir []float64) int {
	idx, peak := 0, 0.0

	for i, v := range ir {
		if av := math.Abs(v); av > peak {
			peak, idx = av, i
		}
	}

	return idx
}

// findOnset returns the first index at or above ratio times the peak.
func findOnset(ir []float64, ratio float64) int {
	threshold := vecmath.MaxAbs(ir) * ratio
	if threshold == 0 {
		return 0
	}

	for i, v := range ir {
		if math.Abs(v) >= threshold {
			return i
		}
	}

	return 0
}
