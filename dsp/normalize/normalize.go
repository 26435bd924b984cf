package normalize

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-upmix/dsp/core"
	"github.com/cwbudde/algo-upmix/measure/loudness"
	"github.com/cwbudde/algo-upmix/measure/truepeak"
)

// Errors returned by New and Normalize.
var (
	ErrInvalidCeiling = errors.New("normalize: ceiling must be positive and finite")
	ErrInvalidMode    = errors.New("normalize: unknown mode")
	ErrInvalidTarget  = errors.New("normalize: loudness target must be finite")
)

// Measurement describes a buffer's level.
type Measurement struct {
	// LoudnessLUFS is the integrated loudness of the weighted mix, -Inf
	// when nothing passes the gates.
	LoudnessLUFS float64
	// TruePeak is the oversampled peak of the weighted mix.
	TruePeak float64
	// SamplePeak is the largest absolute sample of the weighted mix.
	SamplePeak float64
}

// Result reports the gain decision.
type Result struct {
	Mode    Mode
	Gain    float64
	GainDB  float64
	Clamped bool // the ceiling lowered the gain
	Before  Measurement
	After   Measurement
}

// Normalizer applies ceiling and loudness normalization.
type Normalizer struct {
	cfg      Config
	analyzer *loudness.Analyzer
}

// New validates the options and returns a Normalizer.
func New(opts ...Option) (*Normalizer, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if !cfg.ceilingSet {
		cfg.Ceiling = DefaultCeilingFor(cfg.Mode)
	}

	if !(cfg.Ceiling > 0) || math.IsInf(cfg.Ceiling, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCeiling, cfg.Ceiling)
	}

	if cfg.Mode != ModePeak && cfg.Mode != ModeLoudness {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMode, cfg.Mode)
	}

	if math.IsNaN(cfg.TargetLUFS) || math.IsInf(cfg.TargetLUFS, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTarget, cfg.TargetLUFS)
	}

	if cfg.Oversample < 1 {
		return nil, fmt.Errorf("normalize: %w: %d", truepeak.ErrInvalidFactor, cfg.Oversample)
	}

	return &Normalizer{cfg: cfg, analyzer: loudness.NewAnalyzer()}, nil
}

// Config returns the effective settings.
func (n *Normalizer) Config() Config {
	return n.cfg
}

// Normalize returns a scaled copy of buf and the gain decision. weights are
// the loudness weights of buf's channels; nil weighs every channel 1.
// The ceiling applies to the channel envelope, see the package doc.
func (n *Normalizer) Normalize(buf core.Buffer, weights []float64) (core.Buffer, Result, error) {
	if err := buf.Validate(); err != nil {
		return core.Buffer{}, Result{}, fmt.Errorf("normalize: %w", err)
	}

	before, err := n.Measure(buf, weights)
	if err != nil {
		return core.Buffer{}, Result{}, err
	}

	envPeak, err := truepeak.Estimate(truepeak.Envelope(buf.Channels), n.cfg.Oversample)
	if err != nil {
		return core.Buffer{}, Result{}, fmt.Errorf("normalize: %w", err)
	}

	res := Result{Mode: n.cfg.Mode, Gain: 1, Before: before}

	switch n.cfg.Mode {
	case ModePeak:
		if envPeak > 0 {
			res.Gain = n.cfg.Ceiling / envPeak
		}
	case ModeLoudness:
		res.Gain, res.Clamped = n.loudnessGain(before)

		if g := res.Gain * envPeak; g > n.cfg.Ceiling {
			res.Gain = n.cfg.Ceiling / envPeak
			res.Clamped = true
		}
	}

	res.GainDB = core.LinearToDB(res.Gain)

	out := buf.Scaled(res.Gain)

	res.After, err = n.Measure(out, weights)
	if err != nil {
		return core.Buffer{}, Result{}, err
	}

	return out, res, nil
}

// loudnessGain solves the target gain limited by the mix true peak.
func (n *Normalizer) loudnessGain(m Measurement) (float64, bool) {
	if m.TruePeak == 0 {
		return 1, false
	}

	gain := math.Inf(1)
	if !math.IsInf(m.LoudnessLUFS, -1) {
		gain = core.DBToLinear(n.cfg.TargetLUFS - m.LoudnessLUFS)
	}

	if gain*m.TruePeak > n.cfg.Ceiling {
		return n.cfg.Ceiling / m.TruePeak, true
	}

	return gain, false
}

// Measure reports loudness and peaks of buf's weighted mix.
func (n *Normalizer) Measure(buf core.Buffer, weights []float64) (Measurement, error) {
	sr := float64(buf.SampleRate)

	mix, err := n.analyzer.WeightedMix(buf.Channels, weights, sr)
	if err != nil {
		return Measurement{}, fmt.Errorf("normalize: %w", err)
	}

	tp, err := truepeak.Estimate(mix, n.cfg.Oversample)
	if err != nil {
		return Measurement{}, fmt.Errorf("normalize: %w", err)
	}

	sp, err := truepeak.Estimate(mix, 1)
	if err != nil {
		return Measurement{}, fmt.Errorf("normalize: %w", err)
	}

	return Measurement{
		LoudnessLUFS: loudness.IntegratedMono(mix, sr),
		TruePeak:     tp,
		SamplePeak:   sp,
	}, nil
}
