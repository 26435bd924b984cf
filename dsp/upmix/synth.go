package upmix

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-upmix/dsp/core"
	"github.com/cwbudde/algo-upmix/dsp/effects/reverb"
	"github.com/cwbudde/algo-upmix/dsp/filter/bank"
	"github.com/cwbudde/algo-upmix/dsp/impulse"
	"github.com/cwbudde/algo-vecmath"
)

// Errors returned by Synthesize.
var (
	ErrInvalidInputShape  = errors.New("upmix: input must have exactly 2 channels")
	ErrSampleRateMismatch = errors.New("upmix: impulse response rate differs from input rate")
)

// Bed positions exchanged by the surround/back swap.
var swapPairs = [][2]int{{4, 6}, {5, 7}}

// Options configures a Synthesizer.
type Options struct {
	// SwapSurroundBack exchanges bed channels 4,5 with 6,7.
	SwapSurroundBack bool
}

// Option mutates Options.
type Option func(*Options)

// WithSwapSurroundBack enables or disables the surround/back swap.
func WithSwapSurroundBack(on bool) Option {
	return func(o *Options) { o.SwapSurroundBack = on }
}

// Synthesizer builds immersive beds from stereo input.
type Synthesizer struct {
	opts Options
}

// New returns a Synthesizer. By default the canonical ordering is kept.
func New(opts ...Option) *Synthesizer {
	s := &Synthesizer{}
	for _, opt := range opts {
		if opt != nil {
			opt(&s.opts)
		}
	}

	return s
}

// Options returns the synthesizer configuration.
func (s *Synthesizer) Options() Options {
	return s.opts
}

// Synthesize derives the 12-channel bed from a 2-channel buffer. The impulse
// pair must already be at the input sample rate. The output has the input's
// length and sample rate.
func (s *Synthesizer) Synthesize(stereo core.Buffer, irs impulse.Pair) (core.Buffer, error) {
	if err := stereo.Validate(); err != nil {
		return core.Buffer{}, fmt.Errorf("upmix: %w", err)
	}

	if stereo.NumChannels() != 2 {
		return core.Buffer{}, fmt.Errorf("%w: got %d", ErrInvalidInputShape, stereo.NumChannels())
	}

	if err := irs.Validate(); err != nil {
		return core.Buffer{}, fmt.Errorf("upmix: impulse pair: %w", err)
	}

	if irs.SampleRate() != stereo.SampleRate {
		return core.Buffer{}, fmt.Errorf("%w: %d Hz vs %d Hz",
			ErrSampleRateMismatch, irs.SampleRate(), stereo.SampleRate)
	}

	left, right := stereo.Channels[0], stereo.Channels[1]

	mid := make([]float64, len(left))
	vecmath.AddMulBlock(mid, left, right, 0.5)

	sources := map[Source][]float64{
		SourceLeft:  left,
		SourceRight: right,
		SourceMid:   mid,
	}

	// One convolver per side and call keeps the shared pair read-only.
	leftVerb, err := reverb.NewConvolution(irs.Left.Samples, ReverbWet)
	if err != nil {
		return core.Buffer{}, fmt.Errorf("upmix: left reverb: %w", err)
	}

	rightVerb, err := reverb.NewConvolution(irs.Right.Samples, ReverbWet)
	if err != nil {
		return core.Buffer{}, fmt.Errorf("upmix: right reverb: %w", err)
	}

	verbs := map[Side]*reverb.Convolution{
		SideLeft:  leftVerb,
		SideRight: rightVerb,
	}

	sr := float64(stereo.SampleRate)
	bed := core.Buffer{
		Channels:   make([][]float64, BedChannels),
		SampleRate: stereo.SampleRate,
	}

	for i, ch := range recipe {
		sig := sources[ch.Source]

		if ch.Filter.Enabled() {
			sig, err = bank.Apply(sig, sr, ch.Filter.CutoffHz, ch.Filter.Kind)
			if err != nil {
				return core.Buffer{}, fmt.Errorf("upmix: %s: %w", ch.Label, err)
			}
		}

		if v, ok := verbs[ch.Reverb]; ok {
			sig, err = v.Process(sig)
			if err != nil {
				return core.Buffer{}, fmt.Errorf("upmix: %s: %w", ch.Label, err)
			}
		}

		out := make([]float64, len(sig))
		vecmath.ScaleBlock(out, sig, ch.Gain)
		bed.Channels[i] = out
	}

	if s.opts.SwapSurroundBack {
		for _, p := range swapPairs {
			bed.Channels[p[0]], bed.Channels[p[1]] = bed.Channels[p[1]], bed.Channels[p[0]]
		}
	}

	return bed, nil
}
