package pipeline

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-upmix/dsp/core"
	"github.com/cwbudde/algo-upmix/dsp/impulse"
	"github.com/cwbudde/algo-upmix/dsp/layout"
	"github.com/cwbudde/algo-upmix/dsp/normalize"
	"github.com/cwbudde/algo-upmix/dsp/upmix"
	"github.com/cwbudde/algo-upmix/measure/loudness"
	timestats "github.com/cwbudde/algo-upmix/stats/time"
)

// ErrNoImpulse is returned by New when the impulse pair is missing.
var ErrNoImpulse = errors.New("pipeline: impulse response pair is required")

// Config holds the pipeline's read-only inputs.
type Config struct {
	// IRs is the reverb impulse pair. Both sides must share one rate; it
	// is resampled per run when the input rate differs.
	IRs impulse.Pair
	// Weights overrides the loudness weights of the bed channels.
	Weights *loudness.WeightTable
	// Synth configures the channel synthesizer.
	Synth []upmix.Option
	// Normalize configures the gain normalizer.
	Normalize []normalize.Option
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the log entry the pipeline reports through.
func WithLogger(entry *logrus.Entry) Option {
	return func(p *Pipeline) {
		if entry != nil {
			p.log = entry
		}
	}
}

// Output is the result of one run.
type Output struct {
	Buffer    core.Buffer
	Format    layout.Format
	Requested string // format name as given by the caller
	Fallback  bool   // Requested named no supported format
	Result    normalize.Result
	Levels    []timestats.Level
}

// Pipeline renders stereo buffers into immersive formats.
type Pipeline struct {
	irs     impulse.Pair
	weights loudness.WeightTable
	synth   *upmix.Synthesizer
	norm    *normalize.Normalizer
	log     *logrus.Entry
}

// New validates cfg and builds a Pipeline.
func New(cfg Config, opts ...Option) (*Pipeline, error) {
	if cfg.IRs.Left.Len() == 0 && cfg.IRs.Right.Len() == 0 {
		return nil, ErrNoImpulse
	}

	if err := cfg.IRs.Validate(); err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	norm, err := normalize.New(cfg.Normalize...)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	p := &Pipeline{
		irs:     cfg.IRs,
		weights: loudness.DefaultWeights(),
		synth:   upmix.New(cfg.Synth...),
		norm:    norm,
		log:     logrus.NewEntry(logrus.StandardLogger()),
	}

	if cfg.Weights != nil {
		p.weights = *cfg.Weights
	}

	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}

	p.log.WithFields(logrus.Fields{
		"function":           "New",
		"ir_rate":            cfg.IRs.SampleRate(),
		"ir_left":            cfg.IRs.Left.Len(),
		"ir_right":           cfg.IRs.Right.Len(),
		"mode":               norm.Config().Mode.String(),
		"ceiling":            norm.Config().Ceiling,
		"swap_surround_back": p.synth.Options().SwapSurroundBack,
	}).Debug("Pipeline created")

	return p, nil
}

// Normalizer returns the pipeline's normalizer.
func (p *Pipeline) Normalizer() *normalize.Normalizer {
	return p.norm
}

// Run renders stereo into the format named formatName. Unknown names fall
// back to the full 12-channel bed.
func (p *Pipeline) Run(stereo core.Buffer, formatName string) (Output, error) {
	log := p.log.WithFields(logrus.Fields{
		"function": "Run",
		"format":   formatName,
	})

	irs, err := p.impulsesFor(stereo.SampleRate, log)
	if err != nil {
		return Output{}, err
	}

	bed, err := p.synth.Synthesize(stereo, irs)
	if err != nil {
		return Output{}, fmt.Errorf("pipeline: synthesize: %w", err)
	}

	selected, f, ok, err := layout.SelectByName(bed, formatName)
	if err != nil {
		return Output{}, fmt.Errorf("pipeline: select: %w", err)
	}

	if !ok {
		log.WithField("fallback", f.String()).Info("Unknown output format, using full bed")
	}

	weights := p.weights.For(f.Indices())

	out, res, err := p.norm.Normalize(selected, weights)
	if err != nil {
		return Output{}, fmt.Errorf("pipeline: normalize: %w", err)
	}

	log.WithFields(logrus.Fields{
		"loudness":  res.Before.LoudnessLUFS,
		"peak":      res.Before.SamplePeak,
		"true_peak": res.Before.TruePeak,
	}).Info("Before normalize")

	log.WithFields(logrus.Fields{
		"loudness":  res.After.LoudnessLUFS,
		"peak":      res.After.SamplePeak,
		"true_peak": res.After.TruePeak,
		"gain_db":   res.GainDB,
		"clamped":   res.Clamped,
	}).Info("After normalize")

	levels := timestats.Channels(out)
	if p.log.Logger.IsLevelEnabled(logrus.DebugLevel) {
		labels := f.Labels()
		for i, lv := range levels {
			log.WithFields(logrus.Fields{
				"channel": labels[i],
				"peak_db": lv.PeakDB,
				"rms_db":  lv.RMSDB,
				"crest":   lv.CrestFactorDB,
			}).Debug("Channel level")
		}
	}

	return Output{
		Buffer:    out,
		Format:    f,
		Requested: formatName,
		Fallback:  !ok,
		Result:    res,
		Levels:    levels,
	}, nil
}

// impulsesFor returns the impulse pair at rate, resampling a copy when the
// native rate differs.
func (p *Pipeline) impulsesFor(rate int, log *logrus.Entry) (impulse.Pair, error) {
	if rate <= 0 || rate == p.irs.SampleRate() {
		return p.irs, nil
	}

	irs, err := p.irs.Resampled(rate)
	if err != nil {
		return impulse.Pair{}, fmt.Errorf("pipeline: resample impulses: %w", err)
	}

	log.WithFields(logrus.Fields{
		"from": p.irs.SampleRate(),
		"to":   rate,
	}).Debug("Resampled impulse responses")

	return irs, nil
}
