// Package irload reads the reverb impulse pair from disk.
package irload

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-upmix/dsp/impulse"
	"github.com/cwbudde/algo-upmix/internal/wavio"
	"github.com/cwbudde/algo-upmix/measure/ir"
)

// Load decodes both impulse files as mono, converts the right response to
// the left response's rate and logs their diagnostics.
func Load(leftPath, rightPath string, log *logrus.Entry) (impulse.Pair, error) {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	log = log.WithField("function", "irload.Load")

	left, err := read(leftPath)
	if err != nil {
		return impulse.Pair{}, err
	}

	right, err := read(rightPath)
	if err != nil {
		return impulse.Pair{}, err
	}

	pair, err := impulse.Pair{Left: left, Right: right}.Aligned()
	if err != nil {
		return impulse.Pair{}, fmt.Errorf("irload: %w", err)
	}

	if right.SampleRate != left.SampleRate {
		log.WithFields(logrus.Fields{
			"from": right.SampleRate,
			"to":   left.SampleRate,
		}).Info("Resampled right impulse response")
	}

	lm, rm, err := ir.AnalyzePair(pair)
	if err != nil {
		return impulse.Pair{}, fmt.Errorf("irload: %w", err)
	}

	for side, m := range map[string]ir.Metrics{"left": lm, "right": rm} {
		log.WithFields(logrus.Fields{
			"side":       side,
			"length":     m.Length,
			"rt60":       m.RT60,
			"edt":        m.EDT,
			"c80":        m.C80,
			"energy":     m.Energy,
			"peak_index": m.PeakIndex,
			"pre_delay":  m.PreDelay,
		}).Info("Loaded impulse response")
	}

	return pair, nil
}

func read(path string) (impulse.Response, error) {
	samples, info, err := wavio.ReadMonoFile(path)
	if err != nil {
		return impulse.Response{}, fmt.Errorf("irload: %s: %w", path, err)
	}

	r := impulse.Response{Samples: samples, SampleRate: info.SampleRate}
	if err := r.Validate(); err != nil {
		return impulse.Response{}, fmt.Errorf("irload: %s: %w", path, err)
	}

	return r, nil
}
