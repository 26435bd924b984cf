package pipeline

import (
	"math"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-upmix/dsp/core"
	"github.com/cwbudde/algo-upmix/dsp/impulse"
	"github.com/cwbudde/algo-upmix/dsp/layout"
	"github.com/cwbudde/algo-upmix/dsp/normalize"
	"github.com/cwbudde/algo-upmix/dsp/upmix"
	"github.com/cwbudde/algo-upmix/internal/testutil"
	"github.com/cwbudde/algo-upmix/measure/loudness"
	"github.com/cwbudde/algo-upmix/measure/truepeak"
)

const fs = 48000

func irPair(rate, n int) impulse.Pair {
	return impulse.Pair{
		Left:  impulse.Response{Samples: testutil.DecayingNoise(11, n, float64(rate), 0.005), SampleRate: rate},
		Right: impulse.Response{Samples: testutil.DecayingNoise(12, n, float64(rate), 0.005), SampleRate: rate},
	}
}

func sineStereo(amp float64, n int) core.Buffer {
	s := testutil.DeterministicSine(440, fs, amp, n)
	return core.Buffer{Channels: [][]float64{s, append([]float64(nil), s...)}, SampleRate: fs}
}

func quietLogger() (*logrus.Entry, *test.Hook) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return logrus.NewEntry(logger), hook
}

func newPipeline(t *testing.T, cfg Config) (*Pipeline, *test.Hook) {
	t.Helper()
	entry, hook := quietLogger()
	p, err := New(cfg, WithLogger(entry))
	require.NoError(t, err)
	return p, hook
}

func TestRunEndToEnd71(t *testing.T) {
	p, _ := newPipeline(t, Config{
		IRs:       irPair(fs, 512),
		Normalize: []normalize.Option{normalize.WithMode(normalize.ModePeak), normalize.WithCeiling(0.891)},
	})

	out, err := p.Run(sineStereo(0.5, fs), "7.1")
	require.NoError(t, err)

	assert.Equal(t, layout.Format71, out.Format)
	assert.False(t, out.Fallback)
	assert.Equal(t, 8, out.Buffer.NumChannels())
	assert.Equal(t, fs, out.Buffer.Len())
	assert.Equal(t, fs, out.Buffer.SampleRate)
	assert.LessOrEqual(t, out.Buffer.Peak(), 0.891*(1+1e-6))

	tp, err := truepeak.Estimate(truepeak.Envelope(out.Buffer.Channels), normalize.DefaultOversample)
	require.NoError(t, err)
	assert.InDelta(t, 0.891, tp, 1e-6)
	assert.Len(t, out.Levels, 8)
}

func TestRun512ChannelOrder(t *testing.T) {
	irs := irPair(fs, 512)
	p, _ := newPipeline(t, Config{IRs: irs})

	stereo := sineStereo(0.5, fs/2)
	out, err := p.Run(stereo, "5.1.2")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Front L", "Front R", "Center", "LFE", "Surround L", "Surround R", "Top Front L", "Top Front R",
	}, out.Format.Labels())

	bed, err := upmix.New().Synthesize(stereo, irs)
	require.NoError(t, err)

	for i, b := range []int{0, 1, 2, 3, 4, 5, 8, 9} {
		for n := 0; n < bed.Len(); n += 101 {
			require.InDelta(t, out.Result.Gain*bed.Channels[b][n], out.Buffer.Channels[i][n], 1e-12,
				"channel %d sample %d", i, n)
		}
	}
}

func TestRunSilenceHasUnitGain(t *testing.T) {
	p, _ := newPipeline(t, Config{IRs: irPair(fs, 256)})

	for _, rate := range []int{fs, 44100} {
		silent := core.NewBuffer(2, rate/4, rate)
		out, err := p.Run(silent, "7.1.4")
		require.NoError(t, err)

		assert.Equal(t, 1.0, out.Result.Gain)
		assert.Equal(t, 0.0, out.Result.Before.TruePeak)
		assert.True(t, out.Buffer.IsSilent())
	}
}

func TestRunIdempotentNormalization(t *testing.T) {
	p, _ := newPipeline(t, Config{IRs: irPair(fs, 512)})

	out, err := p.Run(sineStereo(0.3, fs/2), "7.1.2")
	require.NoError(t, err)

	weights := loudness.DefaultWeights().For(out.Format.Indices())
	again, res, err := p.Normalizer().Normalize(out.Buffer, weights)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, res.Gain, 1e-6)
	assert.InDelta(t, out.Result.After.TruePeak, res.After.TruePeak, 1e-6)
	assert.InDelta(t, out.Buffer.Peak(), again.Peak(), 1e-6)
}

func TestRunUnknownFormatFallsBack(t *testing.T) {
	p, hook := newPipeline(t, Config{IRs: irPair(fs, 256)})

	out, err := p.Run(sineStereo(0.5, fs/4), "22.2")
	require.NoError(t, err)

	assert.Equal(t, layout.FormatFull, out.Format)
	assert.True(t, out.Fallback)
	assert.Equal(t, "22.2", out.Requested)
	assert.Equal(t, layout.BedChannels, out.Buffer.NumChannels())

	found := false
	for _, e := range hook.AllEntries() {
		if e.Message == "Unknown output format, using full bed" {
			found = true
			assert.Equal(t, logrus.InfoLevel, e.Level)
		}
	}
	assert.True(t, found, "fallback not logged")
}

func TestRunResamplesImpulses(t *testing.T) {
	p, hook := newPipeline(t, Config{IRs: irPair(44100, 441)})

	out, err := p.Run(sineStereo(0.5, fs/4), "5.1")
	require.NoError(t, err)
	assert.Equal(t, fs, out.Buffer.SampleRate)
	assert.Equal(t, 6, out.Buffer.NumChannels())

	var msgs []string
	for _, e := range hook.AllEntries() {
		msgs = append(msgs, e.Message)
	}
	assert.Contains(t, msgs, "Resampled impulse responses")
	assert.Contains(t, msgs, "Before normalize")
	assert.Contains(t, msgs, "After normalize")
}

func TestRunLoudnessMode(t *testing.T) {
	p, _ := newPipeline(t, Config{
		IRs: irPair(fs, 512),
		Normalize: []normalize.Option{
			normalize.WithMode(normalize.ModeLoudness),
			normalize.WithTargetLUFS(-16),
		},
	})

	out, err := p.Run(sineStereo(0.05, fs), "7.1.4")
	require.NoError(t, err)

	assert.Equal(t, normalize.ModeLoudness, out.Result.Mode)
	if !out.Result.Clamped {
		assert.InDelta(t, -16, out.Result.After.LoudnessLUFS, 0.05)
	}
	assert.LessOrEqual(t, out.Result.After.TruePeak, normalize.DefaultLoudnessCeiling+1e-9)
}

func TestRunRejectsBadInput(t *testing.T) {
	p, _ := newPipeline(t, Config{IRs: irPair(fs, 64)})

	mono := core.Buffer{Channels: [][]float64{make([]float64, 10)}, SampleRate: fs}
	_, err := p.Run(mono, "5.1")
	require.ErrorIs(t, err, upmix.ErrInvalidInputShape)
}

func TestNewValidates(t *testing.T) {
	_, err := New(Config{})
	require.ErrorIs(t, err, ErrNoImpulse)

	bad := irPair(fs, 64)
	bad.Right.SampleRate = 44100
	_, err = New(Config{IRs: bad})
	require.ErrorIs(t, err, impulse.ErrRateMismatch)

	_, err = New(Config{IRs: irPair(fs, 64), Normalize: []normalize.Option{normalize.WithCeiling(0)}})
	require.ErrorIs(t, err, normalize.ErrInvalidCeiling)
}

func TestCustomWeights(t *testing.T) {
	w := loudness.DefaultWeights()
	for i := range w {
		w[i] = 1
	}
	p, _ := newPipeline(t, Config{
		IRs:       irPair(fs, 256),
		Weights:   &w,
		Normalize: []normalize.Option{normalize.WithMode(normalize.ModeLoudness)},
	})

	out, err := p.Run(sineStereo(0.1, fs), "5.1")
	require.NoError(t, err)
	assert.False(t, math.IsNaN(out.Result.Gain))
}

func TestRunConcurrent(t *testing.T) {
	p, _ := newPipeline(t, Config{IRs: irPair(fs, 256)})
	stereo := sineStereo(0.4, fs/4)

	ref, err := p.Run(stereo, "7.1.4")
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 4)
	outs := make([]Output, 4)
	for i := range outs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outs[i], errs[i] = p.Run(stereo, "7.1.4")
		}(i)
	}
	wg.Wait()

	for i := range outs {
		require.NoError(t, errs[i])
		assert.Equal(t, ref.Buffer.Channels, outs[i].Buffer.Channels)
	}
}
