package loudness

import (
	"math"

	"github.com/cwbudde/algo-upmix/dsp/filter/biquad"
	"github.com/cwbudde/algo-upmix/dsp/filter/weighting"
)

const (
	// Integration window durations in seconds.
	momentaryDuration = 0.4
	shortTermDuration = 3.0

	// Gating parameters.
	absThreshold  = -70.0
	relThreshold  = -10.0
	blockOverlap  = 0.75
	stepsPerBlock = 4 // 1 / (1 - blockOverlap)
)

// Meter implements EBU R128 / ITU-R BS.1770 loudness metering.
type Meter struct {
	sampleRate float64
	channels   int
	weights    []float64

	kFilters []*biquad.Chain

	// Sliding windows of weighted squares, summed over channels.
	momWindowSamples   int
	shortWindowSamples int
	momHistory         []float64
	shortHistory       []float64
	momWriteIdx        int
	shortWriteIdx      int
	momRunningSum      float64
	shortRunningSum    float64

	// Gating: energies of the last stepsPerBlock sub-blocks of stepSamples.
	integrationRunning bool
	stepSamples        int
	stepEnergy         float64
	samplesSinceStep   int
	recentSteps        [stepsPerBlock]float64
	completedSteps     int
	blocks             []float64 // mean square per gating block

	peaks []float64
}

// NewMeter creates a new loudness meter with the given options.
func NewMeter(opts ...MeterOption) *Meter {
	cfg := ApplyMeterOptions(opts...)

	m := &Meter{
		sampleRate: cfg.SampleRate,
		channels:   cfg.Channels,
		weights:    make([]float64, cfg.Channels),
	}

	for i := range m.weights {
		m.weights[i] = 1
		if i < len(cfg.Weights) {
			m.weights[i] = cfg.Weights[i]
		}
	}

	m.reconfigure()

	return m
}

func (m *Meter) reconfigure() {
	m.kFilters = make([]*biquad.Chain, m.channels)
	for i := range m.channels {
		m.kFilters[i] = weighting.New(weighting.TypeK, m.sampleRate)
	}

	m.momWindowSamples = max(int(math.Round(momentaryDuration*m.sampleRate)), 1)
	m.shortWindowSamples = max(int(math.Round(shortTermDuration*m.sampleRate)), 1)
	m.momHistory = make([]float64, m.momWindowSamples)
	m.shortHistory = make([]float64, m.shortWindowSamples)

	m.stepSamples = max(int(math.Round(momentaryDuration*(1-blockOverlap)*m.sampleRate)), 1)

	m.peaks = make([]float64, m.channels)

	m.Reset()
}

// Reset clears all integration state and peak values.
func (m *Meter) Reset() {
	for i := range m.channels {
		m.kFilters[i].Reset()
		m.peaks[i] = 0
	}

	clear(m.momHistory)
	clear(m.shortHistory)
	clear(m.recentSteps[:])

	m.momWriteIdx = 0
	m.shortWriteIdx = 0
	m.momRunningSum = 0
	m.shortRunningSum = 0
	m.stepEnergy = 0
	m.samplesSinceStep = 0
	m.completedSteps = 0
	m.blocks = nil
}

// StartIntegration starts accumulating blocks for integrated loudness.
func (m *Meter) StartIntegration() {
	m.integrationRunning = true
}

// StopIntegration stops accumulating blocks for integrated loudness.
func (m *Meter) StopIntegration() {
	m.integrationRunning = false
}

// ProcessSample processes a single multi-channel sample (frame).
func (m *Meter) ProcessSample(samples []float64) {
	if len(samples) < m.channels {
		return
	}

	sq := 0.0

	for i := range m.channels {
		if a := math.Abs(samples[i]); a > m.peaks[i] {
			m.peaks[i] = a
		}

		v := m.kFilters[i].ProcessSample(samples[i])
		sq += m.weights[i] * v * v
	}

	m.momRunningSum += sq - m.momHistory[m.momWriteIdx]
	m.momHistory[m.momWriteIdx] = sq
	m.momRunningSum = max(m.momRunningSum, 0)
	m.momWriteIdx = (m.momWriteIdx + 1) % m.momWindowSamples

	m.shortRunningSum += sq - m.shortHistory[m.shortWriteIdx]
	m.shortHistory[m.shortWriteIdx] = sq
	m.shortRunningSum = max(m.shortRunningSum, 0)
	m.shortWriteIdx = (m.shortWriteIdx + 1) % m.shortWindowSamples

	if !m.integrationRunning {
		return
	}

	m.stepEnergy += sq
	m.samplesSinceStep++

	if m.samplesSinceStep < m.stepSamples {
		return
	}

	m.recentSteps[m.completedSteps%stepsPerBlock] = m.stepEnergy
	m.completedSteps++
	m.stepEnergy = 0
	m.samplesSinceStep = 0

	if m.completedSteps >= stepsPerBlock {
		sum := 0.0
		for _, e := range m.recentSteps {
			sum += e
		}

		m.blocks = append(m.blocks, sum/float64(stepsPerBlock*m.stepSamples))
	}
}

// ProcessBlock processes a block of interleaved samples.
func (m *Meter) ProcessBlock(block []float64) {
	for i := 0; i+m.channels <= len(block); i += m.channels {
		m.ProcessSample(block[i : i+m.channels])
	}
}

// ProcessChannels processes planar channels of equal length.
func (m *Meter) ProcessChannels(channels [][]float64) {
	if len(channels) < m.channels {
		return
	}

	n := len(channels[0])
	for _, ch := range channels[1:m.channels] {
		n = min(n, len(ch))
	}

	frame := make([]float64, m.channels)
	for t := range n {
		for c := range frame {
			frame[c] = channels[c][t]
		}

		m.ProcessSample(frame)
	}
}

// Momentary returns the current momentary loudness in LUFS.
func (m *Meter) Momentary() float64 {
	return toLUFS(m.momRunningSum / float64(m.momWindowSamples))
}

// ShortTerm returns the current short-term loudness in LUFS.
func (m *Meter) ShortTerm() float64 {
	return toLUFS(m.shortRunningSum / float64(m.shortWindowSamples))
}

// Blocks returns the number of complete gating blocks.
func (m *Meter) Blocks() int {
	return len(m.blocks)
}

// Integrated returns the gated integrated loudness in LUFS since
// StartIntegration.
func (m *Meter) Integrated() float64 {
	return gatedLoudness(m.blocks)
}

func gatedLoudness(blocks []float64) float64 {
	var (
		absSum   float64
		absCount int
	)

	for _, b := range blocks {
		if toLUFS(b) > absThreshold {
			absSum += b
			absCount++
		}
	}

	if absCount == 0 {
		return math.Inf(-1)
	}

	gammaRel := toLUFS(absSum/float64(absCount)) + relThreshold

	var (
		relSum   float64
		relCount int
	)

	for _, b := range blocks {
		if l := toLUFS(b); l > absThreshold && l > gammaRel {
			relSum += b
			relCount++
		}
	}

	if relCount == 0 {
		return math.Inf(-1)
	}

	return toLUFS(relSum / float64(relCount))
}

// Peaks returns the maximum absolute sample value per channel since Reset.
func (m *Meter) Peaks() []float64 {
	return append([]float64(nil), m.peaks...)
}

func toLUFS(meanSquare float64) float64 {
	if meanSquare <= 0 {
		return math.Inf(-1)
	}

	return -0.691 + 10.0*math.Log10(meanSquare)
}
