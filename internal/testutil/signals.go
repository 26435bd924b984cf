package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine generates a deterministic sine wave.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// Impulse generates a unit impulse at the given position.
func Impulse(length, pos int) []float64 {
	out := make([]float64, length)
	if pos >= 0 && pos < length {
		out[pos] = 1
	}
	return out
}

// DC generates a constant-valued signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}

// Ones returns a slice of length n filled with 1.0.
func Ones(n int) []float64 {
	return DC(1.0, n)
}

// DecayingNoise generates a noise burst with an exponential envelope that
// falls by 60 dB after rt60 seconds, a stand-in for a room impulse response.
func DecayingNoise(seed int64, length int, sampleRate, rt60 float64) []float64 {
	out := DeterministicNoise(seed, 1, length)
	if rt60 <= 0 || sampleRate <= 0 {
		return out
	}
	// ln(1000) gives -60 dB at t = rt60.
	k := math.Log(1000) / (rt60 * sampleRate)
	for i := range out {
		out[i] *= math.Exp(-k * float64(i))
	}
	return out
}
