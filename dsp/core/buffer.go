package core

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-vecmath"
)

// Errors returned by Buffer validation.
var (
	ErrNoChannels        = errors.New("core: buffer has no channels")
	ErrRaggedChannels    = errors.New("core: channels differ in length")
	ErrInvalidSampleRate = errors.New("core: sample rate must be positive")
)

// Buffer is a planar multichannel signal.
type Buffer struct {
	Channels   [][]float64
	SampleRate int
}

// NewBuffer returns a zero-filled buffer with numChannels channels of
// length samples each.
func NewBuffer(numChannels, length, sampleRate int) Buffer {
	if numChannels < 0 {
		numChannels = 0
	}
	if length < 0 {
		length = 0
	}

	chans := make([][]float64, numChannels)
	for i := range chans {
		chans[i] = make([]float64, length)
	}

	return Buffer{Channels: chans, SampleRate: sampleRate}
}

// FromChannels wraps existing channel slices without copying and validates
// the result.
func FromChannels(sampleRate int, channels ...[]float64) (Buffer, error) {
	b := Buffer{Channels: channels, SampleRate: sampleRate}
	if err := b.Validate(); err != nil {
		return Buffer{}, err
	}

	return b, nil
}

// Validate checks the buffer invariants: a positive sample rate, at least
// one channel and equal channel lengths.
func (b Buffer) Validate() error {
	if b.SampleRate <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidSampleRate, b.SampleRate)
	}

	if len(b.Channels) == 0 {
		return ErrNoChannels
	}

	n := len(b.Channels[0])
	for i, ch := range b.Channels[1:] {
		if len(ch) != n {
			return fmt.Errorf("%w: channel %d has %d samples, channel 0 has %d",
				ErrRaggedChannels, i+1, len(ch), n)
		}
	}

	return nil
}

// NumChannels returns the channel count.
func (b Buffer) NumChannels() int {
	return len(b.Channels)
}

// Len returns the per-channel length in samples.
func (b Buffer) Len() int {
	if len(b.Channels) == 0 {
		return 0
	}

	return len(b.Channels[0])
}

// Duration returns the buffer length in seconds.
func (b Buffer) Duration() float64 {
	if b.SampleRate <= 0 {
		return 0
	}

	return float64(b.Len()) / float64(b.SampleRate)
}

// Clone returns a deep copy.
func (b Buffer) Clone() Buffer {
	out := Buffer{
		Channels:   make([][]float64, len(b.Channels)),
		SampleRate: b.SampleRate,
	}

	for i, ch := range b.Channels {
		out.Channels[i] = append([]float64(nil), ch...)
	}

	return out
}

// Scaled returns a copy with every channel multiplied by gain.
// The receiver is left untouched.
func (b Buffer) Scaled(gain float64) Buffer {
	out := Buffer{
		Channels:   make([][]float64, len(b.Channels)),
		SampleRate: b.SampleRate,
	}

	for i, ch := range b.Channels {
		dst := make([]float64, len(ch))
		vecmath.ScaleBlock(dst, ch, gain)
		out.Channels[i] = dst
	}

	return out
}

// Peak returns the largest absolute sample value across all channels.
func (b Buffer) Peak() float64 {
	var peak float64

	for _, ch := range b.Channels {
		if len(ch) == 0 {
			continue
		}

		if p := vecmath.MaxAbs(ch); p > peak {
			peak = p
		}
	}

	return peak
}

// IsSilent reports whether every sample is exactly zero.
func (b Buffer) IsSilent() bool {
	return b.Peak() == 0
}
