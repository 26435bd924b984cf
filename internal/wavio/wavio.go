// Package wavio converts between PCM WAV files and core.Buffer.
package wavio

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cwbudde/algo-upmix/dsp/core"
)

// WAV format tags accepted by Decode.
const (
	formatPCM        = 1
	formatExtensible = 0xFFFE
)

// DefaultBitDepth is the output bit depth used when none is configured.
const DefaultBitDepth = 24

// Errors returned by the decoder and encoder.
var (
	ErrInvalidFile      = errors.New("wavio: not a readable WAV file")
	ErrUnsupported      = errors.New("wavio: unsupported sample format")
	ErrNotStereo        = errors.New("wavio: input must be stereo")
	ErrInvalidBitDepth  = errors.New("wavio: bit depth must be 16, 24 or 32")
	ErrEmptyBufferWrite = errors.New("wavio: nothing to encode")
)

// Info describes the decoded stream.
type Info struct {
	SampleRate int
	Channels   int
	BitDepth   int
	Frames     int
}

// Decode reads a PCM WAV stream into a planar buffer with samples in
// [-1, 1).
func Decode(r io.ReadSeeker) (core.Buffer, Info, error) {
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		if err := d.Err(); err != nil {
			return core.Buffer{}, Info{}, fmt.Errorf("%w: %w", ErrInvalidFile, err)
		}

		return core.Buffer{}, Info{}, ErrInvalidFile
	}

	if d.WavAudioFormat != formatPCM && d.WavAudioFormat != formatExtensible {
		return core.Buffer{}, Info{}, fmt.Errorf("%w: format tag %d", ErrUnsupported, d.WavAudioFormat)
	}

	pcm, err := d.FullPCMBuffer()
	if err != nil {
		return core.Buffer{}, Info{}, fmt.Errorf("wavio: read pcm: %w", err)
	}

	info := Info{
		SampleRate: pcm.Format.SampleRate,
		Channels:   pcm.Format.NumChannels,
		BitDepth:   pcm.SourceBitDepth,
	}

	if info.Channels < 1 {
		return core.Buffer{}, Info{}, ErrInvalidFile
	}

	info.Frames = len(pcm.Data) / info.Channels

	scale, offset := pcmScale(info.BitDepth)

	buf := core.NewBuffer(info.Channels, info.Frames, info.SampleRate)
	for i := 0; i < info.Frames; i++ {
		for c := range buf.Channels {
			buf.Channels[c][i] = float64(pcm.Data[i*info.Channels+c]-offset) / scale
		}
	}

	return buf, info, nil
}

// DecodeStereo decodes r and rejects anything but two channels.
func DecodeStereo(r io.ReadSeeker) (core.Buffer, Info, error) {
	buf, info, err := Decode(r)
	if err != nil {
		return core.Buffer{}, Info{}, err
	}

	if info.Channels != 2 {
		return core.Buffer{}, Info{}, fmt.Errorf("%w: got %d channels", ErrNotStereo, info.Channels)
	}

	return buf, info, nil
}

// DecodeMono decodes r and averages its channels into one.
func DecodeMono(r io.ReadSeeker) ([]float64, Info, error) {
	buf, info, err := Decode(r)
	if err != nil {
		return nil, Info{}, err
	}

	if info.Channels == 1 {
		return buf.Channels[0], info, nil
	}

	mono := make([]float64, info.Frames)
	for _, ch := range buf.Channels {
		for i, v := range ch {
			mono[i] += v
		}
	}

	inv := 1 / float64(info.Channels)
	for i := range mono {
		mono[i] *= inv
	}

	return mono, info, nil
}

// Encode writes buf as interleaved PCM at bitDepth. Samples are clipped
// to [-1, 1].
func Encode(w io.WriteSeeker, buf core.Buffer, bitDepth int) error {
	if err := buf.Validate(); err != nil {
		return fmt.Errorf("wavio: %w", err)
	}

	if bitDepth != 16 && bitDepth != 24 && bitDepth != 32 {
		return fmt.Errorf("%w: %d", ErrInvalidBitDepth, bitDepth)
	}

	frames, chans := buf.Len(), buf.NumChannels()
	if frames == 0 {
		return ErrEmptyBufferWrite
	}

	full := float64(int64(1)<<(bitDepth-1) - 1)

	data := make([]int, frames*chans)
	for c, ch := range buf.Channels {
		for i, v := range ch {
			data[i*chans+c] = int(math.Round(core.Clamp(v, -1, 1) * full))
		}
	}

	enc := wav.NewEncoder(w, buf.SampleRate, bitDepth, chans, formatPCM)

	err := enc.Write(&audio.IntBuffer{
		Format:         &audio.Format{NumChannels: chans, SampleRate: buf.SampleRate},
		Data:           data,
		SourceBitDepth: bitDepth,
	})
	if err != nil {
		return fmt.Errorf("wavio: write: %w", err)
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("wavio: close: %w", err)
	}

	return nil
}

// ReadFile decodes the WAV file at path.
func ReadFile(path string) (core.Buffer, Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return core.Buffer{}, Info{}, err
	}
	defer f.Close()

	return Decode(f)
}

// ReadStereoFile decodes the WAV file at path and requires two channels.
func ReadStereoFile(path string) (core.Buffer, Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return core.Buffer{}, Info{}, err
	}
	defer f.Close()

	return DecodeStereo(f)
}

// ReadMonoFile decodes the WAV file at path into a single channel.
func ReadMonoFile(path string) ([]float64, Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Info{}, err
	}
	defer f.Close()

	return DecodeMono(f)
}

// WriteFile encodes buf into a new file at path.
func WriteFile(path string, buf core.Buffer, bitDepth int) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	return Encode(f, buf, bitDepth)
}

// pcmScale returns the divisor and zero offset of integer PCM samples.
// 8-bit WAV is unsigned.
func pcmScale(bitDepth int) (scale float64, offset int) {
	if bitDepth == 8 {
		return 128, 128
	}

	return float64(int64(1) << (bitDepth - 1)), 0
}
