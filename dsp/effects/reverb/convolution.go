package reverb

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-upmix/dsp/conv"
	"github.com/cwbudde/algo-vecmath"
)

// directThreshold is the longest impulse response convolved in the time domain.
const directThreshold = 64

// Errors returned by the convolution reverb.
var (
	ErrInvalidWetRatio = errors.New("reverb: wet ratio must lie in [0, 1]")
	ErrEmptyImpulse    = errors.New("reverb: empty impulse response")
)

// Convolution applies one impulse response to whole signals.
//
// The kernel spectrum is computed once in NewConvolution. A Convolution
// keeps FFT scratch buffers and is not safe for concurrent use.
type Convolution struct {
	ir  []float64
	ola *conv.OverlapAdd
	wet float64
}

// NewConvolution creates a reverb for ir mixed at the given wet ratio.
// The ir slice is retained and must not be modified afterwards.
func NewConvolution(ir []float64, wet float64) (*Convolution, error) {
	if err := validateWet(wet); err != nil {
		return nil, err
	}

	if len(ir) == 0 {
		return nil, ErrEmptyImpulse
	}

	c := &Convolution{ir: ir, wet: wet}

	if len(ir) > directThreshold {
		ola, err := conv.NewOverlapAdd(ir, 0)
		if err != nil {
			return nil, fmt.Errorf("reverb: failed to create convolution engine: %w", err)
		}

		c.ola = ola
	}

	return c, nil
}

// Wet returns the wet ratio.
func (c *Convolution) Wet() float64 {
	return c.wet
}

// ImpulseLen returns the impulse response length in samples.
func (c *Convolution) ImpulseLen() int {
	return len(c.ir)
}

// Process returns the dry/wet mix for signal. The result has len(signal)
// samples; signal is not modified.
func (c *Convolution) Process(signal []float64) ([]float64, error) {
	out := make([]float64, len(signal))
	if len(signal) == 0 {
		return out, nil
	}

	wetSig, err := c.convolveHead(signal)
	if err != nil {
		return nil, err
	}

	vecmath.ScaleBlock(out, signal, 1-c.wet)
	vecmath.ScaleBlockInPlace(wetSig, c.wet)
	vecmath.AddBlockInPlace(out, wetSig)

	return out, nil
}

func (c *Convolution) convolveHead(signal []float64) ([]float64, error) {
	if c.ola != nil {
		head, err := c.ola.ProcessHead(signal)
		if err != nil {
			return nil, fmt.Errorf("reverb: convolution engine: %w", err)
		}

		return head, nil
	}

	head, err := conv.DirectHead(signal, c.ir)
	if err != nil {
		return nil, fmt.Errorf("reverb: convolution engine: %w", err)
	}

	return head, nil
}

// Apply mixes signal with its convolution by ir at the given wet ratio.
func Apply(signal, ir []float64, wet float64) ([]float64, error) {
	c, err := NewConvolution(ir, wet)
	if err != nil {
		return nil, err
	}

	return c.Process(signal)
}

func validateWet(wet float64) error {
	if math.IsNaN(wet) || wet < 0 || wet > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidWetRatio, wet)
	}

	return nil
}
