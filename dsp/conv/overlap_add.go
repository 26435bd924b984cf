package conv

import (
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"
)

// minOverlapAddBlock is the smallest automatically chosen input block.
const minOverlapAddBlock = 256

// OverlapAdd implements FFT-based convolution using the overlap-add method.
// The input is cut into non-overlapping blocks; each block is zero-padded,
// multiplied with the precomputed kernel spectrum and the partial results
// are summed at their block offsets.
type OverlapAdd struct {
	kernelFFT []complex128

	kernelLen int
	blockSize int
	fftSize   int // power of two >= blockSize + kernelLen - 1

	plan *algofft.Plan[complex128]

	scratch []complex128
}

// NewOverlapAdd creates an overlap-add convolver for kernel and computes
// its spectrum. If blockSize is 0, a size is chosen from the kernel length.
// The kernel slice is not retained.
func NewOverlapAdd(kernel []float64, blockSize int) (*OverlapAdd, error) {
	if len(kernel) == 0 {
		return nil, ErrEmptyKernel
	}

	kernelLen := len(kernel)

	if blockSize <= 0 {
		blockSize = max(nextPowerOf2(kernelLen), minOverlapAddBlock)
	}

	fftSize := nextPowerOf2(blockSize + kernelLen - 1)

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("conv: failed to create FFT plan: %w", err)
	}

	oa := &OverlapAdd{
		kernelFFT: make([]complex128, fftSize),
		kernelLen: kernelLen,
		blockSize: blockSize,
		fftSize:   fftSize,
		plan:      plan,
		scratch:   make([]complex128, fftSize),
	}

	for i, v := range kernel {
		oa.scratch[i] = complex(v, 0)
	}

	if err := plan.Forward(oa.kernelFFT, oa.scratch); err != nil {
		return nil, fmt.Errorf("conv: failed to compute kernel FFT: %w", err)
	}

	return oa, nil
}

// ProcessHead returns the first len(input) samples of the convolution.
// Blocks are still convolved in full; contributions past the end of the
// input are dropped instead of stored.
func (oa *OverlapAdd) ProcessHead(input []float64) ([]float64, error) {
	if len(input) == 0 {
		return nil, ErrEmptyInput
	}

	output := make([]float64, len(input))
	if err := oa.accumulate(output, input); err != nil {
		return nil, err
	}

	return output, nil
}

// accumulate adds the convolution of input into output, dropping samples
// that fall past len(output).
func (oa *OverlapAdd) accumulate(output, input []float64) error {
	for start := 0; start < len(input); start += oa.blockSize {
		end := min(start+oa.blockSize, len(input))

		clear(oa.scratch)
		for i, v := range input[start:end] {
			oa.scratch[i] = complex(v, 0)
		}

		if err := oa.plan.Forward(oa.scratch, oa.scratch); err != nil {
			return fmt.Errorf("conv: forward FFT failed: %w", err)
		}

		for i := range oa.scratch {
			oa.scratch[i] *= oa.kernelFFT[i]
		}

		if err := oa.plan.Inverse(oa.scratch, oa.scratch); err != nil {
			return fmt.Errorf("conv: inverse FFT failed: %w", err)
		}

		n := min(end-start+oa.kernelLen-1, len(output)-start)
		for i := range n {
			output[start+i] += real(oa.scratch[i])
		}
	}

	return nil
}
