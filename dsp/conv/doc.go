// Package conv computes the head of a linear convolution: the first
// len(signal) samples, with the tail past the end of the signal discarded.
//
// Two strategies are available:
//
//   - DirectHead: O(N*M) time-domain convolution, best for very short kernels
//   - OverlapAdd: FFT-based block convolution with a precomputed kernel
//     spectrum, for long kernels and repeated use of one kernel
//
//	c, err := conv.NewOverlapAdd(kernel, 0)
//	head, err := c.ProcessHead(signal)
//
// An [OverlapAdd] owns scratch buffers and must not be shared between
// goroutines.
package conv
