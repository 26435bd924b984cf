// Package time computes per-channel level statistics of rendered beds:
// DC offset, sample peak, RMS, crest factor, zero crossings and clipped
// samples.
//
// Building with the fastmath tag switches the decibel fields to a fast
// logarithm approximation (<0.5% relative error).
package time
