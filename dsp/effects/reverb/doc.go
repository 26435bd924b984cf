// Package reverb provides an offline convolution reverb.
//
// The wet path is the linear convolution of the signal with a room impulse
// response, truncated to the signal length. Reverb tails past the end of the
// input are discarded. The output mixes dry and wet as
//
//	out = (1-wet)*signal + wet*conv(signal, ir)[:len(signal)]
//
// Use [Apply] for one-shot processing or [NewConvolution] to reuse one
// impulse response for several signals.
package reverb
