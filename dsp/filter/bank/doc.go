// Package bank applies fixed-order Butterworth lowpass and highpass filters
// to whole signals.
//
// Filters are designed per call as cascaded second-order sections
// (dsp/filter/design/pass) and run causally in a single forward pass with
// zero initial state, so output sample n depends only on input samples 0..n.
// A [Bank] carries no processing state and is safe for concurrent use.
//
//	hp, err := bank.Apply(left, 48000, 100, bank.KindHighpass)
package bank
