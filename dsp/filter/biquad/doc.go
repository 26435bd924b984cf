// Package biquad provides second-order IIR section runtime primitives.
//
// A [Section] implements Direct Form II Transposed processing for a single
// second-order section defined by [Coefficients]. Sections are cascaded via
// [Chain] for higher-order designs such as the Butterworth cascades built in
// dsp/filter/design/pass.
//
// The package owns processing only; coefficient design lives elsewhere.
package biquad
