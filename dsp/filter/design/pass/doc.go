// Package pass designs pass-type IIR filters (lowpass, highpass) as cascades
// of second-order sections.
//
// Designs use the bilinear transform with frequency pre-warping so that the
// -3 dB point lands exactly on the requested cutoff. Each returned
// [biquad.Coefficients] value is one section; run them through a
// [biquad.Chain].
package pass
