// Package weighting provides the frequency weighting filters used by the
// loudness measurement.
//
// Three curves are available:
//
//   - K-weighting per ITU-R BS.1770: a high-shelf pre-filter modelling the
//     acoustic effect of the head followed by the revised low-frequency B
//     (RLB) high-pass.
//   - Band weighting: a 2nd-order Butterworth high-pass at 50 Hz followed by
//     a 2nd-order Butterworth low-pass at 15 kHz, limiting a mix to the
//     perceptually relevant band before metering. The low-pass stage is
//     omitted when 15 kHz is not below Nyquist.
//   - Z-weighting: unity gain at all frequencies.
//
// The returned [biquad.Chain] holds filter state, so each goroutine needs
// its own chain. Use it for sample-by-sample or offline block processing.
package weighting
