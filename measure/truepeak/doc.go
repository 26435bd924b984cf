// Package truepeak estimates inter-sample peaks by oversampling.
//
// The signal is upsampled with the zero-phase polyphase resampler from
// dsp/resample and the largest absolute sample of the result is the
// estimate. Factor 1 yields the plain sample peak.
package truepeak
