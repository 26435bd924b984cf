// Package resample converts whole signals between sample rates with a
// rational polyphase FIR.
//
// Poly and ForRates use a linear-phase filter whose delay is removed, so
// output and input stay time-aligned. Oversampled peak detection and impulse
// response conversion rely on that alignment.
//
// The default filter is a Kaiser (beta 5) windowed sinc with 20 taps per
// phase and the cutoff at the lower Nyquist frequency. WithQuality selects
// one of the predefined profiles instead:
//
//	mode            taps/phase   nominal stopband
//	QualityFast     16           ~55 dB
//	QualityBalanced 32           ~75 dB
//	QualityBest     64           ~90 dB
package resample
