// Package ir reports diagnostics for the impulse responses that feed the
// convolution reverb.
//
// Metrics come from the Schroeder backward integration of the squared
// response:
//
//   - RT60: reverberation time, extrapolated from the -5 to -35 dB slope
//     (falling back to -5 to -25 dB)
//   - EDT: early decay time, extrapolated from the 0 to -10 dB slope
//   - C80: early-to-late energy ratio at 80 ms
//   - Energy, Peak, PeakIndex and PreDelay describe the raw response
//
// # Usage
//
//	a := ir.NewAnalyzer(48000)
//	m, err := a.Analyze(samples)
//	fmt.Printf("RT60 = %.2f s, C80 = %.1f dB\n", m.RT60, m.C80)
package ir
