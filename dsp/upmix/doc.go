// Package upmix derives the canonical 12-channel immersive bed from a
// stereo signal.
//
// Every bed channel is built by one fixed [Recipe] entry: pick the left,
// right or mid (L+R)/2 signal, optionally filter it with a 4th-order
// Butterworth stage, optionally pass it through the convolution reverb of
// the matching side and scale it. The table is normative; the only variant
// is [WithSwapSurroundBack], which exchanges the surround and back pairs
// for tools that expect that ordering.
//
// A [Synthesizer] holds no per-call state and may be shared between
// goroutines. Impulse responses passed to Synthesize are only read.
package upmix
