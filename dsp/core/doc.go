// Package core holds the multichannel sample container shared by the upmix
// pipeline and a handful of numeric helpers.
//
// A [Buffer] is a planar (non-interleaved) set of equally long float64
// channels tagged with an integer sample rate in Hz. DSP routines elsewhere in
// the module operate on raw []float64 channels; Buffer is the unit passed
// between pipeline stages.
package core
