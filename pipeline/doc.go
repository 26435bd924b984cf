// Package pipeline runs the full stereo-to-immersive chain: impulse
// response alignment, bed synthesis, format selection and normalization.
//
// A Pipeline holds only read-only state after New and may be shared by
// concurrent callers.
package pipeline
