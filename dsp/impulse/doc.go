// Package impulse holds mono room impulse responses used as reverb kernels.
//
// A [Pair] carries the left and right responses of a stereo room
// measurement. Pairs are loaded once and then shared read-only; converting
// a pair to another sample rate with [Pair.Resampled] always returns a new
// pair and leaves the receiver untouched.
package impulse
