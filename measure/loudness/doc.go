// Package loudness measures programme loudness following ITU-R BS.1770.
//
// [Meter] is a streaming K-weighted meter reporting momentary (400 ms),
// short-term (3 s) and gated integrated loudness in LUFS. Gating blocks are
// 400 ms long with 75 % overlap; blocks below -70 LUFS are discarded, then
// blocks more than 10 LU below the mean of the remainder.
//
// [Analyzer] measures a multichannel bed the way the upmix normalizer needs
// it: each channel is scaled by its weight from a [WeightTable], limited to
// the 50 Hz to 15 kHz band, summed to one signal and metered. The result is
// meter-equivalent, not a certified measurement.
//
// Integrated loudness is -Inf when no complete 400 ms block exists or every
// block is gated away.
package loudness
