// Package normalize solves and applies one gain for a multichannel buffer.
//
// Two modes are available:
//
//   - ModePeak scales the buffer so the true peak of the per-sample channel
//     envelope lands on the ceiling.
//   - ModeLoudness scales toward a target integrated loudness of the
//     weighted channel mix, limited so the mix's true peak stays at or
//     below the ceiling. A final check on the channel envelope lowers the
//     gain further if any individual channel would still exceed it.
//
// Without WithCeiling the ceiling follows the mode: DefaultCeiling for
// ModePeak, DefaultLoudnessCeiling for ModeLoudness.
//
// The ceiling bounds the true peak of the envelope, the per-sample maximum of
// |channel| across channels, not of each channel on its own. Rectifying
// folds energy to DC and twice the signal frequency, so a channel can
// reconstruct above the envelope: a quarter-rate sine sampled at 45 degrees
// has an envelope true peak of 0.707 of its amplitude but a channel true
// peak of 1.0. After normalization such a channel reads about 3 dB
// over the ceiling.
//
// A silent buffer (true peak 0) is left at unit gain. The same scalar is
// applied to every channel, so relative levels are preserved.
package normalize
