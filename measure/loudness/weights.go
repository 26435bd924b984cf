package loudness

// BedChannels is the size of the canonical channel bed a WeightTable covers.
const BedChannels = 12

// WeightTable holds loudness weights indexed by canonical bed position.
// It is a value type, so copies cannot alter the defaults.
type WeightTable [BedChannels]float64

var defaultWeights = WeightTable{
	1.0, 1.0, // front L/R
	0.8,      // center
	0.5,      // LFE
	0.7, 0.7, // surround L/R
	0.6, 0.6, // back L/R
	0.5, 0.5, // top front L/R
	0.4, 0.4, // top rear L/R
}

// DefaultWeights returns the immersive bed weights.
func DefaultWeights() WeightTable {
	return defaultWeights
}

// Weight returns the weight of bed position index. Positions outside the
// table weigh 1.
func (t WeightTable) Weight(index int) float64 {
	if index < 0 || index >= len(t) {
		return 1
	}

	return t[index]
}

// For returns the weights of the given bed positions, in order.
func (t WeightTable) For(indices []int) []float64 {
	out := make([]float64, len(indices))
	for i, idx := range indices {
		out[i] = t.Weight(idx)
	}

	return out
}
