package pass

import "github.com/cwbudde/algo-upmix/dsp/filter/biquad"

// ButterworthLP designs a lowpass Butterworth cascade with its -3 dB point
// at freq. Returns nil for a non-positive order or a cutoff outside
// (0, sampleRate/2).
//
// For odd orders, the final section is first-order (B2=A2=0).
func ButterworthLP(freq float64, order int, sampleRate float64) []biquad.Coefficients {
	return butterworth(freq, order, sampleRate, secondOrderLP, firstOrderLP)
}

// ButterworthHP designs a highpass Butterworth cascade with its -3 dB point
// at freq. Invalid parameters yield nil, as for ButterworthLP.
//
// For odd orders, the final section is first-order (B2=A2=0).
func ButterworthHP(freq float64, order int, sampleRate float64) []biquad.Coefficients {
	return butterworth(freq, order, sampleRate, secondOrderHP, firstOrderHP)
}

func butterworth(
	freq float64,
	order int,
	sampleRate float64,
	second func(k, q float64) biquad.Coefficients,
	first func(k float64) biquad.Coefficients,
) []biquad.Coefficients {
	if order <= 0 {
		return nil
	}

	k, ok := bilinearK(freq, sampleRate)
	if !ok {
		return nil
	}

	sections := make([]biquad.Coefficients, 0, (order+1)/2)

	for i := order/2 - 1; i >= 0; i-- {
		sections = append(sections, second(k, butterworthQ(order, i)))
	}

	if order%2 != 0 {
		sections = append(sections, first(k))
	}

	return sections
}
