package reverb_test

import (
	"fmt"

	"github.com/cwbudde/algo-upmix/dsp/effects/reverb"
)

func ExampleApply() {
	signal := []float64{1, 0, 0, 0}
	ir := []float64{0, 1}

	out, err := reverb.Apply(signal, ir, 0.25)
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Println(out)
	// Output:
	// [0.75 0.25 0 0]
}
