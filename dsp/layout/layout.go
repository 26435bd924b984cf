package layout

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cwbudde/algo-upmix/dsp/core"
)

// BedChannels is the channel count of the canonical bed.
const BedChannels = 12

// ErrNotBed is returned when a buffer does not hold the full bed.
var ErrNotBed = errors.New("layout: buffer is not a 12-channel bed")

// Labels of the canonical bed channels, indexed by bed position.
var bedLabels = [BedChannels]string{
	"Front L", "Front R", "Center", "LFE",
	"Surround L", "Surround R", "Back L", "Back R",
	"Top Front L", "Top Front R", "Top Rear L", "Top Rear R",
}

// Format is an output channel layout.
type Format int

const (
	FormatFull Format = iota
	Format51
	Format512
	Format71
	Format712
	Format714
)

// Named lists the selectable formats in ascending channel count.
func Named() []Format {
	return []Format{Format51, Format512, Format71, Format712, Format714}
}

// Parse resolves a format name. Surrounding whitespace is ignored. For an
// unrecognised name it returns FormatFull and false.
func Parse(name string) (Format, bool) {
	name = strings.TrimSpace(name)
	for _, f := range Named() {
		if f.String() == name {
			return f, true
		}
	}

	return FormatFull, false
}

// String returns the format name.
func (f Format) String() string {
	switch f {
	case Format51:
		return "5.1"
	case Format512:
		return "5.1.2"
	case Format71:
		return "7.1"
	case Format712:
		return "7.1.2"
	case Format714:
		return "7.1.4"
	case FormatFull:
		return "full"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Indices returns the bed positions selected by f, in output order.
// Unknown values behave like FormatFull.
func (f Format) Indices() []int {
	switch f {
	case Format51:
		return []int{0, 1, 2, 3, 4, 5}
	case Format512:
		return []int{0, 1, 2, 3, 4, 5, 8, 9}
	case Format71:
		return []int{0, 1, 2, 3, 4, 5, 6, 7}
	case Format712:
		return []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	default:
		// Format714, FormatFull and unknown values carry the whole bed.
		return []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}
	}
}

// ChannelCount returns the number of output channels.
func (f Format) ChannelCount() int {
	return len(f.Indices())
}

// Labels returns the speaker labels of the output channels.
func (f Format) Labels() []string {
	idx := f.Indices()
	out := make([]string, len(idx))
	for i, b := range idx {
		out[i] = bedLabels[b]
	}

	return out
}

// Select copies the channels of f out of bed. Samples are copied, not
// rescaled.
func Select(bed core.Buffer, f Format) (core.Buffer, error) {
	if err := bed.Validate(); err != nil {
		return core.Buffer{}, err
	}

	if bed.NumChannels() != BedChannels {
		return core.Buffer{}, fmt.Errorf("%w: got %d channels", ErrNotBed, bed.NumChannels())
	}

	idx := f.Indices()
	out := core.Buffer{
		Channels:   make([][]float64, len(idx)),
		SampleRate: bed.SampleRate,
	}

	for i, b := range idx {
		out.Channels[i] = append([]float64(nil), bed.Channels[b]...)
	}

	return out, nil
}

// SelectByName parses name and selects its channels. It also returns the
// resolved format and whether the name was recognised.
func SelectByName(bed core.Buffer, name string) (core.Buffer, Format, bool, error) {
	f, ok := Parse(name)

	out, err := Select(bed, f)
	if err != nil {
		return core.Buffer{}, f, ok, err
	}

	return out, f, ok, nil
}
