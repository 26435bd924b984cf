package upmix

import "github.com/cwbudde/algo-upmix/dsp/filter/bank"

// ReverbWet is the wet ratio of every reverberated bed channel.
const ReverbWet = 0.2

// Source selects the stereo-derived signal feeding a bed channel.
type Source int

const (
	SourceLeft Source = iota
	SourceRight
	SourceMid
)

// String returns the source name.
func (s Source) String() string {
	switch s {
	case SourceLeft:
		return "L"
	case SourceRight:
		return "R"
	case SourceMid:
		return "mid"
	default:
		return "unknown"
	}
}

// Side selects the impulse response used by a reverberated channel.
type Side int

const (
	SideNone Side = iota
	SideLeft
	SideRight
)

// Filter is an optional Butterworth stage. A zero CutoffHz disables it.
type Filter struct {
	Kind     bank.Kind
	CutoffHz float64
}

// Enabled reports whether the stage filters at all.
func (f Filter) Enabled() bool {
	return f.CutoffHz > 0
}

// Channel describes how one bed channel is derived.
type Channel struct {
	Label  string
	Source Source
	Filter Filter
	Reverb Side
	Gain   float64
}

var recipe = [...]Channel{
	{Label: "Front L", Source: SourceLeft, Gain: 0.6},
	{Label: "Front R", Source: SourceRight, Gain: 0.6},
	{Label: "Center", Source: SourceMid, Gain: 0.1},
	{Label: "LFE", Source: SourceMid, Filter: Filter{bank.KindLowpass, 80}, Gain: 0.15},
	{Label: "Surround L", Source: SourceLeft, Reverb: SideLeft, Gain: 0.1},
	{Label: "Surround R", Source: SourceRight, Reverb: SideRight, Gain: 0.1},
	{Label: "Back L", Source: SourceLeft, Filter: Filter{bank.KindHighpass, 100}, Reverb: SideLeft, Gain: 0.1},
	{Label: "Back R", Source: SourceRight, Filter: Filter{bank.KindHighpass, 100}, Reverb: SideRight, Gain: 0.1},
	{Label: "Top Front L", Source: SourceLeft, Filter: Filter{bank.KindHighpass, 150}, Reverb: SideLeft, Gain: 0.1},
	{Label: "Top Front R", Source: SourceRight, Filter: Filter{bank.KindHighpass, 150}, Reverb: SideRight, Gain: 0.1},
	{Label: "Top Rear L", Source: SourceLeft, Filter: Filter{bank.KindHighpass, 200}, Reverb: SideLeft, Gain: 0.05},
	{Label: "Top Rear R", Source: SourceRight, Filter: Filter{bank.KindHighpass, 200}, Reverb: SideRight, Gain: 0.05},
}

// BedChannels is the number of channels Synthesize produces.
const BedChannels = len(recipe)

// Recipe returns a copy of the synthesis table in bed order.
func Recipe() []Channel {
	return append([]Channel(nil), recipe[:]...)
}
