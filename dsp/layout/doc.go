// Package layout maps output format names to channel subsets of the
// canonical 12-channel immersive bed.
//
// The bed order is fixed:
//
//	0 Front L      4 Surround L   8  Top Front L
//	1 Front R      5 Surround R   9  Top Front R
//	2 Center       6 Back L       10 Top Rear L
//	3 LFE          7 Back R       11 Top Rear R
//
// Unknown format names select [FormatFull], the whole bed. That fallback is
// reported through the bool returned by [Parse], never as an error.
package layout
