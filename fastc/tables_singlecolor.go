package fastc

import "sync"

// Mode-5 single-color fast path needs, for each 8-bit channel value, the
// pair of 7-bit endpoints that best reproduce it when interpolated at
// index 1 of a 2-bit index table (spec.md §4.3/§4.4's "precomputed table
// of best 7-bit endpoint pairs"). The original's literal
// Optimal7CompressBC7Mode5 table (original_source/BPTCEncoder/src/
// Compressor.cpp, CompressOptimalColorBC7) is not present in the retrieved
// source, only referenced by name — so it is computed once, lazily, by the
// same brute-force search the table was presumably generated with: for
// every 8-bit input, exhaustively scan the 128x128 endpoint grid and keep
// the pair minimizing reconstruction error at interpolation index 1 (see
// DESIGN.md Open Question O1).
var (
	singleColorOnce  sync.Once
	singleColorTable [256][2]uint8
)

const (
	singleColorNBits = 2
	singleColorIndex = 1
)

func buildSingleColorTable() {
	for v := 0; v < 256; v++ {
		bestErr := 1 << 30
		var bestLo, bestHi uint8
		for e0 := 0; e0 < 128; e0++ {
			exp0 := msbReplicate(uint8(e0), 7, 8)
			for e1 := 0; e1 < 128; e1++ {
				exp1 := msbReplicate(uint8(e1), 7, 8)
				got := int(Interpolate(exp0, exp1, singleColorNBits, singleColorIndex))
				err := got - v
				if err < 0 {
					err = -err
				}
				if err < bestErr {
					bestErr = err
					bestLo, bestHi = uint8(e0), uint8(e1)
					if bestErr == 0 {
						break
					}
				}
			}
			if bestErr == 0 {
				break
			}
		}
		singleColorTable[v] = [2]uint8{bestLo, bestHi}
	}
}

// SingleColorEndpoints returns the two 7-bit mode-5 endpoints that best
// reproduce channel value v under index-1 interpolation.
func SingleColorEndpoints(v uint8) (uint8, uint8) {
	singleColorOnce.Do(buildSingleColorTable)
	pair := singleColorTable[v]
	return pair[0], pair[1]
}
