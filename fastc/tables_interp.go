package fastc

// Interpolation weight tables for nbits in {2,3,4}, giving the integer pair
// (w0, w1) with w0+w1=64 used to blend two endpoints: result = (e0*w0 +
// e1*w1 + 32) >> 6 (spec.md §3). The literal kInterpolationValues table from
// original_source/BPTCEncoder/src/CompressionMode.h is only declared there,
// not defined in the retrieved sources; the BC7 specification fixes these
// weights exactly via w1 = round(64*i/(2^n - 1)), so the table is generated
// here rather than guessed, using the same rounding the standard ASTC/BC7
// weight ramp construction uses (ties round up, matching hardware decoders).
var interpolationWeights = buildInterpolationWeights()

func buildInterpolationWeights() [3][16][2]uint32 {
	var t [3][16][2]uint32
	for ni, nbits := range []uint32{2, 3, 4} {
		max := uint32(1)<<nbits - 1
		for i := uint32(0); i < 16; i++ {
			if i > max {
				break
			}
			w1 := (i*64 + max/2) / max
			t[ni][i][0] = 64 - w1
			t[ni][i][1] = w1
		}
	}
	return t
}

// InterpWeights returns (w0, w1) for the given index-bit-width and index.
func InterpWeights(nbits int, index uint32) (uint32, uint32) {
	row := &interpolationWeights[nbits-2]
	return row[index][0], row[index][1]
}

// Interpolate blends two 8-bit endpoint channel values at the given index,
// per the formula in spec.md §3.
func Interpolate(e0, e1 uint8, nbits int, index uint32) uint8 {
	w0, w1 := InterpWeights(nbits, index)
	v := (uint32(e0)*w0 + uint32(e1)*w1 + 32) >> 6
	if v > 255 {
		v = 255
	}
	return uint8(v)
}
