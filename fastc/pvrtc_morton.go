package fastc

// mortonInterleave interleaves the low bits of row and col into a single
// index with row occupying even bit positions and col occupying odd bit
// positions, grounded verbatim on original_source/PVRTCEncoder/src/
// Compressor.cpp's Interleave (the classic "InterleaveBMN" bit trick).
func mortonInterleave(row, col uint32) uint32 {
	spread := func(v uint32) uint32 {
		v = (v | (v << 8)) & 0x00FF00FF
		v = (v | (v << 4)) & 0x0F0F0F0F
		v = (v | (v << 2)) & 0x33333333
		v = (v | (v << 1)) & 0x55555555
		return v
	}
	x := spread(row)
	y := spread(col)
	return x | (y << 1)
}
