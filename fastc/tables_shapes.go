package fastc

// Partition shape tables, transcribed verbatim from
// original_source/BPTCEncoder/include/FasTC/Shapes.h and
// src/AnchorTables.h so partitioning is bit-compatible with the BC7
// specification rather than merely shaped the same.

// NumShapes2 and NumShapes3 are the number of distinct 2-subset and
// 3-subset partition shapes.
const (
	NumShapes2 = 64
	NumShapes3 = 64
)

// shapeMask2 maps a 2-subset shape index to a 16-bit mask: bit i set means
// texel i belongs to subset 1, else subset 0.
var shapeMask2 = [NumShapes2]uint16{
	0xcccc, 0x8888, 0xeeee, 0xecc8, 0xc880, 0xfeec, 0xfec8, 0xec80,
	0xc800, 0xffec, 0xfe80, 0xe800, 0xffe8, 0xff00, 0xfff0, 0xf000,
	0xf710, 0x008e, 0x7100, 0x08ce, 0x008c, 0x7310, 0x3100, 0x8cce,
	0x088c, 0x3110, 0x6666, 0x366c, 0x17e8, 0x0ff0, 0x718e, 0x399c,
	0xaaaa, 0xf0f0, 0x5a5a, 0x33cc, 0x3c3c, 0x55aa, 0x9696, 0xa55a,
	0x73ce, 0x13c8, 0x324c, 0x3bdc, 0x6996, 0xc33c, 0x9966, 0x0660,
	0x0272, 0x04e4, 0x4e40, 0x2720, 0xc936, 0x936c, 0x39c6, 0x639c,
	0x9336, 0x9cc6, 0x817e, 0xe718, 0xccf0, 0x0fcc, 0x7744, 0xee22,
}

// shapeMask3 maps a 3-subset shape index to a pair of 16-bit masks: bit i
// set in mask[0] means texel i is in subset 1 or 2; among those, bit i set
// in mask[1] further selects subset 2 (else subset 1); otherwise subset 0.
var shapeMask3 = [NumShapes3][2]uint16{
	{0xfecc, 0xf600}, {0xffc8, 0x7300}, {0xff90, 0x3310}, {0xecce, 0x00ce},
	{0xff00, 0xcc00}, {0xcccc, 0xcc00}, {0xffcc, 0x00cc}, {0xffcc, 0x3300},
	{0xff00, 0xf000}, {0xfff0, 0xf000}, {0xfff0, 0xff00}, {0xcccc, 0x8888},
	{0xeeee, 0x8888}, {0xeeee, 0xcccc}, {0xffec, 0xec80}, {0x739c, 0x7310},
	{0xfec8, 0xc800}, {0x39ce, 0x3100}, {0xfff0, 0xccc0}, {0xfccc, 0x0ccc},
	{0xeeee, 0xee00}, {0xff88, 0x7700}, {0xeec0, 0xcc00}, {0x7730, 0x3300},
	{0x0cee, 0x00cc}, {0xffcc, 0xfc88}, {0x6ff6, 0x0660}, {0xff60, 0x6600},
	{0xcbbc, 0xc88c}, {0xf966, 0xf900}, {0xceec, 0x0cc0}, {0xff10, 0x7310},
	{0xff80, 0xec80}, {0xccce, 0x08ce}, {0xeccc, 0xec80}, {0x6666, 0x4444},
	{0x0ff0, 0x0f00}, {0x6db6, 0x4924}, {0x6bd6, 0x4294}, {0xcf3c, 0x0c30},
	{0xc3fc, 0x03c0}, {0xffaa, 0xff00}, {0xff00, 0x5500}, {0xfcfc, 0xcccc},
	{0xcccc, 0x0c0c}, {0xf6f6, 0x6666}, {0xaffa, 0x0ff0}, {0xfff0, 0x5550},
	{0xfaaa, 0xf000}, {0xeeee, 0x0e0e}, {0xf8f8, 0x8888}, {0xfff0, 0x9990},
	{0xeeee, 0xe00e}, {0x8ff8, 0x8888}, {0xf666, 0xf000}, {0xff00, 0x9900},
	{0xff66, 0xff00}, {0xcccc, 0xc00c}, {0xcffc, 0xcccc}, {0xf000, 0x9000},
	{0x8888, 0x0808}, {0xfefe, 0xeeee}, {0xfffa, 0xfff0}, {0x7bde, 0x7310},
}

// anchorIdx2 gives, per 2-subset shape, the texel index that is the anchor
// of subset 1 (subset 0's anchor is always texel 0).
var anchorIdx2 = [NumShapes2]int{
	15, 15, 15, 15, 15, 15, 15, 15,
	15, 15, 15, 15, 15, 15, 15, 15,
	15, 2, 8, 2, 2, 8, 8, 15,
	2, 8, 2, 2, 8, 8, 2, 2,
	15, 15, 6, 8, 2, 8, 15, 15,
	2, 8, 2, 2, 2, 15, 15, 6,
	6, 2, 6, 8, 15, 15, 2, 2,
	15, 15, 15, 15, 15, 2, 2, 15,
}

// anchorIdx3 gives, per 3-subset shape, the anchor texel of subset 1
// (row 0) and subset 2 (row 1). Subset 0's anchor is always texel 0.
var anchorIdx3 = [2][NumShapes3]int{
	{3, 3, 15, 15, 8, 3, 15, 15,
		8, 8, 6, 6, 6, 5, 3, 3,
		3, 3, 8, 15, 3, 3, 6, 10,
		5, 8, 8, 6, 8, 5, 15, 15,
		8, 15, 3, 5, 6, 10, 8, 15,
		15, 3, 15, 5, 15, 15, 15, 15,
		3, 15, 5, 5, 5, 8, 5, 10,
		5, 10, 8, 13, 15, 12, 3, 3},
	{15, 8, 8, 3, 15, 15, 3, 8,
		15, 15, 15, 15, 15, 15, 15, 8,
		15, 8, 15, 3, 15, 8, 15, 8,
		3, 15, 6, 10, 15, 15, 10, 8,
		15, 3, 15, 10, 10, 8, 9, 10,
		6, 15, 8, 15, 3, 6, 6, 8,
		15, 3, 15, 15, 15, 15, 15, 15,
		15, 15, 15, 15, 3, 15, 15, 8},
}

// SubsetForIndex returns which subset (0, 1, or {0,1,2}) texel idx belongs
// to under the given shape and subset count.
func SubsetForIndex(idx, shapeIdx, nSubsets int) int {
	bit := uint16(1) << uint(idx)
	switch nSubsets {
	case 2:
		if shapeMask2[shapeIdx]&bit != 0 {
			return 1
		}
		return 0
	case 3:
		if shapeMask3[shapeIdx][0]&bit != 0 {
			if shapeMask3[shapeIdx][1]&bit != 0 {
				return 2
			}
			return 1
		}
		return 0
	default:
		return 0
	}
}

// AnchorIndexForSubset returns the texel index that is the anchor of the
// given subset (subset 0's anchor is always 0 and is not looked up here).
func AnchorIndexForSubset(subset, shapeIdx, nSubsets int) int {
	switch subset {
	case 1:
		if nSubsets == 2 {
			return anchorIdx2[shapeIdx]
		}
		return anchorIdx3[0][shapeIdx]
	case 2:
		return anchorIdx3[1][shapeIdx]
	default:
		return 0
	}
}
