package fastc

// PBitType classifies how a BPTC mode's p-bits are shared across endpoints,
// grounded on original_source/BPTCEncoder/src/CompressionMode.h's
// EPBitType enum.
type PBitType int

const (
	// PBitShared gives one p-bit per subset, shared by both endpoints.
	PBitShared PBitType = iota
	// PBitNotShared gives one p-bit per endpoint.
	PBitNotShared
	// PBitNone means the mode has no p-bits.
	PBitNone
)

// ModeAttributes is the fixed per-mode table from spec.md §3.
type ModeAttributes struct {
	PartitionBits   int
	NumSubsets      int
	ColorIndexBits  int
	AlphaIndexBits  int
	ColorPrecision  int
	AlphaPrecision  int
	HasRotation     bool
	HasIndexMode    bool
	PBitType        PBitType
}

// modeTable is spec.md §3's BPTC mode attributes table, indexed by mode.
var modeTable = [8]ModeAttributes{
	0: {PartitionBits: 4, NumSubsets: 3, ColorIndexBits: 3, AlphaIndexBits: 0, ColorPrecision: 4, AlphaPrecision: 0, PBitType: PBitNotShared},
	1: {PartitionBits: 6, NumSubsets: 2, ColorIndexBits: 3, AlphaIndexBits: 0, ColorPrecision: 6, AlphaPrecision: 0, PBitType: PBitShared},
	2: {PartitionBits: 6, NumSubsets: 3, ColorIndexBits: 2, AlphaIndexBits: 0, ColorPrecision: 5, AlphaPrecision: 0, PBitType: PBitNone},
	3: {PartitionBits: 6, NumSubsets: 2, ColorIndexBits: 2, AlphaIndexBits: 0, ColorPrecision: 7, AlphaPrecision: 0, PBitType: PBitNotShared},
	4: {PartitionBits: 0, NumSubsets: 1, ColorIndexBits: 2, AlphaIndexBits: 3, ColorPrecision: 5, AlphaPrecision: 6, HasRotation: true, HasIndexMode: true, PBitType: PBitNone},
	5: {PartitionBits: 0, NumSubsets: 1, ColorIndexBits: 2, AlphaIndexBits: 2, ColorPrecision: 7, AlphaPrecision: 8, HasRotation: true, PBitType: PBitNone},
	6: {PartitionBits: 0, NumSubsets: 1, ColorIndexBits: 4, AlphaIndexBits: 0, ColorPrecision: 7, AlphaPrecision: 7, PBitType: PBitNotShared},
	7: {PartitionBits: 6, NumSubsets: 2, ColorIndexBits: 2, AlphaIndexBits: 0, ColorPrecision: 5, AlphaPrecision: 5, PBitType: PBitNotShared},
}

// ModeAttrs returns the fixed attribute row for a BPTC mode (0..7).
func ModeAttrs(mode int) ModeAttributes { return modeTable[mode] }

// NumPbitCombos reports how many p-bit combinations a mode's type admits.
func (a ModeAttributes) NumPbitCombos() int {
	switch a.PBitType {
	case PBitShared:
		return 2
	case PBitNotShared:
		return 4
	default:
		return 1
	}
}

// pbitCombos mirrors CompressionMode.h's kPBits table: index -> (p1, p2).
var pbitCombos = [4][2]int{{0, 0}, {0, 1}, {1, 0}, {1, 1}}

// PBitCombo returns the (endpoint1, endpoint2) p-bit pair for combo index
// idx under the mode's PBitType.
func (a ModeAttributes) PBitCombo(idx int) (int, int) {
	switch a.PBitType {
	case PBitShared:
		return idx, idx
	case PBitNotShared:
		c := pbitCombos[idx]
		return c[0], c[1]
	default:
		return -1, -1
	}
}

// QuantizationMask returns the bit-retention mask (e.g. 0xF8 for 5 bits)
// that a color/alpha precision field implies.
func QuantizationMask(precision int) uint8 {
	if precision >= 8 {
		return 0xFF
	}
	return uint8(0xFF << uint(8-precision))
}

// LogicalBlock is the fully decoded/encoded in-memory representation of a
// single BPTC block, grounded on Decompressor.cpp's LogicalBlock and
// CompressionMode.h's Params.
type LogicalBlock struct {
	Mode         int
	ShapeIdx     int
	RotationMode int // 0..3, modes 4/5 only
	IndexMode    int // 0/1, mode 4 only

	// Endpoints[subset][0 or 1] — up to 3 subsets, 2 endpoints each.
	Endpoints [3][2]Pixel
	// PbitCombo[subset] selects the p-bit combination used for that subset.
	PbitCombo [3]int

	ColorIndices [16]uint8
	AlphaIndices [16]uint8
}
