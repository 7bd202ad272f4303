package fastc

// Format identifies a block codec format a Job targets.
type Format int

const (
	FormatBPTC Format = iota
	FormatDXT1
	FormatDXT5
	FormatETC1
	FormatPVRTC4BPP
	FormatPVRTC2BPP
)

// BlockDimensions returns the (width, height) of one block for a format,
// per spec.md §3's Job invariant (4x4 for BC/ETC/DXT/PVRTC4, 8x4 for
// PVRTC2).
func (f Format) BlockDimensions() (int, int) {
	if f == FormatPVRTC2BPP {
		return 8, 4
	}
	return 4, 4
}

// BlockSizeBytes returns the compressed size of one block for a format,
// per spec.md §6.
func (f Format) BlockSizeBytes() int {
	switch f {
	case FormatBPTC, FormatDXT5:
		return 16
	default:
		return 8
	}
}

// ErrorMetric holds the per-channel weights used to estimate shape and
// cluster reconstruction error (spec.md §4.3/§6). Uniform is {1,1,1,1};
// Perceptual approximates luma-weighted channel importance.
type ErrorMetric [4]float64

var (
	UniformErrorMetric    = ErrorMetric{1, 1, 1, 1}
	PerceptualErrorMetric = ErrorMetric{0.5477225575, 0.7483314774, 0.3316624790, 1}
)

// CompressionSettings is the BPTC encoder configuration object, mirroring
// the teacher's astcenc_api_types.go Config struct: a plain data struct
// threaded explicitly through encode calls, replacing the original's
// global mutable quality/error-metric/seed state (spec.md §9).
type CompressionSettings struct {
	// BlockModes is a bitmask of BPTC modes (bit i = mode i) the encoder
	// may produce. Default (zero value) is treated as 0xFF (all modes).
	BlockModes uint8

	// ErrorMetric weights channel error during shape selection and
	// cluster optimization.
	ErrorMetric ErrorMetric

	// NumSimulatedAnnealingSteps bounds the BPTC annealing loop (spec.md
	// §6), default 50, hard-capped at 256.
	NumSimulatedAnnealingSteps int

	// ShapeSelectionFn optionally overrides the default axis-aligned
	// bounding-box diagonal error estimate used during shape search
	// (spec.md §6's shape_selection_fn / shape_selection_user_data). It is
	// called once per candidate shape with the full block, the candidate's
	// subset count and per-shape interpolation bucket count, and the active
	// error metric, and must return a lower-is-better score for that shape
	// — the same inputs compressGeneralBlock's own shapeErrorEstimate uses,
	// so a caller can substitute a different heuristic without access to
	// unexported types.
	ShapeSelectionFn       func(pixels [16][4]uint8, shapeIdx, nSubsets, nBuckets int, metric ErrorMetric, userData interface{}) float64
	ShapeSelectionUserData interface{}
}

// shapeError scores one candidate shape, delegating to ShapeSelectionFn when
// the caller supplied one and falling back to the package's own
// bounding-box estimate otherwise.
func (s CompressionSettings) shapeError(pixels [16][4]uint8, shapeIdx, nSubsets, nBuckets int, metric ErrorMetric) float64 {
	if s.ShapeSelectionFn != nil {
		return s.ShapeSelectionFn(pixels, shapeIdx, nSubsets, nBuckets, metric, s.ShapeSelectionUserData)
	}
	return shapeErrorEstimate(pixels, shapeIdx, nSubsets, nBuckets, metric)
}

// DefaultSettings returns the encoder's default configuration.
func DefaultSettings() CompressionSettings {
	return CompressionSettings{
		BlockModes:                 0xFF,
		ErrorMetric:                UniformErrorMetric,
		NumSimulatedAnnealingSteps: 50,
	}
}

func (s CompressionSettings) effectiveBlockModes() uint8 {
	if s.BlockModes == 0 {
		return 0xFF
	}
	return s.BlockModes
}

func (s CompressionSettings) effectiveSteps() int {
	if s.NumSimulatedAnnealingSteps <= 0 {
		return 50
	}
	if s.NumSimulatedAnnealingSteps > maxAnnealingIterations {
		return maxAnnealingIterations
	}
	return s.NumSimulatedAnnealingSteps
}
