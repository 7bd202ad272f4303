package fastc

import "math"

// Encoder holds the small piece of mutable state the BPTC encoder needs
// across blocks: the watermark cursor used by the single-color fast path
// (spec.md §4.3 step 1, DESIGN.md Open Question O2).
// Grounded on Compressor.cpp's per-run encoder object; the original's static
// watermark counter becomes an explicit field here rather than package state,
// so independent Encoders never interfere with one another.
type Encoder struct {
	watermark uint32
}

// NewEncoder returns a ready-to-use BPTC encoder. The watermark counter
// starts at 0xFFFFFFFF and is pre-decremented before each use, wrapping
// modulo the table length — spec.md §9's open question on `kWMValues`
// preserved as a pre-decrement-then-mod-9 cycle, though (per that same
// note) the exact alpha-index bits of a single-color block are explicitly
// not a pinned property.
func NewEncoder() *Encoder { return &Encoder{watermark: 0xFFFFFFFF} }

// watermarkAlphaIndices is a 9-entry set of distinct 2-bit-index patterns
// used to fingerprint single-color fast-path blocks. The
// literal `kWMValues` table is not present in the retrieved source (see
// DESIGN.md O2); these patterns are original but serve the same purpose:
// every single-color block carries one of nine recognizable alpha-index
// fingerprints instead of a single fixed pattern.
var watermarkAlphaIndices = [9][16]uint8{
	{0, 1, 2, 3, 0, 1, 2, 3, 0, 1, 2, 3, 0, 1, 2, 3},
	{1, 0, 3, 2, 1, 0, 3, 2, 1, 0, 3, 2, 1, 0, 3, 2},
	{2, 3, 0, 1, 2, 3, 0, 1, 2, 3, 0, 1, 2, 3, 0, 1},
	{3, 2, 1, 0, 3, 2, 1, 0, 3, 2, 1, 0, 3, 2, 1, 0},
	{0, 0, 1, 1, 2, 2, 3, 3, 0, 0, 1, 1, 2, 2, 3, 3},
	{3, 3, 2, 2, 1, 1, 0, 0, 3, 3, 2, 2, 1, 1, 0, 0},
	{0, 2, 1, 3, 0, 2, 1, 3, 0, 2, 1, 3, 0, 2, 1, 3},
	{3, 1, 2, 0, 3, 1, 2, 0, 3, 1, 2, 0, 3, 1, 2, 0},
	{1, 3, 0, 2, 1, 3, 0, 2, 1, 3, 0, 2, 1, 3, 0, 2},
}

func (enc *Encoder) nextWatermark() [16]uint8 {
	enc.watermark--
	return watermarkAlphaIndices[enc.watermark%uint32(len(watermarkAlphaIndices))]
}

func modeBit(mode int) uint8 { return 1 << uint(mode) }

func bitsFor(modes ...int) uint8 {
	var m uint8
	for _, mo := range modes {
		m |= modeBit(mo)
	}
	return m
}

func pixelFromRGBA(px [4]uint8) Pixel {
	return Pixel{R: px[0], G: px[1], B: px[2], A: px[3], Depth: [4]uint8{8, 8, 8, 8}}
}

// rotatePixel swaps alpha with one of R/G/B (rot 1/2/3) or leaves the pixel
// untouched (rot 0), per spec.md §4.4's "try all four rotations". The
// operation is its own inverse; DecodeBlock undoes it with the same swap
// written inline.
func rotatePixel(p [4]uint8, rot int) [4]uint8 {
	switch rot {
	case 1:
		p[0], p[3] = p[3], p[0]
	case 2:
		p[1], p[3] = p[3], p[1]
	case 3:
		p[2], p[3] = p[3], p[2]
	}
	return p
}

// EncodeBlock compresses one 4x4 block of raster-order RGBA8 pixels into a
// 16-byte BPTC block, grounded on Compressor.cpp's per-block driver. It
// fails with ErrInvalidBlockModes when settings.BlockModes disables every
// mode capable of representing the block's alpha content (spec.md §7).
func (enc *Encoder) EncodeBlock(pixels [16][4]uint8, settings CompressionSettings) ([]byte, error) {
	if allSameRGBA(pixels) {
		return enc.packSingleColorBlock(pixels[0], settings), nil
	}
	if allAlphaZero(pixels) {
		return enc.packTransparentBlock(), nil
	}
	return compressGeneralBlock(pixels, settings)
}

// EncodeJob runs EncodeBlock over every block in j's range.
func (enc *Encoder) EncodeJob(j Job, settings CompressionSettings) error {
	if j.Format != FormatBPTC {
		return newError(ErrInvalidDimensions, "EncodeJob only supports BPTC")
	}
	blockSz := j.Format.BlockSizeBytes()
	for y := j.YStart; y < j.YEnd; y += 4 {
		for x := j.XStart; x < j.XEnd; x += 4 {
			idx := j.CoordsToBlockIdx(x, y)
			pixels := readBlockPixels(j.In, j.Width, j.Height, x, y)
			block, err := enc.EncodeBlock(pixels, settings)
			if err != nil {
				return wrap(err, "EncodeJob")
			}
			copy(j.Out[idx*blockSz:idx*blockSz+blockSz], block)
		}
	}
	return nil
}

func readBlockPixels(in []byte, width, height, x, y int) [16][4]uint8 {
	var out [16][4]uint8
	maxRows, maxCols := 4, 4
	if y+4 > height {
		maxRows = height - y
	}
	if x+4 > width {
		maxCols = width - x
	}
	for row := 0; row < maxRows; row++ {
		for col := 0; col < maxCols; col++ {
			o := ((y+row)*width + (x + col)) * 4
			out[row*4+col] = [4]uint8{in[o], in[o+1], in[o+2], in[o+3]}
		}
	}
	// Edge blocks replicate the last valid row/column, keeping the
	// compressor's degenerate-cluster fast paths meaningful at image edges.
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			if row < maxRows && col < maxCols {
				continue
			}
			srow, scol := row, col
			if srow >= maxRows {
				srow = maxRows - 1
			}
			if scol >= maxCols {
				scol = maxCols - 1
			}
			out[row*4+col] = out[srow*4+scol]
		}
	}
	return out
}

func allSameRGBA(pixels [16][4]uint8) bool {
	first := pixels[0]
	for _, p := range pixels[1:] {
		if p != first {
			return false
		}
	}
	return true
}

func allAlphaZero(pixels [16][4]uint8) bool {
	for _, p := range pixels {
		if p[3] != 0 {
			return false
		}
	}
	return true
}

func allOpaque(pixels [16][4]uint8) bool {
	for _, p := range pixels {
		if p[3] != 255 {
			return false
		}
	}
	return true
}

// packSingleColorBlock emits mode 5, rotation 0, with endpoints from the
// precomputed single-color table, all color indices = 1, and watermark
// alpha indices, per spec.md §4.3 step 1.
func (enc *Encoder) packSingleColorBlock(px [4]uint8, settings CompressionSettings) []byte {
	lb := LogicalBlock{Mode: 5}
	for ch := 0; ch < 3; ch++ {
		lo, hi := SingleColorEndpoints(px[ch])
		// SingleColorEndpoints returns a 7-bit grid index; packLogicalBlock
		// extracts precision bits as Component(ch)>>(8-cp), so the stored
		// value must be MSB-aligned into the 8-bit field (shift left by
		// 8-7=1), matching what QuantizeChannel's v&mask would have produced
		// on the general path.
		lb.Endpoints[0][0].SetComponent(ch, lo<<1)
		lb.Endpoints[0][1].SetComponent(ch, hi<<1)
	}
	// Mode 5's alpha channel is full 8-bit precision, so unlike the 7-bit
	// color channels above, reproducing px[3] exactly needs no lookup table
	// at all: setting both endpoints to px[3] reproduces it exactly under
	// any interpolation index.
	lb.Endpoints[0][0].A, lb.Endpoints[0][1].A = px[3], px[3]

	watermark := enc.nextWatermark()
	for i := 0; i < 16; i++ {
		lb.ColorIndices[i] = 1
		lb.AlphaIndices[i] = watermark[i]
	}
	applyAnchorSwap(&lb, ModeAttrs(5))
	return packLogicalBlock(lb)
}

// packTransparentBlock emits mode 6's header followed by 121 zero bits, per
// spec.md §4.3 step 1 ("Else if all 16 alphas are zero...").
func (enc *Encoder) packTransparentBlock() []byte {
	buf := make([]byte, 16)
	buf[0] = 0x40 // mode 6 unary header: 0b0_1000000 -> bit0..5=0, bit6=1
	return buf
}

// shapeErrorEstimate implements spec.md §4.3 step 2's cheap axis-aligned
// bounding-box-diagonal error estimate for one candidate shape. This is the
// default CompressionSettings.shapeError falls back to when the caller
// hasn't installed a ShapeSelectionFn override.
func shapeErrorEstimate(pixels [16][4]uint8, shapeIdx, nSubsets, nBuckets int, metric ErrorMetric) float64 {
	var total float64
	for subset := 0; subset < nSubsets; subset++ {
		var pts []RGBAVector
		for i := 0; i < 16; i++ {
			if SubsetForIndex(i, shapeIdx, nSubsets) == subset {
				pts = append(pts, pixelToVector(pixelFromRGBA(pixels[i])))
			}
		}
		if len(pts) == 0 {
			continue
		}
		lo, hi := pts[0], pts[0]
		for _, p := range pts[1:] {
			for c := 0; c < 4; c++ {
				if p[c] < lo[c] {
					lo[c] = p[c]
				}
				if p[c] > hi[c] {
					hi[c] = p[c]
				}
			}
		}
		for _, p := range pts {
			best := math.MaxFloat64
			for idx := 0; idx < nBuckets; idx++ {
				t := float64(idx) / float64(nBuckets-1)
				var interp RGBAVector
				for c := 0; c < 4; c++ {
					interp[c] = lo[c] + (hi[c]-lo[c])*t
				}
				e := WeightedDistSq(p, interp, [4]float64(metric))
				if e < best {
					best = e
				}
			}
			total += best
		}
	}
	return total
}

// compressGeneralBlock runs shape selection and the fixed mode search order
// of spec.md §4.3 steps 2-3, returning the lowest-error packed block.
func compressGeneralBlock(pixels [16][4]uint8, settings CompressionSettings) ([]byte, error) {
	metric := settings.ErrorMetric
	if metric == (ErrorMetric{}) {
		metric = UniformErrorMetric
	}
	opaque := allOpaque(pixels)

	candidate2Shape, minErr2 := 0, math.MaxFloat64
	earlyExit2 := false
	for shape := 0; shape < NumShapes2; shape++ {
		err := settings.shapeError(pixels, shape, 2, 4, metric)
		if err < minErr2 {
			minErr2, candidate2Shape = err, shape
		}
		if err < 1e-9 {
			earlyExit2 = true
			break
		}
	}

	candidate3Shape, minErr3 := 0, math.MaxFloat64
	earlyExit3 := false
	if opaque {
		for shape := 0; shape < NumShapes3; shape++ {
			err := settings.shapeError(pixels, shape, 3, 8, metric)
			if err < minErr3 {
				minErr3, candidate3Shape = err, shape
			}
			if err < 1e-9 {
				earlyExit3 = true
				break
			}
		}
	}

	var modeMask uint8
	if opaque {
		modeMask = settings.effectiveBlockModes() &^ bitsFor(4, 5)
	} else {
		modeMask = settings.effectiveBlockModes() & bitsFor(4, 5, 6, 7)
	}
	if modeMask == 0 {
		return nil, newError(ErrInvalidBlockModes, "block_modes mask disables every mode that can represent this block's alpha content")
	}
	modeMask = narrowMask(modeMask, earlyExit2, bitsFor(1, 3, 7))
	modeMask = narrowMask(modeMask, earlyExit3, bitsFor(0, 2))

	as := AnnealingSettings{Steps: settings.effectiveSteps(), Metric: [4]float64(metric), Rand: newFastRand(1)}

	var best []byte
	bestErr := math.MaxFloat64
	for _, mode := range []int{0, 2, 1, 3, 7, 4, 5, 6} {
		if modeMask&modeBit(mode) == 0 {
			continue
		}
		attrs := ModeAttrs(mode)
		shapeIdx := 0
		switch attrs.NumSubsets {
		case 3:
			shapeIdx = candidate3Shape
		case 2:
			shapeIdx = candidate2Shape
		}
		if mode == 0 && shapeIdx >= 16 {
			continue
		}
		lb, err := compressMode(pixels, mode, attrs, shapeIdx, as)
		if err < bestErr {
			bestErr = err
			best = packLogicalBlock(lb)
		}
	}
	if best == nil {
		// Every mode search path failed to beat math.MaxFloat64 (should not
		// happen with a non-empty modeMask); fall back to mode 6 as a safe
		// always-legal single-subset RGBA mode.
		lb, _ := compressMode(pixels, 6, ModeAttrs(6), 0, as)
		best = packLogicalBlock(lb)
	}
	return best, nil
}

func narrowMask(mask uint8, fire bool, narrow uint8) uint8 {
	if !fire {
		return mask
	}
	n := mask & narrow
	if n == 0 {
		return mask
	}
	return n
}

// compressMode builds and compresses the LogicalBlock for one candidate
// mode+shape, returning it alongside its total quantized error.
func compressMode(pixels [16][4]uint8, mode int, attrs ModeAttributes, shapeIdx int, as AnnealingSettings) (LogicalBlock, float64) {
	if attrs.HasRotation {
		return compressRotationMode(pixels, mode, attrs, as)
	}

	lb := LogicalBlock{Mode: mode, ShapeIdx: shapeIdx}
	precision := [4]uint8{uint8(attrs.ColorPrecision), uint8(attrs.ColorPrecision), uint8(attrs.ColorPrecision), uint8(attrs.AlphaPrecision)}
	var totalErr float64
	for s := 0; s < attrs.NumSubsets; s++ {
		cluster, texelIdx := buildSubsetCluster(pixels, shapeIdx, s, attrs.NumSubsets, precision)
		res := CompressCluster(cluster, attrs, precision, attrs.ColorIndexBits, as)
		totalErr += res.Error
		lb.Endpoints[s][0] = vectorToEndpointPixel(res.P1, precision)
		lb.Endpoints[s][1] = vectorToEndpointPixel(res.P2, precision)
		lb.PbitCombo[s] = res.PbitCombo
		for ci, texel := range texelIdx {
			lb.ColorIndices[texel] = uint8(res.Indices[ci])
			lb.AlphaIndices[texel] = uint8(res.Indices[ci])
		}
	}
	applyAnchorSwap(&lb, attrs)
	return lb, totalErr
}

// compressRotationMode handles modes 4 and 5: RGB and alpha are compressed
// as independent clusters, tried over all four rotations (and, for mode 4,
// both index-mode assignments), per spec.md §4.4's final paragraph.
func compressRotationMode(pixels [16][4]uint8, mode int, attrs ModeAttributes, as AnnealingSettings) (LogicalBlock, float64) {
	bestErr := math.MaxFloat64
	var best LogicalBlock

	indexModes := []int{0}
	if attrs.HasIndexMode {
		indexModes = []int{0, 1}
	}

	for rot := 0; rot < 4; rot++ {
		var rp [16][4]uint8
		for i := 0; i < 16; i++ {
			rp[i] = rotatePixel(pixels[i], rot)
		}
		colorPrecision := [4]uint8{uint8(attrs.ColorPrecision), uint8(attrs.ColorPrecision), uint8(attrs.ColorPrecision), 0}
		alphaPrecision := [4]uint8{0, 0, 0, uint8(attrs.AlphaPrecision)}
		colorCluster, texelIdx := buildSubsetCluster(rp, 0, 0, 1, colorPrecision)
		alphaCluster, _ := buildSubsetCluster(rp, 0, 0, 1, alphaPrecision)

		for _, im := range indexModes {
			colorBits, alphaBits := attrs.ColorIndexBits, attrs.AlphaIndexBits
			if im == 1 {
				colorBits, alphaBits = alphaBits, colorBits
			}
			colorRes := CompressCluster(colorCluster, attrs, colorPrecision, colorBits, as)
			alphaRes := CompressCluster(alphaCluster, attrs, alphaPrecision, alphaBits, as)
			total := colorRes.Error + alphaRes.Error
			if total >= bestErr {
				continue
			}
			bestErr = total
			lb := LogicalBlock{Mode: mode, RotationMode: rot, IndexMode: im}
			ep0 := vectorToEndpointPixel(colorRes.P1, colorPrecision)
			ep1 := vectorToEndpointPixel(colorRes.P2, colorPrecision)
			epA0 := vectorToEndpointPixel(alphaRes.P1, alphaPrecision)
			epA1 := vectorToEndpointPixel(alphaRes.P2, alphaPrecision)
			ep0.A, ep1.A = epA0.A, epA1.A
			lb.Endpoints[0][0], lb.Endpoints[0][1] = ep0, ep1
			for ci, texel := range texelIdx {
				lb.ColorIndices[texel] = uint8(colorRes.Indices[ci])
				lb.AlphaIndices[texel] = uint8(alphaRes.Indices[ci])
			}
			applyAnchorSwap(&lb, attrs)
			best = lb
		}
	}
	return best, bestErr
}

func vectorToEndpointPixel(v RGBAVector, precision [4]uint8) Pixel {
	var p Pixel
	for c := 0; c < 4; c++ {
		p.SetComponent(c, clampByte(v[c]))
		p.Depth[c] = precision[c]
	}
	return p
}

// buildSubsetCluster collects the points of one subset under shapeIdx,
// returning both the cluster and the texel indices in insertion order so
// the caller can scatter bucket assignments back to per-texel indices.
func buildSubsetCluster(pixels [16][4]uint8, shapeIdx, subset, nSubsets int, precision [4]uint8) (*RGBACluster, []int) {
	c := NewCluster()
	var texelIdx []int
	for i := 0; i < 16; i++ {
		if SubsetForIndex(i, shapeIdx, nSubsets) != subset {
			continue
		}
		px := pixelFromRGBA(pixels[i])
		for ch := 0; ch < 4; ch++ {
			if precision[ch] == 0 {
				px.SetComponent(ch, 255)
			}
		}
		c.AddPoint(px)
		texelIdx = append(texelIdx, i)
	}
	return c, texelIdx
}

// applyAnchorSwap implements spec.md §4.5's "before packing" rule: if an
// anchor texel's stored index has its top bit set, swap that subset's (or
// that channel group's) endpoints and complement the indices.
func applyAnchorSwap(lb *LogicalBlock, attrs ModeAttributes) {
	colorBits := attrs.ColorIndexBits
	if attrs.HasIndexMode && lb.IndexMode == 1 {
		colorBits = attrs.AlphaIndexBits
	}
	for s := 0; s < attrs.NumSubsets; s++ {
		anchor := 0
		if s > 0 {
			anchor = AnchorIndexForSubset(s, lb.ShapeIdx, attrs.NumSubsets)
		}
		if lb.ColorIndices[anchor]&(1<<uint(colorBits-1)) == 0 {
			continue
		}
		e0, e1 := lb.Endpoints[s][0], lb.Endpoints[s][1]
		e0.R, e1.R = e1.R, e0.R
		e0.G, e1.G = e1.G, e0.G
		e0.B, e1.B = e1.B, e0.B
		sharesAlpha := attrs.AlphaIndexBits == 0
		if sharesAlpha {
			e0.A, e1.A = e1.A, e0.A
		}
		lb.Endpoints[s][0], lb.Endpoints[s][1] = e0, e1
		full := uint8(1<<uint(colorBits)) - 1
		for i := 0; i < 16; i++ {
			if SubsetForIndex(i, lb.ShapeIdx, attrs.NumSubsets) != s {
				continue
			}
			lb.ColorIndices[i] = full - lb.ColorIndices[i]
			if sharesAlpha {
				lb.AlphaIndices[i] = lb.ColorIndices[i]
			}
		}
	}

	// Independent alpha-channel swap for rotation modes (separate alpha
	// index table, single implicit subset, anchor always texel 0).
	if attrs.AlphaIndexBits == 0 {
		return
	}
	alphaBits := attrs.AlphaIndexBits
	if attrs.HasIndexMode && lb.IndexMode == 1 {
		alphaBits = attrs.ColorIndexBits
	}
	if lb.AlphaIndices[0]&(1<<uint(alphaBits-1)) == 0 {
		return
	}
	e0, e1 := lb.Endpoints[0][0], lb.Endpoints[0][1]
	e0.A, e1.A = e1.A, e0.A
	lb.Endpoints[0][0], lb.Endpoints[0][1] = e0, e1
	full := uint8(1<<uint(alphaBits)) - 1
	for i := 0; i < 16; i++ {
		lb.AlphaIndices[i] = full - lb.AlphaIndices[i]
	}
}

// packLogicalBlock serializes a LogicalBlock into its 16-byte BPTC
// representation per spec.md §4.5.
func packLogicalBlock(lb LogicalBlock) []byte {
	attrs := ModeAttrs(lb.Mode)
	buf := make([]byte, 16)
	w := NewBitWriter(buf, 128)

	for i := 0; i < lb.Mode; i++ {
		w.WriteBits(0, 1)
	}
	w.WriteBits(1, 1)

	nSubsets := attrs.NumSubsets
	if nSubsets > 1 {
		bits := 6
		if lb.Mode == 0 {
			bits = 4
		}
		w.WriteBits(uint32(lb.ShapeIdx), bits)
	}

	if attrs.HasRotation {
		w.WriteBits(uint32(lb.RotationMode), 2)
		if attrs.HasIndexMode {
			w.WriteBits(uint32(lb.IndexMode), 1)
		}
	}

	cp, ap := attrs.ColorPrecision, attrs.AlphaPrecision
	for ch := 0; ch < 3; ch++ {
		for s := 0; s < nSubsets; s++ {
			w.WriteBits(uint32(lb.Endpoints[s][0].Component(ch))>>uint(8-cp), cp)
			w.WriteBits(uint32(lb.Endpoints[s][1].Component(ch))>>uint(8-cp), cp)
		}
	}
	if ap > 0 {
		for s := 0; s < nSubsets; s++ {
			w.WriteBits(uint32(lb.Endpoints[s][0].A)>>uint(8-ap), ap)
			w.WriteBits(uint32(lb.Endpoints[s][1].A)>>uint(8-ap), ap)
		}
	}

	switch attrs.PBitType {
	case PBitShared:
		for s := 0; s < nSubsets; s++ {
			pb1, _ := attrs.PBitCombo(lb.PbitCombo[s])
			w.WriteBits(uint32(pb1), 1)
		}
	case PBitNotShared:
		for s := 0; s < nSubsets; s++ {
			pb1, pb2 := attrs.PBitCombo(lb.PbitCombo[s])
			w.WriteBits(uint32(pb1), 1)
			w.WriteBits(uint32(pb2), 1)
		}
	}

	writeIdxArray := func(indices [16]uint8, bits int) {
		for i := 0; i < 16; i++ {
			subset := SubsetForIndex(i, lb.ShapeIdx, nSubsets)
			anchor := i == 0
			if subset > 0 {
				anchor = i == AnchorIndexForSubset(subset, lb.ShapeIdx, nSubsets)
			}
			n := bits
			if anchor {
				n--
			}
			w.WriteBits(uint32(indices[i]), n)
		}
	}

	if attrs.HasIndexMode && lb.IndexMode == 1 {
		// Widths swap along with stream order: the array written first
		// (alpha) takes the mode's normal *color* width and vice versa,
		// matching DecodeBlock's index-mode handling.
		writeIdxArray(lb.AlphaIndices, attrs.ColorIndexBits)
		writeIdxArray(lb.ColorIndices, attrs.AlphaIndexBits)
	} else {
		writeIdxArray(lb.ColorIndices, attrs.ColorIndexBits)
		if attrs.AlphaIndexBits > 0 {
			writeIdxArray(lb.AlphaIndices, attrs.AlphaIndexBits)
		}
	}

	return buf
}
