package fastc

// DXT1/DXT5 block codec, grounded on original_source/DXTEncoder/src/
// DXTCompressor.cpp (GetMinMaxColors/GetMinMaxColorsWithAlpha's inset
// bounding box, EmitColorIndices' nearest-of-four assignment,
// EmitAlphaIndices' 8-step ramp) and Decompressor.cpp's block decode loop.
// Specified only at the framing level (spec.md §1): no alpha
// premultiplication handling and no DXT2/3/4 explicit-alpha variants.

const dxtInsetShift = 4

func rgb888To565(r, g, b uint8) uint16 {
	return uint16(r>>3)<<11 | uint16(g>>2)<<5 | uint16(b>>3)
}

func rgb565To888(c uint16) (uint8, uint8, uint8) {
	r := uint8((c >> 11) & 0x1F)
	g := uint8((c >> 5) & 0x3F)
	b := uint8(c & 0x1F)
	return msbReplicate(r, 5, 8), msbReplicate(g, 6, 8), msbReplicate(b, 5, 8)
}

// dxtMinMaxColor finds the inset bounding box of a 16-pixel block's RGB (and
// optionally alpha) channels, the same axis-aligned heuristic DXTCompressor.cpp
// uses in place of a true principal-axis fit.
func dxtMinMaxColor(pixels [16][4]uint8, withAlpha bool) (lo, hi [4]uint8) {
	lo = [4]uint8{255, 255, 255, 255}
	hi = [4]uint8{0, 0, 0, 0}
	n := 3
	if withAlpha {
		n = 4
	}
	for _, p := range pixels {
		for c := 0; c < n; c++ {
			if p[c] < lo[c] {
				lo[c] = p[c]
			}
			if p[c] > hi[c] {
				hi[c] = p[c]
			}
		}
	}
	for c := 0; c < n; c++ {
		inset := (hi[c] - lo[c]) >> dxtInsetShift
		if int(lo[c])+int(inset) <= 255 {
			lo[c] += inset
		} else {
			lo[c] = 255
		}
		if hi[c] >= inset {
			hi[c] -= inset
		} else {
			hi[c] = 0
		}
	}
	return
}

// packDXT1Color packs a 4x4 block's color channels into the 8-byte DXT1
// payload: hi.565 word, lo.565 word, 32 bits of 2-bit indices.
func packDXT1Color(pixels [16][4]uint8) []byte {
	lo, hi := dxtMinMaxColor(pixels, false)

	c0 := rgb888To565(hi[0], hi[1], hi[2])
	c1 := rgb888To565(lo[0], lo[1], lo[2])

	r0, g0, b0 := rgb565To888(c0)
	r1, g1, b1 := rgb565To888(c1)
	palette := [4][3]int{
		{int(r0), int(g0), int(b0)},
		{int(r1), int(g1), int(b1)},
		{(2*int(r0) + int(r1)) / 3, (2*int(g0) + int(g1)) / 3, (2*int(b0) + int(b1)) / 3},
		{(int(r0) + 2*int(r1)) / 3, (int(g0) + 2*int(g1)) / 3, (int(b0) + 2*int(b1)) / 3},
	}

	var indices uint32
	for i := 15; i >= 0; i-- {
		p := pixels[i]
		best, bestErr := 0, -1
		for ci, c := range palette {
			dr := int(p[0]) - c[0]
			dg := int(p[1]) - c[1]
			db := int(p[2]) - c[2]
			e := dr*dr + dg*dg + db*db
			if bestErr < 0 || e < bestErr {
				bestErr, best = e, ci
			}
		}
		indices |= uint32(best) << uint(i*2)
	}

	out := make([]byte, 8)
	out[0], out[1] = byte(c0), byte(c0>>8)
	out[2], out[3] = byte(c1), byte(c1>>8)
	out[4] = byte(indices)
	out[5] = byte(indices >> 8)
	out[6] = byte(indices >> 16)
	out[7] = byte(indices >> 24)
	return out
}

func decodeDXT1Color(block []byte) [16][4]uint8 {
	c0 := uint16(block[0]) | uint16(block[1])<<8
	c1 := uint16(block[2]) | uint16(block[3])<<8
	indices := uint32(block[4]) | uint32(block[5])<<8 | uint32(block[6])<<16 | uint32(block[7])<<24

	r0, g0, b0 := rgb565To888(c0)
	r1, g1, b1 := rgb565To888(c1)
	palette := [4][3]uint8{
		{r0, g0, b0},
		{r1, g1, b1},
		{clampByte(float64((2*int(r0) + int(r1)) / 3)), clampByte(float64((2*int(g0) + int(g1)) / 3)), clampByte(float64((2*int(b0) + int(b1)) / 3))},
		{clampByte(float64((int(r0) + 2*int(r1)) / 3)), clampByte(float64((int(g0) + 2*int(g1)) / 3)), clampByte(float64((int(b0) + 2*int(b1)) / 3))},
	}

	var out [16][4]uint8
	for i := 0; i < 16; i++ {
		sel := (indices >> uint(i*2)) & 3
		c := palette[sel]
		out[i] = [4]uint8{c[0], c[1], c[2], 255}
	}
	return out
}

// packDXT5Alpha packs the 8-byte alpha block: hi, lo, then 16 3-bit indices
// into a 48-bit ramp, matching EmitAlphaIndices' always-8-step convention
// (alpha0 is always the max so the 6-step/transparent mode never fires).
func packDXT5Alpha(pixels [16][4]uint8) []byte {
	lo, hi := dxtMinMaxColor(pixels, true)
	maxA, minA := hi[3], lo[3]

	ramp := [8]int{
		int(maxA), int(minA),
		(6*int(maxA) + 1*int(minA)) / 7,
		(5*int(maxA) + 2*int(minA)) / 7,
		(4*int(maxA) + 3*int(minA)) / 7,
		(3*int(maxA) + 4*int(minA)) / 7,
		(2*int(maxA) + 5*int(minA)) / 7,
		(1*int(maxA) + 6*int(minA)) / 7,
	}

	var indices [16]uint8
	for i := 0; i < 16; i++ {
		a := int(pixels[i][3])
		best, bestErr := 0, -1
		for ci, v := range ramp {
			d := a - v
			if d < 0 {
				d = -d
			}
			if bestErr < 0 || d < bestErr {
				bestErr, best = d, ci
			}
		}
		indices[i] = uint8(best)
	}

	out := make([]byte, 8)
	out[0], out[1] = maxA, minA
	var bits uint64
	for i := 0; i < 16; i++ {
		bits |= uint64(indices[i]) << uint(i*3)
	}
	for i := 0; i < 6; i++ {
		out[2+i] = byte(bits >> uint(i*8))
	}
	return out
}

func decodeDXT5Alpha(block []byte) [16]uint8 {
	maxA, minA := block[0], block[1]
	var bits uint64
	for i := 0; i < 6; i++ {
		bits |= uint64(block[2+i]) << uint(i*8)
	}

	var ramp [8]uint8
	ramp[0], ramp[1] = maxA, minA
	if maxA > minA {
		for k := 1; k <= 6; k++ {
			ramp[1+k] = clampByte(float64((int(maxA)*(7-k) + int(minA)*k) / 7))
		}
	} else {
		for k := 1; k <= 4; k++ {
			ramp[1+k] = clampByte(float64((int(maxA)*(5-k) + int(minA)*k) / 5))
		}
		ramp[6] = 0
		ramp[7] = 255
	}

	var out [16]uint8
	for i := 0; i < 16; i++ {
		sel := uint8((bits >> uint(i*3)) & 7)
		out[i] = ramp[sel]
	}
	return out
}

// EncodeDXT1Block compresses one 4x4 RGBA block into 8 bytes.
func EncodeDXT1Block(pixels [16][4]uint8) []byte { return packDXT1Color(pixels) }

// EncodeDXT5Block compresses one 4x4 RGBA block into 16 bytes: an 8-byte
// alpha block followed by a DXT1-style color block.
func EncodeDXT5Block(pixels [16][4]uint8) []byte {
	out := make([]byte, 16)
	copy(out[:8], packDXT5Alpha(pixels))
	copy(out[8:], packDXT1Color(pixels))
	return out
}

// DecodeDXT1Block decompresses 8 bytes into a 4x4 opaque RGBA block.
func DecodeDXT1Block(block []byte) [16][4]uint8 { return decodeDXT1Color(block) }

// DecodeDXT5Block decompresses 16 bytes into a 4x4 RGBA block.
func DecodeDXT5Block(block []byte) [16][4]uint8 {
	alpha := decodeDXT5Alpha(block[:8])
	out := decodeDXT1Color(block[8:])
	for i := range out {
		out[i][3] = alpha[i]
	}
	return out
}

// EncodeJobDXT runs the DXT1 or DXT5 encoder over every block in j's range.
func EncodeJobDXT(j Job) error {
	if j.Format != FormatDXT1 && j.Format != FormatDXT5 {
		return newError(ErrInvalidDimensions, "EncodeJobDXT only supports DXT1/DXT5")
	}
	blockSz := j.Format.BlockSizeBytes()
	for y := j.YStart; y < j.YEnd; y += 4 {
		for x := j.XStart; x < j.XEnd; x += 4 {
			idx := j.CoordsToBlockIdx(x, y)
			pixels := readBlockPixels(j.In, j.Width, j.Height, x, y)
			var block []byte
			if j.Format == FormatDXT5 {
				block = EncodeDXT5Block(pixels)
			} else {
				block = EncodeDXT1Block(pixels)
			}
			copy(j.Out[idx*blockSz:idx*blockSz+blockSz], block)
		}
	}
	return nil
}

// DecodeJobDXT runs the DXT1 or DXT5 decoder over every block in j's range.
func DecodeJobDXT(j Job) error {
	if j.Format != FormatDXT1 && j.Format != FormatDXT5 {
		return newError(ErrInvalidDimensions, "DecodeJobDXT only supports DXT1/DXT5")
	}
	blockSz := j.Format.BlockSizeBytes()
	for y := j.YStart; y < j.YEnd; y += 4 {
		for x := j.XStart; x < j.XEnd; x += 4 {
			idx := j.CoordsToBlockIdx(x, y)
			raw := j.In[idx*blockSz : idx*blockSz+blockSz]
			var pixels [16][4]uint8
			if j.Format == FormatDXT5 {
				pixels = DecodeDXT5Block(raw)
			} else {
				pixels = DecodeDXT1Block(raw)
			}
			for row := 0; row < 4 && y+row < j.Height; row++ {
				for col := 0; col < 4 && x+col < j.Width; col++ {
					o := ((y+row)*j.Width + (x + col)) * 4
					p := pixels[row*4+col]
					j.Out[o], j.Out[o+1], j.Out[o+2], j.Out[o+3] = p[0], p[1], p[2], p[3]
				}
			}
		}
	}
	return nil
}
