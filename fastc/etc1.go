package fastc

// ETC1 block codec. Decompressor.cpp/Compressor.cpp delegate the actual
// bit-twiddling to the external rg_etc1 library (not present in
// original_source), so only the framing is grounded on the corpus per
// spec.md §1/SPEC_FULL.md §4.11: a 4x4 block splits into two 2x4 (or 4x2,
// selected by a flip bit) sub-blocks, each holding a 444 base color and a
// 3-bit index into the standard 8-entry ETC1 intensity-modifier table; a
// 2-bit-per-texel index then selects one of each table's four signed
// offsets. This is the framing only, not an exhaustive differential/
// individual-mode search (DESIGN.md O5).

var etc1IntensityTables = [8][4]int16{
	{-8, -2, 2, 8},
	{-17, -5, 5, 17},
	{-29, -9, 9, 29},
	{-42, -13, 13, 42},
	{-60, -18, 18, 60},
	{-80, -24, 24, 80},
	{-106, -33, 33, 106},
	{-183, -47, 47, 183},
}

func etc1SubblockIndices(flip bool, sub int) [8]int {
	var out [8]int
	n := 0
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			inSub1 := col >= 2
			if flip {
				inSub1 = row >= 2
			}
			if (sub == 1) == inSub1 {
				out[n] = row*4 + col
				n++
			}
		}
	}
	return out
}

func etc1AverageRGB(pixels [16][4]uint8, idxs [8]int) (int, int, int) {
	var r, g, b int
	for _, i := range idxs {
		r += int(pixels[i][0])
		g += int(pixels[i][1])
		b += int(pixels[i][2])
	}
	return r / 8, g / 8, b / 8
}

// etc1PickTable estimates the subblock's intensity range and chooses the
// modifier table whose largest magnitude best covers it.
func etc1PickTable(pixels [16][4]uint8, idxs [8]int, baseR, baseG, baseB int) int {
	maxDev := 0
	for _, i := range idxs {
		for _, d := range []int{int(pixels[i][0]) - baseR, int(pixels[i][1]) - baseG, int(pixels[i][2]) - baseB} {
			if d < 0 {
				d = -d
			}
			if d > maxDev {
				maxDev = d
			}
		}
	}
	best, bestDiff := 0, -1
	for t, mods := range etc1IntensityTables {
		top := int(mods[3])
		diff := top - maxDev
		if diff < 0 {
			diff = -diff
		}
		if bestDiff < 0 || diff < bestDiff {
			bestDiff, best = diff, t
		}
	}
	return best
}

// EncodeETC1Block compresses one 4x4 RGB block (alpha ignored, ETC1 carries
// no alpha channel) into 8 bytes.
func EncodeETC1Block(pixels [16][4]uint8) []byte {
	bestFlip := false
	bestErr := -1.0
	var bestPack struct {
		r, g, b [2]int
		table   [2]int
		sel     [16]uint8
	}

	for _, flip := range []bool{false, true} {
		idx0 := etc1SubblockIndices(flip, 0)
		idx1 := etc1SubblockIndices(flip, 1)

		r0, g0, b0 := etc1AverageRGB(pixels, idx0)
		r1, g1, b1 := etc1AverageRGB(pixels, idx1)
		t0 := etc1PickTable(pixels, idx0, r0, g0, b0)
		t1 := etc1PickTable(pixels, idx1, r1, g1, b1)

		var sel [16]uint8
		totalErr := 0.0
		for sub, idxs := range [2][8]int{idx0, idx1} {
			base := [3]int{r0, g0, b0}
			table := t0
			if sub == 1 {
				base = [3]int{r1, g1, b1}
				table = t1
			}
			for _, i := range idxs {
				best, bestE := 0, -1.0
				for code, mod := range etc1IntensityTables[table] {
					cr := clampInt(base[0] + int(mod))
					cg := clampInt(base[1] + int(mod))
					cb := clampInt(base[2] + int(mod))
					e := sqDiff(cr, int(pixels[i][0])) + sqDiff(cg, int(pixels[i][1])) + sqDiff(cb, int(pixels[i][2]))
					if bestE < 0 || float64(e) < bestE {
						bestE, best = float64(e), code
					}
				}
				sel[i] = uint8(best)
				totalErr += bestE
			}
		}

		if bestErr < 0 || totalErr < bestErr {
			bestErr = totalErr
			bestFlip = flip
			bestPack.r = [2]int{r0 >> 4, r1 >> 4}
			bestPack.g = [2]int{g0 >> 4, g1 >> 4}
			bestPack.b = [2]int{b0 >> 4, b1 >> 4}
			bestPack.table = [2]int{t0, t1}
			bestPack.sel = sel
		}
	}

	var bits uint64
	if bestFlip {
		bits |= 1 << 62
	}
	bits |= uint64(bestPack.r[0]&0xF) << 58
	bits |= uint64(bestPack.g[0]&0xF) << 54
	bits |= uint64(bestPack.b[0]&0xF) << 50
	bits |= uint64(bestPack.r[1]&0xF) << 46
	bits |= uint64(bestPack.g[1]&0xF) << 42
	bits |= uint64(bestPack.b[1]&0xF) << 38
	bits |= uint64(bestPack.table[0]&0x7) << 35
	bits |= uint64(bestPack.table[1]&0x7) << 32
	for i := 0; i < 16; i++ {
		bits |= uint64(bestPack.sel[i]&0x3) << uint(i*2)
	}

	out := make([]byte, 8)
	for i := 0; i < 8; i++ {
		out[i] = byte(bits >> uint(8*i))
	}
	return out
}

// DecodeETC1Block decompresses 8 bytes into a 4x4 opaque RGBA block.
func DecodeETC1Block(block []byte) [16][4]uint8 {
	var bits uint64
	for i := 0; i < 8; i++ {
		bits |= uint64(block[i]) << uint(8*i)
	}
	flip := (bits>>62)&1 != 0
	r0 := msbReplicate(uint8((bits>>58)&0xF), 4, 8)
	g0 := msbReplicate(uint8((bits>>54)&0xF), 4, 8)
	b0 := msbReplicate(uint8((bits>>50)&0xF), 4, 8)
	r1 := msbReplicate(uint8((bits>>46)&0xF), 4, 8)
	g1 := msbReplicate(uint8((bits>>42)&0xF), 4, 8)
	b1 := msbReplicate(uint8((bits>>38)&0xF), 4, 8)
	t0 := int((bits >> 35) & 0x7)
	t1 := int((bits >> 32) & 0x7)

	var out [16][4]uint8
	idx0 := etc1SubblockIndices(flip, 0)
	idx1 := etc1SubblockIndices(flip, 1)
	fill := func(idxs [8]int, r, g, b uint8, table int) {
		for _, i := range idxs {
			sel := uint8((bits >> uint(i*2)) & 0x3)
			mod := int(etc1IntensityTables[table][sel])
			out[i] = [4]uint8{
				uint8(clampInt(int(r) + mod)),
				uint8(clampInt(int(g) + mod)),
				uint8(clampInt(int(b) + mod)),
				255,
			}
		}
	}
	fill(idx0, r0, g0, b0, t0)
	fill(idx1, r1, g1, b1, t1)
	return out
}

func clampInt(v int) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

func sqDiff(a, b int) int {
	d := a - b
	return d * d
}

// EncodeJobETC1 runs the ETC1 encoder over every block in j's range.
func EncodeJobETC1(j Job) error {
	if j.Format != FormatETC1 {
		return newError(ErrInvalidDimensions, "EncodeJobETC1 only supports ETC1")
	}
	blockSz := j.Format.BlockSizeBytes()
	for y := j.YStart; y < j.YEnd; y += 4 {
		for x := j.XStart; x < j.XEnd; x += 4 {
			idx := j.CoordsToBlockIdx(x, y)
			pixels := readBlockPixels(j.In, j.Width, j.Height, x, y)
			block := EncodeETC1Block(pixels)
			copy(j.Out[idx*blockSz:idx*blockSz+blockSz], block)
		}
	}
	return nil
}

// DecodeJobETC1 runs the ETC1 decoder over every block in j's range.
func DecodeJobETC1(j Job) error {
	if j.Format != FormatETC1 {
		return newError(ErrInvalidDimensions, "DecodeJobETC1 only supports ETC1")
	}
	blockSz := j.Format.BlockSizeBytes()
	for y := j.YStart; y < j.YEnd; y += 4 {
		for x := j.XStart; x < j.XEnd; x += 4 {
			idx := j.CoordsToBlockIdx(x, y)
			raw := j.In[idx*blockSz : idx*blockSz+blockSz]
			pixels := DecodeETC1Block(raw)
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
