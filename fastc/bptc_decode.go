package fastc

// DecodeBlock decodes one 128-bit BPTC block into 16 raster-order RGBA8
// pixels (packed R,G,B,A in each element's low 4 bytes), grounded closely
// on original_source/BPTCEncoder/src/Decompressor.cpp's UnpackParams,
// ConvertEndpoint and DecompressBC7Block.
func DecodeBlock(block []byte) [16][4]uint8 {
	r := NewBitReader(block)

	mode := 0
	for mode < 8 && r.ReadBit() == 0 {
		mode++
	}
	if mode >= 8 {
		// MalformedBlock (spec.md §7): no terminating one bit in the unary
		// header. Degrade to a defined fallback instead of aborting.
		var out [16][4]uint8
		for i := range out {
			out[i] = [4]uint8{0, 0, 0, 255}
		}
		return out
	}

	attrs := ModeAttrs(mode)

	shapeIdx := 0
	if attrs.NumSubsets > 1 {
		bits := 6
		if mode == 0 {
			bits = 4
		}
		shapeIdx = int(r.ReadBits(bits))
	}

	rotation := 0
	indexMode := 0
	if attrs.HasRotation {
		rotation = int(r.ReadBits(2))
		if attrs.HasIndexMode {
			indexMode = int(r.ReadBits(1))
		}
	}

	nSubsets := attrs.NumSubsets
	cp := attrs.ColorPrecision
	ap := attrs.AlphaPrecision

	// Endpoint channels are written channel-major across subsets: all R
	// endpoints first (subset 0 ep0, ep1, subset 1 ep0, ep1, ...), then G,
	// then B, then A (spec.md §4.5 step 5).
	var eps [3][2][4]uint32
	for ch := 0; ch < 3; ch++ {
		for s := 0; s < nSubsets; s++ {
			for e := 0; e < 2; e++ {
				eps[s][e][ch] = r.ReadBits(cp) << uint(8-cp)
			}
		}
	}
	for s := 0; s < nSubsets; s++ {
		for e := 0; e < 2; e++ {
			if ap == 0 {
				eps[s][e][3] = 0xFF
			} else {
				eps[s][e][3] = r.ReadBits(ap) << uint(8-ap)
			}
		}
	}

	effCp, effAp := cp, ap
	switch attrs.PBitType {
	case PBitShared:
		for s := 0; s < nSubsets; s++ {
			pbit := uint32(r.ReadBit())
			for ch := 0; ch < 4; ch++ {
				if ch == 3 && ap == 0 {
					continue
				}
				shift := uint(7 - cp)
				if ch == 3 {
					shift = uint(7 - ap)
				}
				eps[s][0][ch] |= pbit << shift
				eps[s][1][ch] |= pbit << shift
			}
		}
		effCp++
		if ap != 0 {
			effAp++
		}
	case PBitNotShared:
		for s := 0; s < nSubsets; s++ {
			for e := 0; e < 2; e++ {
				pbit := uint32(r.ReadBit())
				for ch := 0; ch < 4; ch++ {
					if ch == 3 && ap == 0 {
						continue
					}
					shift := uint(7 - cp)
					if ch == 3 {
						shift = uint(7 - ap)
					}
					eps[s][e][ch] |= pbit << shift
				}
			}
		}
		effCp++
		if ap != 0 {
			effAp++
		}
	}

	for s := 0; s < nSubsets; s++ {
		for e := 0; e < 2; e++ {
			for ch := 0; ch < 3; ch++ {
				eps[s][e][ch] |= eps[s][e][ch] >> uint(effCp)
				if eps[s][e][ch] > 0xFF {
					eps[s][e][ch] = 0xFF
				}
			}
			if ap != 0 {
				eps[s][e][3] |= eps[s][e][3] >> uint(effAp)
				if eps[s][e][3] > 0xFF {
					eps[s][e][3] = 0xFF
				}
			}
		}
	}

	// Normally color indices are written before alpha indices at their
	// respective widths. When index_mode==1 (mode 4 only) the widths swap
	// AND alpha is written first (spec.md §4.5 step 8).
	colorIdxBits, alphaIdxBits := attrs.ColorIndexBits, attrs.AlphaIndexBits
	if attrs.HasIndexMode && indexMode == 1 {
		colorIdxBits, alphaIdxBits = alphaIdxBits, colorIdxBits
	}

	readIdxArray := func(bits int) [16]uint32 {
		var arr [16]uint32
		for i := 0; i < 16; i++ {
			subset := SubsetForIndex(i, shapeIdx, nSubsets)
			anchor := i == 0 || i == AnchorIndexForSubset(subset, shapeIdx, nSubsets)
			n := bits
			if anchor {
				n--
			}
			arr[i] = r.ReadBits(n)
		}
		return arr
	}

	var colorIdx, alphaIdx [16]uint32
	if attrs.HasIndexMode && indexMode == 1 {
		alphaIdx = readIdxArray(alphaIdxBits)
		colorIdx = readIdxArray(colorIdxBits)
	} else {
		colorIdx = readIdxArray(colorIdxBits)
		if attrs.AlphaIndexBits > 0 {
			alphaIdx = readIdxArray(alphaIdxBits)
		} else {
			alphaIdx = colorIdx
			alphaIdxBits = colorIdxBits
		}
	}

	var out [16][4]uint8
	for i := 0; i < 16; i++ {
		subset := SubsetForIndex(i, shapeIdx, nSubsets)
		e0, e1 := eps[subset][0], eps[subset][1]
		var px [4]uint8
		for ch := 0; ch < 3; ch++ {
			px[ch] = Interpolate(uint8(e0[ch]), uint8(e1[ch]), colorIdxBits, colorIdx[i])
		}
		px[3] = Interpolate(uint8(e0[3]), uint8(e1[3]), alphaIdxBits, alphaIdx[i])

		if attrs.HasRotation && rotation != 0 {
			switch rotation {
			case 1:
				px[0], px[3] = px[3], px[0]
			case 2:
				px[1], px[3] = px[3], px[1]
			case 3:
				px[2], px[3] = px[3], px[2]
			}
		}
		out[i] = px
	}
	return out
}

// DecodeJob runs DecodeBlock over every block in j's range, writing raw
// RGBA8 pixels into j.Out in row-major order (spec.md §4.9/§6).
func DecodeJob(j Job) error {
	if j.Format != FormatBPTC {
		return newError(ErrInvalidDimensions, "DecodeJob only supports BPTC")
	}
	blockSz := j.Format.BlockSizeBytes()
	for y := j.YStart; y < j.YEnd; y += 4 {
		for x := j.XStart; x < j.XEnd; x += 4 {
			idx := j.CoordsToBlockIdx(x, y)
			block := j.In[idx*blockSz : idx*blockSz+blockSz]
			pixels := DecodeBlock(block)
			writeBlockPixels(j.Out, j.Width, j.Height, x, y, pixels)
		}
	}
	return nil
}

func writeBlockPixels(out []byte, width, height, x, y int, pixels [16][4]uint8) {
	maxRows := 4
	if y+4 > height {
		maxRows = height - y
	}
	maxCols := 4
	if x+4 > width {
		maxCols = width - x
	}
	for row := 0; row < maxRows; row++ {
		for col := 0; col < maxCols; col++ {
			p := pixels[row*4+col]
			o := ((y+row)*width + (x + col)) * 4
			out[o+0] = p[0]
			out[o+1] = p[1]
			out[o+2] = p[2]
			out[o+3] = p[3]
		}
	}
}
