package fastc

import "math"

// decodePVRTCImage reconstructs a full RGBA8 image from a PVRTC bitstream,
// grounded on original_source/PVRTCEncoder/src/{Decompressor,PVRTCImage}.cpp:
// de-interleave Morton-ordered blocks, extract two low-res endpoint images,
// bilinearly upsample both with wraparound, then blend per-texel using the
// block's modulation weight (spec.md §4.7).
func decodePVRTCImage(in []byte, width, height int, twoBPP bool) []byte {
	bw, bh := 4, 4
	if twoBPP {
		bw = 8
	}
	blocksW := width / bw
	blocksH := height / bh

	blocks := make([]Block, blocksW*blocksH)
	imgA := make([][4]uint8, blocksW*blocksH)
	imgB := make([][4]uint8, blocksW*blocksH)

	for by := 0; by < blocksH; by++ {
		for bx := 0; bx < blocksW; bx++ {
			morton := mortonInterleave(uint32(by), uint32(bx))
			offset := int(morton) * 8
			b := NewBlock(in[offset : offset+8])
			linear := by*blocksW + bx
			blocks[linear] = b

			ar, ag, ab, aa := b.ColorA().To5555()
			imgA[linear] = [4]uint8{msbReplicate(ar, 5, 8), msbReplicate(ag, 5, 8), msbReplicate(ab, 5, 8), msbReplicate(aa, 5, 8)}
			br, bg, bb, ba := b.ColorB().To5555()
			imgB[linear] = [4]uint8{msbReplicate(br, 5, 8), msbReplicate(bg, 5, 8), msbReplicate(bb, 5, 8), msbReplicate(ba, 5, 8)}
		}
	}

	bitsPerTexel := 2
	if twoBPP {
		bitsPerTexel = 1
	}

	out := make([]byte, width*height*4)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			fx := float64(x)/float64(bw) - 0.5
			fy := float64(y)/float64(bh) - 0.5
			pa := bilinearSamplePVRTC(imgA, blocksW, blocksH, fx, fy)
			pb := bilinearSamplePVRTC(imgB, blocksW, blocksH, fx, fy)

			bx, by := x/bw, y/bh
			block := blocks[by*blocksW+bx]
			texelIdx := uint32((y%bh)*bw + (x % bw))
			m := block.GetLerpValue(texelIdx, bitsPerTexel)

			weight, punchThrough := modulationWeight(m, bitsPerTexel, block.GetModeBit())

			o := (y*width + x) * 4
			for c := 0; c < 4; c++ {
				v := (int(pa[c])*(8-weight) + int(pb[c])*weight + 4) / 8
				if c == 3 && punchThrough {
					v = 0
				}
				out[o+c] = clampByte(float64(v))
			}
		}
	}
	return out
}

// modulationWeight maps a raw modulation code to an /8 blend weight and a
// punch-through flag, per spec.md §4.7 step 5.
func modulationWeight(code uint8, bitsPerTexel int, modeBit bool) (int, bool) {
	if bitsPerTexel == 1 {
		if code == 0 {
			return 0, false
		}
		return 8, false
	}
	if !modeBit {
		weights := [4]int{0, 3, 5, 8}
		return weights[code&3], false
	}
	switch code & 3 {
	case 0:
		return 0, false
	case 1:
		return 0, true
	case 2:
		return 4, false
	default:
		return 8, false
	}
}

func bilinearSamplePVRTC(img [][4]uint8, w, h int, fx, fy float64) [4]uint8 {
	fx = math.Mod(fx, float64(w))
	if fx < 0 {
		fx += float64(w)
	}
	fy = math.Mod(fy, float64(h))
	if fy < 0 {
		fy += float64(h)
	}
	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	tx := fx - float64(x0)
	ty := fy - float64(y0)
	x1 := (x0 + 1) % w
	y1 := (y0 + 1) % h
	x0m := x0 % w
	y0m := y0 % h

	get := func(xx, yy int) RGBAVector {
		p := img[yy*w+xx]
		return RGBAVector{float64(p[0]), float64(p[1]), float64(p[2]), float64(p[3])}
	}
	c00, c10 := get(x0m, y0m), get(x1, y0m)
	c01, c11 := get(x0m, y1), get(x1, y1)
	top := c00.Scale(1 - tx).Add(c10.Scale(tx))
	bot := c01.Scale(1 - tx).Add(c11.Scale(tx))
	res := top.Scale(1 - ty).Add(bot.Scale(ty))
	return [4]uint8{clampByte(res[0]), clampByte(res[1]), clampByte(res[2]), clampByte(res[3])}
}

// DecodeJobPVRTC decodes a full PVRTC image (the algorithm is inherently
// whole-image, per spec.md §4.9's dispatcher note) and writes it into j.Out.
func DecodeJobPVRTC(j Job) error {
	if j.Format != FormatPVRTC4BPP && j.Format != FormatPVRTC2BPP {
		return newError(ErrInvalidDimensions, "DecodeJobPVRTC only supports PVRTC formats")
	}
	out := decodePVRTCImage(j.In, j.Width, j.Height, j.Format == FormatPVRTC2BPP)
	copy(j.Out, out)
	return nil
}
