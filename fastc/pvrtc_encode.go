package fastc

import "math"

// pvrtcLabel is a small bag of source-pixel indices (with multiplicity)
// assigned to one image cell during extrema dilation, grounded on
// original_source/PVRTCEncoder/src/Compressor.cpp's Label/CompressionLabel.
type pvrtcLabel struct {
	idxs     []int
	distance int
}

func (l *pvrtcLabel) addIdx(idx int) { l.idxs = append(l.idxs, idx) }

func (l *pvrtcLabel) combine(o *pvrtcLabel) {
	if o == nil || o.distance > l.distance {
		return
	}
	if o.distance < l.distance {
		l.idxs = append([]int(nil), o.idxs...)
		l.distance = o.distance
		return
	}
	l.idxs = append(l.idxs, o.idxs...)
}

// EncodePVRTC compresses a full RGBA8 image into a PVRTC bitstream. PVRTC
// encoding is a whole-image algorithm (local-extrema labels dilate across
// the entire image), so unlike BPTC/DXT/ETC1 it cannot be split and
// dispatched per block range (spec.md §4.9's "only serial is correct").
func EncodePVRTC(pixels []byte, width, height int, twoBPP bool) []byte {
	bw, bh := 4, 4
	if twoBPP {
		bw = 8
	}
	blocksW := width / bw
	blocksH := height / bh

	get := func(x, y int) [4]uint8 {
		x = ((x % width) + width) % width
		y = ((y % height) + height) % height
		o := (y*width + x) * 4
		return [4]uint8{pixels[o], pixels[o+1], pixels[o+2], pixels[o+3]}
	}
	intensity := func(x, y int) float64 {
		return pixelFromRGBA(get(x, y)).Intensity()
	}

	low := make([]*pvrtcLabel, width*height)
	high := make([]*pvrtcLabel, width*height)

	// Step 1: local extrema labeling (spec.md §4.8 step 1).
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := intensity(x, y)
			isMax, isMin := true, true
			strictMax, strictMin := false, false
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if dx == 0 && dy == 0 {
						continue
					}
					n := intensity(x+dx, y+dy)
					if n > v {
						isMax = false
					} else if n < v {
						strictMax = true
					}
					if n < v {
						isMin = false
					} else if n > v {
						strictMin = true
					}
				}
			}
			idx := y*width + x
			if isMax && strictMax {
				high[idx] = &pvrtcLabel{idxs: []int{idx}, distance: 0}
			}
			if isMin && strictMin {
				low[idx] = &pvrtcLabel{idxs: []int{idx}, distance: 0}
			}
		}
	}

	dilate := func(field []*pvrtcLabel) {
		for round := 1; round <= 4; round++ {
			next := make([]*pvrtcLabel, len(field))
			copy(next, field)
			for y := 0; y < height; y++ {
				for x := 0; x < width; x++ {
					idx := y*width + x
					if field[idx] != nil {
						continue
					}
					var acc *pvrtcLabel
					for dy := -1; dy <= 1; dy++ {
						for dx := -1; dx <= 1; dx++ {
							if dx == 0 && dy == 0 {
								continue
							}
							nx := ((x+dx)%width + width) % width
							ny := ((y+dy)%height + height) % height
							n := field[ny*width+nx]
							if n == nil || n.distance != round-1 {
								continue
							}
							if acc == nil {
								acc = &pvrtcLabel{idxs: append([]int(nil), n.idxs...), distance: round}
							} else {
								acc.idxs = append(acc.idxs, n.idxs...)
							}
						}
					}
					if acc != nil {
						next[idx] = acc
					}
				}
			}
			copy(field, next)
		}
	}
	dilate(low)
	dilate(high)

	blockEndpointSource := func(field []*pvrtcLabel, bx, by int, fallbackExtreme func(a, b float64) bool) RGBAVector {
		var sum RGBAVector
		n := 0
		var fallbackBest RGBAVector
		fallbackSet := false
		fallbackVal := 0.0
		for row := 0; row < bh; row++ {
			for col := 0; col < bw; col++ {
				x, y := bx*bw+col, by*bh+row
				idx := y*width + x
				v := intensity(x, y)
				if !fallbackSet || fallbackExtreme(v, fallbackVal) {
					fallbackBest = pixelToVector(pixelFromRGBA(get(x, y)))
					fallbackVal = v
					fallbackSet = true
				}
				lbl := field[idx]
				if lbl == nil {
					continue
				}
				for _, si := range lbl.idxs {
					sx, sy := si%width, si/width
					sum = sum.Add(pixelToVector(pixelFromRGBA(get(sx, sy))))
					n++
				}
			}
		}
		if n == 0 {
			return fallbackBest
		}
		return sum.Scale(1.0 / float64(n))
	}

	quantizeEndpoint := func(v RGBAVector, isA bool) pvrtcEndpoint {
		opaque := v[3] >= 200
		if isA {
			if opaque {
				return pvrtcEndpoint{R: clampByte(v[0]) >> 3, G: clampByte(v[1]) >> 3, B: clampByte(v[2]) >> 4, Depth: [4]uint8{5, 5, 4, 0}, Opaque: true}
			}
			return pvrtcEndpoint{A: clampByte(v[3]) >> 5, R: clampByte(v[0]) >> 4, G: clampByte(v[1]) >> 4, B: clampByte(v[2]) >> 5, Depth: [4]uint8{4, 4, 3, 3}, Opaque: false}
		}
		if opaque {
			return pvrtcEndpoint{R: clampByte(v[0]) >> 3, G: clampByte(v[1]) >> 3, B: clampByte(v[2]) >> 3, Depth: [4]uint8{5, 5, 5, 0}, Opaque: true}
		}
		return pvrtcEndpoint{A: clampByte(v[3]) >> 5, R: clampByte(v[0]) >> 4, G: clampByte(v[1]) >> 4, B: clampByte(v[2]) >> 4, Depth: [4]uint8{4, 4, 4, 3}, Opaque: false}
	}

	blocks := make([]Block, blocksW*blocksH)
	imgA := make([][4]uint8, blocksW*blocksH)
	imgB := make([][4]uint8, blocksW*blocksH)

	for by := 0; by < blocksH; by++ {
		for bx := 0; bx < blocksW; bx++ {
			avgLow := blockEndpointSource(low, bx, by, func(a, b float64) bool { return a < b })
			avgHigh := blockEndpointSource(high, bx, by, func(a, b float64) bool { return a > b })

			epA := quantizeEndpoint(avgLow, true)
			epB := quantizeEndpoint(avgHigh, false)

			var blk Block
			blk.SetColorA(epA)
			blk.SetColorB(epB)
			linear := by*blocksW + bx
			blocks[linear] = blk

			ar, ag, ab, aa := epA.To5555()
			imgA[linear] = [4]uint8{msbReplicate(ar, 5, 8), msbReplicate(ag, 5, 8), msbReplicate(ab, 5, 8), msbReplicate(aa, 5, 8)}
			br, bg, bb, ba := epB.To5555()
			imgB[linear] = [4]uint8{msbReplicate(br, 5, 8), msbReplicate(bg, 5, 8), msbReplicate(bb, 5, 8), msbReplicate(ba, 5, 8)}
		}
	}

	bitsPerTexel := 2
	weights := []int{0, 3, 5, 8}
	if twoBPP {
		bitsPerTexel = 1
		weights = []int{0, 8}
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			fx := float64(x)/float64(bw) - 0.5
			fy := float64(y)/float64(bh) - 0.5
			pa := bilinearSamplePVRTC(imgA, blocksW, blocksH, fx, fy)
			pb := bilinearSamplePVRTC(imgB, blocksW, blocksH, fx, fy)
			orig := get(x, y)

			bestErr := math.MaxFloat64
			bestCode := 0
			for code, w := range weights {
				var e float64
				for c := 0; c < 4; c++ {
					v := (int(pa[c])*(8-w) + int(pb[c])*w + 4) / 8
					d := float64(v) - float64(orig[c])
					e += d * d
				}
				if e < bestErr {
					bestErr = e
					bestCode = code
				}
			}

			bx, by := x/bw, y/bh
			texelIdx := uint32((y%bh)*bw + (x % bw))
			blk := blocks[by*blocksW+bx]
			blk.SetLerpValue(texelIdx, uint8(bestCode), bitsPerTexel)
			blocks[by*blocksW+bx] = blk
		}
	}

	out := make([]byte, blocksW*blocksH*8)
	for by := 0; by < blocksH; by++ {
		for bx := 0; bx < blocksW; bx++ {
			morton := mortonInterleave(uint32(by), uint32(bx))
			offset := int(morton) * 8
			copy(out[offset:offset+8], blocks[by*blocksW+bx].Pack())
		}
	}
	return out
}

// EncodeJobPVRTC runs EncodePVRTC over the whole image described by j.
func EncodeJobPVRTC(j Job) error {
	if j.Format != FormatPVRTC4BPP && j.Format != FormatPVRTC2BPP {
		return newError(ErrInvalidDimensions, "EncodeJobPVRTC only supports PVRTC formats")
	}
	out := EncodePVRTC(j.In, j.Width, j.Height, j.Format == FormatPVRTC2BPP)
	copy(j.Out, out)
	return nil
}
