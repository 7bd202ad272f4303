package fastc

// Pixel is a four-channel (R, G, B, A) value where each channel carries its
// own bit depth. A depth of 0 means the channel is not stored; it reads back
// as fully opaque (255) once expanded to 8 bits.
//
// Grounded on original_source/PVRTCEncoder/src/Pixel.h (the union-of-4-uint8
// shape with a per-channel depth array) generalized to serve both the BPTC
// and PVRTC engines, which is how the teacher's single concrete Pixel
// (no SIMD-subclass hierarchy) replaces the original's Pixel/PixelSIMD split
// per the Design Notes' "single concrete Pixel" guidance.
type Pixel struct {
	R, G, B, A uint8
	Depth      [4]uint8 // order: R, G, B, A
}

// NewPixel8 builds an 8-bit-per-channel opaque-capable pixel.
func NewPixel8(r, g, b, a uint8) Pixel {
	return Pixel{R: r, G: g, B: b, A: a, Depth: [4]uint8{8, 8, 8, 8}}
}

// Component returns channel c (0=R,1=G,2=B,3=A).
func (p Pixel) Component(c int) uint8 {
	switch c {
	case 0:
		return p.R
	case 1:
		return p.G
	case 2:
		return p.B
	default:
		return p.A
	}
}

// SetComponent sets channel c (0=R,1=G,2=B,3=A).
func (p *Pixel) SetComponent(c int, v uint8) {
	switch c {
	case 0:
		p.R = v
	case 1:
		p.G = v
	case 2:
		p.B = v
	default:
		p.A = v
	}
}

// ChangeBitDepth reassigns every channel's bit depth, expanding
// (MSB-replication) or contracting (truncation) as needed.
func (p *Pixel) ChangeBitDepth(newDepth [4]uint8) {
	for c := 0; c < 4; c++ {
		old := p.Depth[c]
		v := p.Component(c)
		var nv uint8
		switch {
		case old == 0:
			nv = 0xFF
		case newDepth[c] == old:
			nv = v
		case newDepth[c] > old:
			nv = msbReplicate(v, old, newDepth[c])
		default:
			// Contraction: truncate the low (old-new) bits.
			nv = v >> (old - newDepth[c])
		}
		p.SetComponent(c, nv)
		p.Depth[c] = newDepth[c]
	}
}

// msbReplicate expands an old-bit-depth value to new-bit-depth by repeatedly
// appending the value's own top bits into the vacated low bits, per
// spec.md §4.1 / §3 ("shift left then OR the high bits down"). E.g.
// old=5,new=8 yields the familiar (v<<3)|(v>>2).
func msbReplicate(v, old, newd uint8) uint8 {
	if old == 0 {
		return 0xFF
	}
	var result uint32
	var filled uint8
	for filled < newd {
		take := old
		if take > newd-filled {
			take = newd - filled
		}
		chunk := uint32(v) >> (old - take)
		result = (result << take) | chunk
		filled += take
	}
	if result > 0xFF {
		result = 0xFF
	}
	return uint8(result)
}

// QuantizeChannel returns the grid value (under the precision mask, e.g.
// 0xF8 for 5 bits) that best approximates v, optionally combined with a
// p-bit in the bit position just below the mask.
func QuantizeChannel(v uint8, mask uint8, pBit int) uint8 {
	lo := v & mask
	step := ^mask + 1
	hi := lo + step
	if hi > 0xFF {
		hi = 0xFF
	}
	if pBit >= 0 {
		pb := uint8(pBit) * (step >> 1)
		lo |= pb
		hi |= pb
	}
	if absDiff(v, lo) <= absDiff(hi, v) {
		return lo
	}
	return hi
}

func absDiff(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}

// Intensity returns the perceptual luma used for PVRTC extrema labeling,
// premultiplied by alpha (spec.md §4.1/§4.8).
func (p Pixel) Intensity() float64 {
	a := float64(p.A) / 255.0
	r := a * float64(p.R) / 255.0
	g := a * float64(p.G) / 255.0
	b := a * float64(p.B) / 255.0
	return r*0.2126 + g*0.7152 + b*0.0722
}
