package fastc

import "testing"

func TestBlockPackRoundTrip(t *testing.T) {
	var b Block
	b.Bits = 0x0123456789ABCDEF
	data := b.Pack()
	got := NewBlock(data)
	if got.Bits != b.Bits {
		t.Fatalf("Pack/NewBlock round trip: got %#x want %#x", got.Bits, b.Bits)
	}
}

func TestBlockModeBit(t *testing.T) {
	var b Block
	if b.GetModeBit() {
		t.Fatalf("zero-valued block: GetModeBit got true want false")
	}
	b.SetModeBit(true)
	if !b.GetModeBit() {
		t.Fatalf("after SetModeBit(true): GetModeBit got false want true")
	}
	b.SetModeBit(false)
	if b.GetModeBit() {
		t.Fatalf("after SetModeBit(false): GetModeBit got true want false")
	}
}

func TestBlockColorAOpaqueRoundTrip(t *testing.T) {
	var b Block
	e := pvrtcEndpoint{R: 0x1F, G: 0x0A, B: 0x5, Depth: [4]uint8{5, 5, 4, 0}, Opaque: true}
	b.SetColorA(e)
	got := b.ColorA()
	if got.R != e.R || got.G != e.G || got.B != e.B || !got.Opaque {
		t.Fatalf("ColorA opaque round trip: got %+v want %+v", got, e)
	}
}

func TestBlockColorATranslucentRoundTrip(t *testing.T) {
	var b Block
	e := pvrtcEndpoint{R: 0x9, G: 0x3, B: 0x6, A: 0x5, Depth: [4]uint8{4, 4, 3, 3}, Opaque: false}
	b.SetColorA(e)
	got := b.ColorA()
	if got.R != e.R || got.G != e.G || got.B != e.B || got.A != e.A || got.Opaque {
		t.Fatalf("ColorA translucent round trip: got %+v want %+v", got, e)
	}
}

func TestBlockColorBOpaqueRoundTrip(t *testing.T) {
	var b Block
	e := pvrtcEndpoint{R: 0x1F, G: 0x10, B: 0x1F, Depth: [4]uint8{5, 5, 5, 0}, Opaque: true}
	b.SetColorB(e)
	got := b.ColorB()
	if got.R != e.R || got.G != e.G || got.B != e.B || !got.Opaque {
		t.Fatalf("ColorB opaque round trip: got %+v want %+v", got, e)
	}
}

func TestBlockColorBTranslucentRoundTrip(t *testing.T) {
	var b Block
	e := pvrtcEndpoint{R: 0xA, G: 0x2, B: 0x9, A: 0x3, Depth: [4]uint8{4, 4, 4, 3}, Opaque: false}
	b.SetColorB(e)
	got := b.ColorB()
	if got.R != e.R || got.G != e.G || got.B != e.B || got.A != e.A || got.Opaque {
		t.Fatalf("ColorB translucent round trip: got %+v want %+v", got, e)
	}
}

func TestExpandTo5ReplicatesMSBs(t *testing.T) {
	// A 4-bit channel of all-ones should replicate to 0x1F at 5 bits.
	if got := expandTo5(0xF, 4, false); got != 0x1F {
		t.Fatalf("expandTo5(0xF,4): got %#x want %#x", got, 0x1F)
	}
	if got := expandTo5(0, 0, false); got != 31 {
		t.Fatalf("expandTo5 with zero depth: got %d want 31 (fully present, no alpha channel)", got)
	}
}

func TestExpandTo5ForcesLowBitZeroForAlpha(t *testing.T) {
	got := expandTo5(0x7, 3, true)
	if got&1 != 0 {
		t.Fatalf("expandTo5 forceLow0: got %#x, low bit is set", got)
	}
}

func TestEndpointTo5555OpaqueAlphaIsFullyOpaque(t *testing.T) {
	e := pvrtcEndpoint{R: 0x1F, G: 0x1F, B: 0x1F, Depth: [4]uint8{5, 5, 5, 0}, Opaque: true}
	_, _, _, a := e.To5555()
	if a != 31 {
		t.Fatalf("To5555 on opaque endpoint: alpha got %d want 31", a)
	}
}

func TestBlockLerpValueRoundTrip4BPP(t *testing.T) {
	var b Block
	for texel := uint32(0); texel < 16; texel++ {
		b.SetLerpValue(texel, uint8(texel%4), 2)
	}
	for texel := uint32(0); texel < 16; texel++ {
		want := uint8(texel % 4)
		if got := b.GetLerpValue(texel, 2); got != want {
			t.Fatalf("GetLerpValue(%d): got %d want %d", texel, got, want)
		}
	}
}

func TestBlockLerpValueRoundTrip2BPP(t *testing.T) {
	var b Block
	for texel := uint32(0); texel < 32; texel++ {
		b.SetLerpValue(texel, uint8(texel%2), 1)
	}
	for texel := uint32(0); texel < 32; texel++ {
		want := uint8(texel % 2)
		if got := b.GetLerpValue(texel, 1); got != want {
			t.Fatalf("GetLerpValue(%d): got %d want %d", texel, got, want)
		}
	}
}

func TestMortonInterleaveKnownValues(t *testing.T) {
	if got := mortonInterleave(0, 0); got != 0 {
		t.Fatalf("mortonInterleave(0,0): got %d want 0", got)
	}
	// row=1 occupies bit 0, col=1 occupies bit 1 -> 0b11 == 3.
	if got := mortonInterleave(1, 1); got != 3 {
		t.Fatalf("mortonInterleave(1,1): got %d want 3", got)
	}
	// row=1,col=0 -> only bit 0 set.
	if got := mortonInterleave(1, 0); got != 1 {
		t.Fatalf("mortonInterleave(1,0): got %d want 1", got)
	}
	// row=0,col=1 -> only bit 1 set.
	if got := mortonInterleave(0, 1); got != 2 {
		t.Fatalf("mortonInterleave(0,1): got %d want 2", got)
	}
}

func TestMortonInterleaveIsInjectiveOverSmallRange(t *testing.T) {
	seen := make(map[uint32]bool)
	for row := uint32(0); row < 16; row++ {
		for col := uint32(0); col < 16; col++ {
			idx := mortonInterleave(row, col)
			if seen[idx] {
				t.Fatalf("mortonInterleave(%d,%d)=%d collides with an earlier (row,col) pair", row, col, idx)
			}
			seen[idx] = true
		}
	}
}
