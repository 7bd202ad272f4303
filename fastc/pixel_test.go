package fastc

import "testing"

func TestPixelChangeBitDepthExpand5To8(t *testing.T) {
	p := Pixel{R: 0x1F, Depth: [4]uint8{5, 5, 5, 5}}
	p.ChangeBitDepth([4]uint8{8, 8, 8, 8})
	if p.R != 0xFF {
		t.Fatalf("ChangeBitDepth 5->8 on max value: got %#x want 0xff", p.R)
	}
}

func TestPixelChangeBitDepthZeroDepthReadsOpaque(t *testing.T) {
	p := Pixel{Depth: [4]uint8{8, 8, 8, 0}}
	p.ChangeBitDepth([4]uint8{8, 8, 8, 8})
	if p.A != 0xFF {
		t.Fatalf("ChangeBitDepth with zero source depth: got A=%#x want 0xff", p.A)
	}
}

func TestPixelChangeBitDepthContract(t *testing.T) {
	p := Pixel{R: 0xFF, Depth: [4]uint8{8, 8, 8, 8}}
	p.ChangeBitDepth([4]uint8{5, 8, 8, 8})
	if p.R != 0x1F {
		t.Fatalf("ChangeBitDepth 8->5 on max value: got %#x want 0x1f", p.R)
	}
}

func TestQuantizeChannelPicksNearerGridPoint(t *testing.T) {
	// mask 0xF8 -> 5-bit grid, step 8. v=3 is closer to 0 than to 8.
	if got := QuantizeChannel(3, 0xF8, -1); got != 0 {
		t.Fatalf("QuantizeChannel(3): got %d want 0", got)
	}
	// v=6 is closer to 8.
	if got := QuantizeChannel(6, 0xF8, -1); got != 8 {
		t.Fatalf("QuantizeChannel(6): got %d want 8", got)
	}
}

func TestPixelIntensityTransparentIsZero(t *testing.T) {
	p := Pixel{R: 255, G: 255, B: 255, A: 0, Depth: [4]uint8{8, 8, 8, 8}}
	if got := p.Intensity(); got != 0 {
		t.Fatalf("Intensity of fully transparent pixel: got %v want 0", got)
	}
}
