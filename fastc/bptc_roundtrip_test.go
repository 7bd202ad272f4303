package fastc_test

import (
	"testing"

	"github.com/GammaUNC/fastc-go/fastc"
)

func solidBlock(r, g, b, a uint8) [16][4]uint8 {
	var p [16][4]uint8
	for i := range p {
		p[i] = [4]uint8{r, g, b, a}
	}
	return p
}

func gradientBlock() [16][4]uint8 {
	var p [16][4]uint8
	for i := 0; i < 16; i++ {
		x, y := i%4, i/4
		p[i] = [4]uint8{uint8(x * 80), uint8(y * 80), uint8((x + y) * 30), 255}
	}
	return p
}

func TestBPTCSingleColorBlockIsByteExact(t *testing.T) {
	enc := fastc.NewEncoder()
	pixels := solidBlock(123, 45, 200, 255)
	block, err := enc.EncodeBlock(pixels, fastc.DefaultSettings())
	if err != nil {
		t.Fatalf("EncodeBlock: %v", err)
	}
	got := fastc.DecodeBlock(block)
	for i, p := range got {
		if p != pixels[i] {
			t.Fatalf("texel %d: got %v want %v", i, p, pixels[i])
		}
	}
}

func TestBPTCFullyTransparentBlockIsByteExact(t *testing.T) {
	enc := fastc.NewEncoder()
	pixels := solidBlock(10, 20, 30, 0)
	// A differing RGB keeps the block off the single-color path, which is
	// checked first, so the all-zero-alpha transparent block is emitted.
	pixels[1] = [4]uint8{40, 50, 60, 0}
	block, err := enc.EncodeBlock(pixels, fastc.DefaultSettings())
	if err != nil {
		t.Fatalf("EncodeBlock: %v", err)
	}
	if len(block) != 16 {
		t.Fatalf("transparent block: got %d bytes want 16", len(block))
	}
	for i, b := range block {
		want := byte(0)
		if i == 0 {
			want = 0x40 // mode 6 header, then all zero bits
		}
		if b != want {
			t.Fatalf("transparent block byte %d: got %#x want %#x", i, b, want)
		}
	}
	got := fastc.DecodeBlock(block)
	for i, p := range got {
		if p[3] != 0 {
			t.Fatalf("texel %d: got alpha %d want 0", i, p[3])
		}
	}
}

func TestBPTCGeneralBlockRoundTripIsCloseToLossless(t *testing.T) {
	enc := fastc.NewEncoder()
	pixels := gradientBlock()
	block, err := enc.EncodeBlock(pixels, fastc.DefaultSettings())
	if err != nil {
		t.Fatalf("EncodeBlock: %v", err)
	}
	got := fastc.DecodeBlock(block)
	var total int
	for i, p := range got {
		for c := 0; c < 4; c++ {
			d := int(p[c]) - int(pixels[i][c])
			if d < 0 {
				d = -d
			}
			total += d
		}
	}
	if total > 16*4*24 {
		t.Fatalf("cumulative channel error too large: %d", total)
	}
}

func TestBPTCEncodeJobWrongFormat(t *testing.T) {
	enc := fastc.NewEncoder()
	j := fastc.NewJob(fastc.FormatDXT1, make([]byte, 4*4*4), make([]byte, 8), 4, 4)
	err := enc.EncodeJob(j, fastc.DefaultSettings())
	if fastc.ErrorCodeOf(err) != fastc.ErrInvalidDimensions {
		t.Fatalf("EncodeJob with non-BPTC format: got %v want ErrInvalidDimensions", err)
	}
}

func TestBPTCInvalidBlockModesErrorsOnAlphaBlock(t *testing.T) {
	enc := fastc.NewEncoder()
	pixels := gradientBlock()
	pixels[0][3] = 128 // not fully opaque, not fully transparent -> needs an alpha-capable mode

	settings := fastc.DefaultSettings()
	// Modes 4,5,6,7 are the only alpha-capable modes (see modeTable); disabling
	// all of them leaves nothing able to represent this block's alpha content.
	settings.BlockModes = 0xFF &^ (1<<4 | 1<<5 | 1<<6 | 1<<7)

	_, err := enc.EncodeBlock(pixels, settings)
	if fastc.ErrorCodeOf(err) != fastc.ErrInvalidBlockModes {
		t.Fatalf("EncodeBlock with all alpha modes disabled: got %v want ErrInvalidBlockModes", err)
	}
}

func TestBPTCShapeSelectionFnOverrideIsCalled(t *testing.T) {
	enc := fastc.NewEncoder()
	pixels := gradientBlock()

	var calls int
	settings := fastc.DefaultSettings()
	settings.ShapeSelectionUserData = "marker"
	settings.ShapeSelectionFn = func(px [16][4]uint8, shapeIdx, nSubsets, nBuckets int, metric fastc.ErrorMetric, userData interface{}) float64 {
		calls++
		if userData != "marker" {
			t.Fatalf("ShapeSelectionFn userData: got %v want %q", userData, "marker")
		}
		if px != pixels {
			t.Fatalf("ShapeSelectionFn received a different block than was encoded")
		}
		// Score every candidate shape as equally good; this test checks that
		// the override is called with the encoded block and its user data,
		// and that encoding still produces a full block.
		return 0
	}

	block, err := enc.EncodeBlock(pixels, settings)
	if err != nil {
		t.Fatalf("EncodeBlock: %v", err)
	}
	if calls == 0 {
		t.Fatalf("ShapeSelectionFn: got 0 calls, want at least one shape candidate scored through it")
	}
	if len(block) != 16 {
		t.Fatalf("EncodeBlock with ShapeSelectionFn override: got %d bytes want 16", len(block))
	}
}

func TestBPTCFullImageJobRoundTrip(t *testing.T) {
	enc := fastc.NewEncoder()
	const w, h = 8, 8
	in := make([]byte, w*h*4)
	for i := range in {
		in[i] = uint8(i * 7)
	}
	out := make([]byte, (w/4)*(h/4)*16)
	j := fastc.NewJob(fastc.FormatBPTC, in, out, w, h)
	if err := j.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if err := enc.EncodeJob(j, fastc.DefaultSettings()); err != nil {
		t.Fatalf("EncodeJob: %v", err)
	}
	decoded := make([]byte, w*h*4)
	dj := fastc.NewJob(fastc.FormatBPTC, out, decoded, w, h)
	if err := fastc.DecodeJob(dj); err != nil {
		t.Fatalf("DecodeJob: %v", err)
	}
	if len(decoded) != len(in) {
		t.Fatalf("decoded length: got %d want %d", len(decoded), len(in))
	}
}
