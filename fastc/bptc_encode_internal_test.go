package fastc

import "testing"

func TestRotatePixelIsItsOwnInverse(t *testing.T) {
	p := [4]uint8{10, 20, 30, 40}
	for rot := 0; rot < 4; rot++ {
		got := rotatePixel(rotatePixel(p, rot), rot)
		if got != p {
			t.Fatalf("rotatePixel(rot=%d) twice: got %v want %v", rot, got, p)
		}
	}
}

func TestAllSameRGBA(t *testing.T) {
	var same [16][4]uint8
	for i := range same {
		same[i] = [4]uint8{1, 2, 3, 4}
	}
	if !allSameRGBA(same) {
		t.Fatalf("allSameRGBA: got false want true")
	}
	diff := same
	diff[5] = [4]uint8{1, 2, 3, 5}
	if allSameRGBA(diff) {
		t.Fatalf("allSameRGBA: got true want false")
	}
}

func TestAllAlphaZero(t *testing.T) {
	var p [16][4]uint8
	if !allAlphaZero(p) {
		t.Fatalf("allAlphaZero on zero-valued array: got false want true")
	}
	p[3][3] = 1
	if allAlphaZero(p) {
		t.Fatalf("allAlphaZero after setting one alpha: got true want false")
	}
}

func TestAllOpaque(t *testing.T) {
	var p [16][4]uint8
	for i := range p {
		p[i][3] = 255
	}
	if !allOpaque(p) {
		t.Fatalf("allOpaque: got false want true")
	}
	p[0][3] = 254
	if allOpaque(p) {
		t.Fatalf("allOpaque after lowering one alpha: got true want false")
	}
}

func TestReadBlockPixelsReplicatesEdge(t *testing.T) {
	// 6x6 image, block at (4,4) only has a 2x2 valid region; the rest must
	// replicate the last valid row/column.
	const w, h = 6, 6
	in := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			o := (y*w + x) * 4
			in[o], in[o+1], in[o+2], in[o+3] = uint8(x), uint8(y), 0, 255
		}
	}
	block := readBlockPixels(in, w, h, 4, 4)
	// texel (3,3) within the block maps to image (7,7), out of image bounds;
	// it must replicate the valid corner at image (5,5).
	corner := block[3*4+3]
	if corner[0] != 5 || corner[1] != 5 {
		t.Fatalf("replicated corner: got %v want R=5,G=5", corner)
	}
}

func TestShapeErrorEstimateZeroForUniformCluster(t *testing.T) {
	var pixels [16][4]uint8
	for i := range pixels {
		pixels[i] = [4]uint8{50, 60, 70, 255}
	}
	err := shapeErrorEstimate(pixels, 0, 2, 4, UniformErrorMetric)
	if err > 1e-6 {
		t.Fatalf("shapeErrorEstimate on a uniform block: got %v want ~0", err)
	}
}
