package fastc_test

import (
	"testing"

	"github.com/GammaUNC/fastc-go/fastc"
)

func pvrtcCheckerboard(w, h int) []byte {
	out := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			o := (y*w + x) * 4
			if (x/4+y/4)%2 == 0 {
				out[o], out[o+1], out[o+2], out[o+3] = 255, 0, 0, 255
			} else {
				out[o], out[o+1], out[o+2], out[o+3] = 0, 0, 255, 255
			}
		}
	}
	return out
}

func TestPVRTC4BPPRoundTripPreservesImageSize(t *testing.T) {
	const w, h = 32, 32
	in := pvrtcCheckerboard(w, h)
	out := fastc.EncodePVRTC(in, w, h, false)
	if len(out) != (w/4)*(h/4)*8 {
		t.Fatalf("EncodePVRTC(4bpp): got %d bytes want %d", len(out), (w/4)*(h/4)*8)
	}
	decoded := make([]byte, w*h*4)
	j := fastc.NewJob(fastc.FormatPVRTC4BPP, out, decoded, w, h)
	if err := fastc.DecodeJobPVRTC(j); err != nil {
		t.Fatalf("DecodeJobPVRTC: %v", err)
	}
	if len(decoded) != len(in) {
		t.Fatalf("decoded length: got %d want %d", len(decoded), len(in))
	}
}

func TestPVRTC2BPPRoundTripPreservesImageSize(t *testing.T) {
	const w, h = 32, 32
	in := pvrtcCheckerboard(w, h)
	out := fastc.EncodePVRTC(in, w, h, true)
	if len(out) != (w/8)*(h/4)*8 {
		t.Fatalf("EncodePVRTC(2bpp): got %d bytes want %d", len(out), (w/8)*(h/4)*8)
	}
	decoded := make([]byte, w*h*4)
	j := fastc.NewJob(fastc.FormatPVRTC2BPP, out, decoded, w, h)
	if err := fastc.DecodeJobPVRTC(j); err != nil {
		t.Fatalf("DecodeJobPVRTC: %v", err)
	}
}

func TestEncodePVRTCIsDeterministic(t *testing.T) {
	const w, h = 16, 16
	in := pvrtcCheckerboard(w, h)
	out1 := fastc.EncodePVRTC(in, w, h, false)
	out2 := fastc.EncodePVRTC(in, w, h, false)
	if len(out1) != len(out2) {
		t.Fatalf("EncodePVRTC length mismatch across runs: %d vs %d", len(out1), len(out2))
	}
	for i := range out1 {
		if out1[i] != out2[i] {
			t.Fatalf("EncodePVRTC not deterministic at byte %d: %#x vs %#x", i, out1[i], out2[i])
		}
	}
}

func TestEncodeJobPVRTCRejectsOtherFormats(t *testing.T) {
	j := fastc.NewJob(fastc.FormatBPTC, make([]byte, 4*4*4), make([]byte, 16), 4, 4)
	if err := fastc.EncodeJobPVRTC(j); fastc.ErrorCodeOf(err) != fastc.ErrInvalidDimensions {
		t.Fatalf("EncodeJobPVRTC on BPTC job: got %v want ErrInvalidDimensions", err)
	}
}

func TestJobValidateRejectsNonPowerOfTwoPVRTC(t *testing.T) {
	j := fastc.NewJob(fastc.FormatPVRTC4BPP, make([]byte, 12*12*4), make([]byte, (12/4)*(12/4)*8), 12, 12)
	if err := j.Validate(); fastc.ErrorCodeOf(err) != fastc.ErrInvalidDimensions {
		t.Fatalf("Validate PVRTC with non-power-of-two size: got %v want ErrInvalidDimensions", err)
	}
}
