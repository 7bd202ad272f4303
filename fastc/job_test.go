package fastc_test

import (
	"testing"

	"github.com/GammaUNC/fastc-go/fastc"
)

func TestJob_ValidateRejectsBadDimensions(t *testing.T) {
	out := make([]byte, 16*16)
	j := fastc.NewJob(fastc.FormatBPTC, make([]byte, 16*16*4), out, 15, 16)
	if err := j.Validate(); fastc.ErrorCodeOf(err) != fastc.ErrInvalidDimensions {
		t.Fatalf("Validate: got %v want ErrInvalidDimensions", err)
	}
}

func TestJob_ValidateRejectsNonSquarePVRTC(t *testing.T) {
	out := make([]byte, 8*8)
	j := fastc.NewJob(fastc.FormatPVRTC4BPP, make([]byte, 16*8*4), out, 16, 8)
	if err := j.Validate(); fastc.ErrorCodeOf(err) != fastc.ErrInvalidDimensions {
		t.Fatalf("Validate: got %v want ErrInvalidDimensions", err)
	}
}

func TestJob_ValidateRejectsShortOutputBuffer(t *testing.T) {
	j := fastc.NewJob(fastc.FormatBPTC, make([]byte, 16*16*4), make([]byte, 4), 16, 16)
	if err := j.Validate(); fastc.ErrorCodeOf(err) != fastc.ErrBufferTooSmall {
		t.Fatalf("Validate: got %v want ErrBufferTooSmall", err)
	}
}

func TestJob_CoordsBlockIdxRoundTrip(t *testing.T) {
	j := fastc.NewJob(fastc.FormatBPTC, nil, nil, 32, 16)
	for y := 0; y < 16; y += 4 {
		for x := 0; x < 32; x += 4 {
			idx := j.CoordsToBlockIdx(x, y)
			gotX, gotY := j.BlockIdxToCoords(idx)
			if gotX != x || gotY != y {
				t.Fatalf("BlockIdxToCoords(CoordsToBlockIdx(%d,%d)=%d): got (%d,%d)", x, y, idx, gotX, gotY)
			}
		}
	}
}

func TestJob_BlockCount(t *testing.T) {
	j := fastc.NewJob(fastc.FormatPVRTC2BPP, nil, nil, 32, 16)
	if got, want := j.BlockCount(), (32/8)*(16/4); got != want {
		t.Fatalf("BlockCount: got %d want %d", got, want)
	}
}

func TestJob_WithRangeDoesNotMutateOriginal(t *testing.T) {
	j := fastc.NewJob(fastc.FormatBPTC, nil, nil, 32, 32)
	sub := j.WithRange(0, 0, 16, 16)
	if j.XEnd != 32 || j.YEnd != 32 {
		t.Fatalf("WithRange mutated receiver: XEnd=%d YEnd=%d", j.XEnd, j.YEnd)
	}
	if sub.XEnd != 16 || sub.YEnd != 16 {
		t.Fatalf("WithRange: got XEnd=%d YEnd=%d want 16,16", sub.XEnd, sub.YEnd)
	}
}
