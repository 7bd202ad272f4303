package fastc_test

import (
	"testing"

	"github.com/GammaUNC/fastc-go/fastc"
)

func TestFormatBlockDimensions(t *testing.T) {
	cases := []struct {
		format fastc.Format
		bw, bh int
	}{
		{fastc.FormatBPTC, 4, 4},
		{fastc.FormatDXT1, 4, 4},
		{fastc.FormatDXT5, 4, 4},
		{fastc.FormatETC1, 4, 4},
		{fastc.FormatPVRTC4BPP, 4, 4},
		{fastc.FormatPVRTC2BPP, 8, 4},
	}
	for _, c := range cases {
		bw, bh := c.format.BlockDimensions()
		if bw != c.bw || bh != c.bh {
			t.Fatalf("%v.BlockDimensions(): got (%d,%d) want (%d,%d)", c.format, bw, bh, c.bw, c.bh)
		}
	}
}

func TestFormatBlockSizeBytes(t *testing.T) {
	cases := []struct {
		format fastc.Format
		want   int
	}{
		{fastc.FormatBPTC, 16},
		{fastc.FormatDXT5, 16},
		{fastc.FormatDXT1, 8},
		{fastc.FormatETC1, 8},
		{fastc.FormatPVRTC4BPP, 8},
		{fastc.FormatPVRTC2BPP, 8},
	}
	for _, c := range cases {
		if got := c.format.BlockSizeBytes(); got != c.want {
			t.Fatalf("%v.BlockSizeBytes(): got %d want %d", c.format, got, c.want)
		}
	}
}

func TestDefaultSettings(t *testing.T) {
	s := fastc.DefaultSettings()
	if s.BlockModes != 0xFF {
		t.Fatalf("DefaultSettings.BlockModes: got %#x want 0xff", s.BlockModes)
	}
	if s.ErrorMetric != fastc.UniformErrorMetric {
		t.Fatalf("DefaultSettings.ErrorMetric: got %v want UniformErrorMetric", s.ErrorMetric)
	}
	if s.NumSimulatedAnnealingSteps != 50 {
		t.Fatalf("DefaultSettings.NumSimulatedAnnealingSteps: got %d want 50", s.NumSimulatedAnnealingSteps)
	}
}
