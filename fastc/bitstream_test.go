package fastc

import "testing"

func TestBitWriterBitReaderRoundTrip(t *testing.T) {
	buf := make([]byte, 16)
	w := NewBitWriter(buf, len(buf)*8)
	w.WriteBits(0x3, 2)
	w.WriteBits(0x5A, 8)
	w.WriteBits(0x1FFFF, 17)

	r := NewBitReader(buf)
	if got := r.ReadBits(2); got != 0x3 {
		t.Fatalf("ReadBits(2): got %#x want 0x3", got)
	}
	if got := r.ReadBits(8); got != 0x5A {
		t.Fatalf("ReadBits(8): got %#x want 0x5a", got)
	}
	if got := r.ReadBits(17); got != 0x1FFFF {
		t.Fatalf("ReadBits(17): got %#x want 0x1ffff", got)
	}
}

func TestBitWriterDoneStopsWriting(t *testing.T) {
	buf := make([]byte, 1)
	w := NewBitWriter(buf, 4)
	w.WriteBits(0xF, 4)
	if !w.Done() {
		t.Fatalf("Done: got false want true after exhausting budget")
	}
	before := buf[0]
	w.WriteBits(0xF, 4)
	if buf[0] != before {
		t.Fatalf("WriteBits past budget mutated buffer: got %#x want %#x", buf[0], before)
	}
}
