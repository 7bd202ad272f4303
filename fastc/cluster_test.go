package fastc

import "testing"

func TestRGBAVectorArithmetic(t *testing.T) {
	a := RGBAVector{1, 2, 3, 4}
	b := RGBAVector{4, 3, 2, 1}
	if got, want := a.Add(b), (RGBAVector{5, 5, 5, 5}); got != want {
		t.Fatalf("Add: got %v want %v", got, want)
	}
	if got, want := a.Sub(a), (RGBAVector{0, 0, 0, 0}); got != want {
		t.Fatalf("Sub(self): got %v want %v", got, want)
	}
	if got, want := a.Scale(2), (RGBAVector{2, 4, 6, 8}); got != want {
		t.Fatalf("Scale: got %v want %v", got, want)
	}
	if got, want := a.Dot(b), 1*4+2*3+3*2+4*1.0; got != want {
		t.Fatalf("Dot: got %v want %v", got, want)
	}
}

func TestClusterAvgAndBoundingBox(t *testing.T) {
	c := NewCluster()
	c.AddPoint(NewPixel8(0, 0, 0, 255))
	c.AddPoint(NewPixel8(255, 255, 255, 255))

	avg := c.Avg()
	if avg[0] < 127 || avg[0] > 128 {
		t.Fatalf("Avg R channel: got %v want ~127.5", avg[0])
	}
	lo, hi := c.BoundingBox()
	if lo[0] != 0 || hi[0] != 255 {
		t.Fatalf("BoundingBox: got lo=%v hi=%v", lo, hi)
	}
}

func TestClusterAllSamePoint(t *testing.T) {
	c := NewCluster()
	c.AddPoint(NewPixel8(10, 10, 10, 255))
	c.AddPoint(NewPixel8(10, 10, 10, 255))
	if !c.AllSamePoint() {
		t.Fatalf("AllSamePoint: got false want true for identical points")
	}
	c.AddPoint(NewPixel8(11, 10, 10, 255))
	if c.AllSamePoint() {
		t.Fatalf("AllSamePoint: got true want false after adding a distinct point")
	}
}

func TestClusterPrincipalAxisIsUnitLength(t *testing.T) {
	c := NewCluster()
	c.AddPoint(NewPixel8(0, 0, 0, 255))
	c.AddPoint(NewPixel8(255, 128, 0, 255))
	c.AddPoint(NewPixel8(128, 64, 32, 255))

	axis := c.PrincipalAxis()
	lenSq := axis.LengthSq()
	if lenSq < 0.9 || lenSq > 1.1 {
		t.Fatalf("PrincipalAxis: got length^2=%v want ~1", lenSq)
	}

	// Cached: a second call must return the identical vector.
	if again := c.PrincipalAxis(); again != axis {
		t.Fatalf("PrincipalAxis not cached: got %v then %v", axis, again)
	}
}

func TestClusterPrincipalAxisDegenerateCluster(t *testing.T) {
	c := NewCluster()
	c.AddPoint(NewPixel8(50, 50, 50, 255))
	axis := c.PrincipalAxis()
	if axis.LengthSq() == 0 {
		t.Fatalf("PrincipalAxis on single-point cluster: got zero vector")
	}
}
