package fastc

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// RGBAVector is a 4-component (R,G,B,A) float vector used for cluster
// arithmetic, grounded on original_source/BPTCEncoder/src/RGBAEndpoints.h's
// RGBAVector.
type RGBAVector [4]float64

func (v RGBAVector) Add(o RGBAVector) RGBAVector {
	return RGBAVector{v[0] + o[0], v[1] + o[1], v[2] + o[2], v[3] + o[3]}
}

func (v RGBAVector) Sub(o RGBAVector) RGBAVector {
	return RGBAVector{v[0] - o[0], v[1] - o[1], v[2] - o[2], v[3] - o[3]}
}

func (v RGBAVector) Scale(s float64) RGBAVector {
	return RGBAVector{v[0] * s, v[1] * s, v[2] * s, v[3] * s}
}

func (v RGBAVector) Dot(o RGBAVector) float64 {
	return v[0]*o[0] + v[1]*o[1] + v[2]*o[2] + v[3]*o[3]
}

func (v RGBAVector) LengthSq() float64 { return v.Dot(v) }

// WeightedDistSq returns the squared distance between v and o weighted
// per-channel, used by the configured error metric (spec.md §4.3).
func WeightedDistSq(v, o RGBAVector, w [4]float64) float64 {
	var sum float64
	for c := 0; c < 4; c++ {
		d := (v[c] - o[c]) * w[c]
		sum += d * d
	}
	return sum
}

func pixelToVector(p Pixel) RGBAVector {
	return RGBAVector{float64(p.R), float64(p.G), float64(p.B), float64(p.A)}
}

func vectorToPixel(v RGBAVector, depth [4]uint8) Pixel {
	clamp := func(x float64) uint8 {
		if x < 0 {
			return 0
		}
		if x > 255 {
			return 255
		}
		return uint8(x + 0.5)
	}
	return Pixel{
		R: clamp(v[0]), G: clamp(v[1]), B: clamp(v[2]), A: clamp(v[3]),
		Depth: depth,
	}
}

// RGBACluster is a bag of up to 16 pixels plus cached bounding box and
// principal axis, grounded on RGBAEndpoints.h's RGBACluster. Membership is
// stable during an optimization pass; adding a point invalidates the
// cached principal axis.
type RGBACluster struct {
	points        []RGBAVector
	min, max      RGBAVector
	axisCached    bool
	principalAxis RGBAVector
}

// NewCluster builds an empty cluster.
func NewCluster() *RGBACluster {
	return &RGBACluster{
		min: RGBAVector{1e9, 1e9, 1e9, 1e9},
		max: RGBAVector{-1e9, -1e9, -1e9, -1e9},
	}
}

// AddPoint appends a pixel to the cluster, updating the bounding box and
// invalidating the cached principal axis.
func (c *RGBACluster) AddPoint(p Pixel) {
	v := pixelToVector(p)
	c.points = append(c.points, v)
	for ch := 0; ch < 4; ch++ {
		if v[ch] < c.min[ch] {
			c.min[ch] = v[ch]
		}
		if v[ch] > c.max[ch] {
			c.max[ch] = v[ch]
		}
	}
	c.axisCached = false
}

// NumPoints reports the cluster's point count.
func (c *RGBACluster) NumPoints() int { return len(c.points) }

// Point returns point i.
func (c *RGBACluster) Point(i int) RGBAVector { return c.points[i] }

// Points returns the cluster's backing slice (read-only use expected).
func (c *RGBACluster) Points() []RGBAVector { return c.points }

// BoundingBox returns the cached min/max corners.
func (c *RGBACluster) BoundingBox() (RGBAVector, RGBAVector) { return c.min, c.max }

// Avg returns the cluster's mean point.
func (c *RGBACluster) Avg() RGBAVector {
	if len(c.points) == 0 {
		return RGBAVector{}
	}
	var sum RGBAVector
	for _, p := range c.points {
		sum = sum.Add(p)
	}
	return sum.Scale(1.0 / float64(len(c.points)))
}

// AllSamePoint reports whether every point in the cluster is identical.
func (c *RGBACluster) AllSamePoint() bool {
	if len(c.points) == 0 {
		return true
	}
	first := c.points[0]
	for _, p := range c.points[1:] {
		if p != first {
			return false
		}
	}
	return true
}

// PrincipalAxis returns the (cached) dominant eigenvector of the centered
// 4x4 covariance matrix, computed via gonum's symmetric eigensolver
// (mat.EigenSym) in place of the original's hand-rolled power-iteration-
// with-deflation solver — see DESIGN.md Open Question O3. Both converge on
// the same principal axis for this small symmetric case.
func (c *RGBACluster) PrincipalAxis() RGBAVector {
	if c.axisCached {
		return c.principalAxis
	}
	n := len(c.points)
	if n == 0 {
		c.principalAxis = RGBAVector{1, 0, 0, 0}
		c.axisCached = true
		return c.principalAxis
	}
	mean := c.Avg()

	// Build per-channel centered sample matrix for gonum/stat covariance.
	data := make([][]float64, 4)
	for ch := 0; ch < 4; ch++ {
		data[ch] = make([]float64, n)
		for i, p := range c.points {
			data[ch][i] = p[ch] - mean[ch]
		}
	}

	cov := mat.NewSymDense(4, nil)
	for a := 0; a < 4; a++ {
		for b := a; b < 4; b++ {
			cov.SetSym(a, b, stat.Covariance(data[a], data[b], nil))
		}
	}

	var eig mat.EigenSym
	ok := eig.Factorize(cov, true)
	axis := RGBAVector{1, 0, 0, 0}
	if ok {
		values := eig.Values(nil)
		best := 0
		for i := 1; i < len(values); i++ {
			if values[i] > values[best] {
				best = i
			}
		}
		var vecs mat.Dense
		eig.VectorsTo(&vecs)
		for ch := 0; ch < 4; ch++ {
			axis[ch] = vecs.At(ch, best)
		}
	}
	length := axis.LengthSq()
	if length > 1e-12 {
		axis = axis.Scale(1.0 / math.Sqrt(length))
	}
	c.principalAxis = axis
	c.axisCached = true
	return axis
}
