package fastc

import "math"

// ClusterResult is the outcome of compressing one subset's cluster: the two
// endpoints (already quantized to the mode's grid), the per-point bucket
// index, the chosen p-bit combo, and the quantized reconstruction error.
// Grounded on original_source/BPTCEncoder/src/CompressionMode.h's Params
// and RGBAEndpoints.cpp's OptimizeEndpointsForCluster.
type ClusterResult struct {
	P1, P2    RGBAVector
	Indices   []int
	PbitCombo int
	Error     float64
}

// fastRand is a small xorshift generator, grounded on Compressor.cpp's
// frand() (a fast uniform float generator built by stuffing random bits
// into an IEEE mantissa). Go's math/rand would work just as well; xorshift
// is used here because it is the teacher-and-original idiom for this exact
// annealing inner loop and needs no global lock.
type fastRand struct{ state uint32 }

func newFastRand(seed uint32) *fastRand {
	if seed == 0 {
		seed = 0x9e3779b9
	}
	return &fastRand{state: seed}
}

func (r *fastRand) next() uint32 {
	x := r.state
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	r.state = x
	return x
}

// Float01 returns a uniform float in [0,1).
func (r *fastRand) Float01() float64 {
	return float64(r.next()%0x1000000) / float64(0x1000000)
}

// Intn returns a uniform int in [0,n).
func (r *fastRand) Intn(n int) int {
	return int(r.next() % uint32(n))
}

// quantizeEndpointsToGrid rounds p1,p2 to the mode's precision grid for
// every candidate p-bit combo and keeps the combo minimizing the combined
// L2 distance, per spec.md §4.4 step 5.
func quantizeEndpointsToGrid(p1, p2 RGBAVector, precision [4]uint8, attrs ModeAttributes) (RGBAVector, RGBAVector, int) {
	var masks [4]uint8
	for c := 0; c < 4; c++ {
		masks[c] = QuantizationMask(int(precision[c]))
	}
	combos := attrs.NumPbitCombos()
	bestErr := math.MaxFloat64
	var bestQ1, bestQ2 RGBAVector
	bestCombo := 0
	for combo := 0; combo < combos; combo++ {
		pb1, pb2 := attrs.PBitCombo(combo)
		var q1, q2 RGBAVector
		for c := 0; c < 4; c++ {
			if precision[c] == 0 {
				q1[c] = 255
				q2[c] = 255
				continue
			}
			q1[c] = float64(QuantizeChannel(clampByte(p1[c]), masks[c], pb1))
			q2[c] = float64(QuantizeChannel(clampByte(p2[c]), masks[c], pb2))
		}
		err := q1.Sub(p1).LengthSq() + q2.Sub(p2).LengthSq()
		if err < bestErr {
			bestErr = err
			bestQ1, bestQ2, bestCombo = q1, q2, combo
		}
	}
	return bestQ1, bestQ2, bestCombo
}

func clampByte(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}

// quantizedErrorAndAssign assigns each cluster point to its nearest of
// nBuckets equally spaced interpolants between p1 and p2 (weighted by the
// error metric), returning the assignment and total weighted error —
// RGBACluster.QuantizedError in the original.
func quantizedErrorAndAssign(points []RGBAVector, p1, p2 RGBAVector, nBuckets int, nbitsIdx int, weights [4]float64) ([]int, float64) {
	indices := make([]int, len(points))
	var total float64
	for i, pt := range points {
		bestErr := math.MaxFloat64
		bestIdx := 0
		for idx := 0; idx < nBuckets; idx++ {
			var interp RGBAVector
			for c := 0; c < 4; c++ {
				interp[c] = float64(Interpolate(clampByte(p1[c]), clampByte(p2[c]), nbitsIdx, uint32(idx)))
			}
			e := WeightedDistSq(pt, interp, weights)
			if e < bestErr {
				bestErr = e
				bestIdx = idx
			}
		}
		indices[i] = bestIdx
		total += bestErr
	}
	return indices, total
}

// leastSquaresRefit solves the 2x2 system minimizing
// sum n_i * || p1*a_i + p2*b_i - x_i ||^2 over buckets, per spec.md §4.4
// step 4, grounded on RGBAEndpoints.cpp's endpoint refit.
func leastSquaresRefit(points []RGBAVector, indices []int, nBuckets int, guess1, guess2 RGBAVector) (RGBAVector, RGBAVector) {
	var sumN [64]float64
	var sumX [64]RGBAVector
	for i, idx := range indices {
		sumN[idx]++
		sumX[idx] = sumX[idx].Add(points[i])
	}

	var saa, sab, sbb float64
	var rhsA, rhsB RGBAVector
	denom := float64(nBuckets - 1)
	if denom == 0 {
		denom = 1
	}
	for idx := 0; idx < nBuckets; idx++ {
		n := sumN[idx]
		if n == 0 {
			continue
		}
		a := float64(nBuckets-1-idx) / denom
		b := float64(idx) / denom
		saa += n * a * a
		sab += n * a * b
		sbb += n * b * b
		rhsA = rhsA.Add(sumX[idx].Scale(a))
		rhsB = rhsB.Add(sumX[idx].Scale(b))
	}

	det := saa*sbb - sab*sab
	if math.Abs(det) < 1e-9 {
		// Degenerate (single bucket used): fall back to the bounding
		// extremes already carried by the caller's initial guess.
		return guess1, guess2
	}
	var p1, p2 RGBAVector
	for c := 0; c < 4; c++ {
		p1[c] = (rhsA[c]*sbb - rhsB[c]*sab) / det
		p2[c] = (rhsB[c]*saa - rhsA[c]*sab) / det
	}
	return p1, p2
}

// AnnealingSettings bundles the simulated-annealing knobs exposed via
// CompressionSettings (spec.md §6's BPTC configuration parameters).
type AnnealingSettings struct {
	Steps   int
	Metric  [4]float64
	Rand    *fastRand
}

const maxAnnealingIterations = 256

// CompressCluster implements spec.md §4.4 for one subset: degenerate
// single-color fast path, principal-axis init, k-means refinement,
// least-squares refit, grid clamp, and simulated annealing.
func CompressCluster(c *RGBACluster, attrs ModeAttributes, precision [4]uint8, idxBits int, as AnnealingSettings) ClusterResult {
	nBuckets := 1 << uint(idxBits)
	points := c.Points()

	if c.AllSamePoint() {
		return compressSingleColorCluster(c, attrs, precision, nBuckets)
	}

	mean := c.Avg()
	axis := c.PrincipalAxis()

	minProj, maxProj := math.MaxFloat64, -math.MaxFloat64
	for _, p := range points {
		proj := p.Sub(mean).Dot(axis)
		if proj < minProj {
			minProj = proj
		}
		if proj > maxProj {
			maxProj = proj
		}
	}
	p1 := mean.Add(axis.Scale(minProj))
	p2 := mean.Add(axis.Scale(maxProj))

	// K-means refinement: assign/recompute until stable or bounded iters.
	var indices []int
	for iter := 0; iter < 16; iter++ {
		newIndices, _ := quantizedErrorAndAssign(points, p1, p2, nBuckets, idxBits, as.Metric)
		if indices != nil && equalInts(indices, newIndices) {
			indices = newIndices
			break
		}
		indices = newIndices
		p1, p2 = leastSquaresRefit(points, indices, nBuckets, p1, p2)
	}

	q1, q2, combo := quantizeEndpointsToGrid(p1, p2, precision, attrs)
	indices, curErr := quantizedErrorAndAssign(points, q1, q2, nBuckets, idxBits, as.Metric)

	best := ClusterResult{P1: q1, P2: q2, Indices: append([]int(nil), indices...), PbitCombo: combo, Error: curErr}

	if as.Steps <= 0 {
		return best
	}
	steps := as.Steps
	if steps > maxAnnealingIterations {
		steps = maxAnnealingIterations
	}
	rng := as.Rand
	if rng == nil {
		rng = newFastRand(1)
	}

	type visitedState struct {
		p1, p2 RGBAVector
		combo  int
	}
	visited := make([]visitedState, 0, steps)

	curP1, curP2, curCombo, curErrAnneal := q1, q2, combo, curErr
	bestErr := curErr

	energy := 0
	for energy < steps && bestErr > 0 {
		t := float64(energy) / float64(maxInt(steps-1, 1))

		var nP1, nP2 RGBAVector
		nCombo := curCombo
		ok := false
		for retry := 0; retry < 16; retry++ {
			nP1, nP2 = perturbEndpoints(curP1, curP2, precision, rng)
			if attrs.PBitType != PBitNone {
				nCombo = flipCombo(attrs, curCombo)
			}
			dup := false
			for _, v := range visited {
				if v.p1 == nP1 && v.p2 == nP2 && v.combo == nCombo {
					dup = true
					break
				}
			}
			if !dup {
				ok = true
				break
			}
		}
		if !ok {
			energy++
			continue
		}
		visited = append(visited, visitedState{nP1, nP2, nCombo})

		nIndices, nErr := quantizedErrorAndAssign(points, nP1, nP2, nBuckets, idxBits, as.Metric)

		if acceptAnnealingStep(nErr, curErrAnneal, t, rng) {
			curP1, curP2, curCombo, curErrAnneal = nP1, nP2, nCombo, nErr
			_ = nIndices
		}

		if curErrAnneal < bestErr {
			bestErr = curErrAnneal
			best = ClusterResult{P1: curP1, P2: curP2, PbitCombo: curCombo, Error: curErrAnneal}
			best.Indices, _ = quantizedErrorAndAssign(points, curP1, curP2, nBuckets, idxBits, as.Metric)
			visited = visited[:0]
			energy = 0
			continue
		}
		energy++
	}

	return best
}

// perturbEndpoints nudges both endpoints by a random direction of
// magnitude step = 2^(8-precision) per channel, per spec.md §4.4 step 6,
// grounded on Compressor.cpp's PickBestNeighboringEndpoints.
func perturbEndpoints(p1, p2 RGBAVector, precision [4]uint8, rng *fastRand) (RGBAVector, RGBAVector) {
	dir1 := rng.Intn(16)
	dir2 := rng.Intn(16)
	np1, np2 := p1, p2
	for c := 0; c < 4; c++ {
		if precision[c] == 0 {
			continue
		}
		step := float64(uint32(1) << uint(8-precision[c]))
		if dir1&(1<<uint(c)) != 0 {
			np1[c] += step
		} else {
			np1[c] -= step
		}
		if dir2&(1<<uint(c)) != 0 {
			np2[c] += step
		} else {
			np2[c] -= step
		}
		np1[c] = clampf(np1[c], 0, 255)
		np2[c] = clampf(np2[c], 0, 255)
	}
	return np1, np2
}

func flipCombo(attrs ModeAttributes, combo int) int {
	switch attrs.PBitType {
	case PBitShared:
		return (combo + 1) % 2
	case PBitNotShared:
		return 3 - combo
	default:
		return combo
	}
}

// acceptAnnealingStep implements the Metropolis criterion from
// Compressor.cpp's AcceptNewEndpointError.
func acceptAnnealingStep(newErr, oldErr, temp float64, rng *fastRand) bool {
	if newErr < oldErr {
		return true
	}
	if temp <= 0 {
		return false
	}
	p := math.Exp(0.1 * (oldErr - newErr) / temp)
	return rng.Float01() < p
}

// compressSingleColorCluster handles the degenerate all-points-identical
// case via exhaustive per-channel grid search, per spec.md §4.4 step 1.
func compressSingleColorCluster(c *RGBACluster, attrs ModeAttributes, precision [4]uint8, nBuckets int) ClusterResult {
	p := c.Point(0)
	var p1, p2 RGBAVector
	bestCombo := 0
	bestErr := math.MaxFloat64
	combos := attrs.NumPbitCombos()
	idxBits := 1
	for 1<<uint(idxBits) < nBuckets {
		idxBits++
	}
	for combo := 0; combo < combos; combo++ {
		pb1, pb2 := attrs.PBitCombo(combo)
		var q1, q2 RGBAVector
		var err float64
		for ch := 0; ch < 4; ch++ {
			if precision[ch] == 0 {
				q1[ch], q2[ch] = 255, 255
				continue
			}
			lo, hi, e := bestChannelEndpointPair(clampByte(p[ch]), int(precision[ch]), pb1, pb2, idxBits)
			q1[ch] = float64(lo)
			q2[ch] = float64(hi)
			err += e
		}
		if err < bestErr {
			bestErr = err
			p1, p2, bestCombo = q1, q2, combo
		}
	}

	indices := make([]int, c.NumPoints())
	for i := range indices {
		indices[i] = 1
		if nBuckets == 1 {
			indices[i] = 0
		}
	}
	return ClusterResult{P1: p1, P2: p2, Indices: indices, PbitCombo: bestCombo, Error: bestErr}
}

// bestChannelEndpointPair exhaustively searches the two endpoint precision
// grids (honoring fixed p-bits) for the pair whose index-1 value on the
// mode's idxBits-bit interpolation ramp best reproduces v, per
// CompressSingleColor.
func bestChannelEndpointPair(v uint8, precision, pb1, pb2, idxBits int) (uint8, uint8, float64) {
	mask := QuantizationMask(precision)
	step := int(^mask) + 1
	bestErr := math.MaxFloat64
	var bestLo, bestHi uint8
	for lo := 0; lo < 256; lo += maxInt(step, 1) {
		loV := uint8(lo) & mask
		if pb1 >= 0 {
			loV |= uint8(pb1) * uint8(step>>1)
		}
		for hi := 0; hi < 256; hi += maxInt(step, 1) {
			hiV := uint8(hi) & mask
			if pb2 >= 0 {
				hiV |= uint8(pb2) * uint8(step>>1)
			}
			bitsLo := precision + boolToInt(pb1 >= 0)
			bitsHi := precision + boolToInt(pb2 >= 0)
			expLo := msbReplicate(loV>>uint(8-bitsLo), uint8(bitsLo), 8)
			expHi := msbReplicate(hiV>>uint(8-bitsHi), uint8(bitsHi), 8)
			got := Interpolate(expLo, expHi, idxBits, 1)
			diff := float64(got) - float64(v)
			e := diff * diff
			if e < bestErr {
				bestErr = e
				bestLo, bestHi = loV, hiV
			}
		}
	}
	return bestLo, bestHi, bestErr
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
