package fastc

// Job describes one codec invocation over a rectangular block range,
// grounded on spec.md §3/§6's {format, in_buf, out_buf, width, height,
// xstart, ystart, xend, yend}. Immutable once constructed.
type Job struct {
	Format Format
	In     []byte
	Out    []byte
	Width  int
	Height int

	XStart, YStart int
	XEnd, YEnd     int
}

// NewJob builds a Job covering the entire image (default start=(0,0),
// end=(width,height)).
func NewJob(format Format, in, out []byte, width, height int) Job {
	return Job{Format: format, In: in, Out: out, Width: width, Height: height,
		XStart: 0, YStart: 0, XEnd: width, YEnd: height}
}

// WithRange returns a copy of j restricted to the given block-coordinate
// range, used by the dispatcher to hand each worker a sub-job.
func (j Job) WithRange(xStart, yStart, xEnd, yEnd int) Job {
	j.XStart, j.YStart, j.XEnd, j.YEnd = xStart, yStart, xEnd, yEnd
	return j
}

// Validate checks the job's dimensions and buffer sizes against spec.md
// §7's InvalidDimensions/BufferTooSmall conditions.
func (j Job) Validate() error {
	bw, bh := j.Format.BlockDimensions()
	if j.Width <= 0 || j.Height <= 0 || j.Width%bw != 0 || j.Height%bh != 0 {
		return newError(ErrInvalidDimensions, "width/height must be a multiple of the block dimensions")
	}
	if j.Format == FormatPVRTC4BPP || j.Format == FormatPVRTC2BPP {
		if !isPowerOfTwo(j.Width) || !isPowerOfTwo(j.Height) || j.Width != j.Height {
			return newError(ErrInvalidDimensions, "PVRTC requires a square power-of-two image")
		}
	}
	blockCount := j.BlockCount()
	need := blockCount * j.Format.BlockSizeBytes()
	if len(j.Out) < need {
		return newError(ErrBufferTooSmall, "output buffer smaller than block_count*block_size_bytes")
	}
	return nil
}

func isPowerOfTwo(n int) bool { return n > 0 && n&(n-1) == 0 }

// BlockCount returns the total number of blocks in the full image (not
// just this job's range).
func (j Job) BlockCount() int {
	bw, bh := j.Format.BlockDimensions()
	return (j.Width / bw) * (j.Height / bh)
}

// BlockIdxToCoords maps a linear block index to its (x,y) pixel-space
// coordinate, the inverse of CoordsToBlockIdx, per spec.md §6.
func (j Job) BlockIdxToCoords(idx int) (int, int) {
	bw, bh := j.Format.BlockDimensions()
	blocksPerRow := j.Width / bw
	if blocksPerRow == 0 {
		return 0, 0
	}
	by := idx / blocksPerRow
	bx := idx % blocksPerRow
	return bx * bw, by * bh
}

// CoordsToBlockIdx maps a pixel-space block coordinate (x,y) to its linear
// block index: (y/bh)*(W/bw) + (x/bw), per spec.md §3/§6.
func (j Job) CoordsToBlockIdx(x, y int) int {
	bw, bh := j.Format.BlockDimensions()
	return (y/bh)*(j.Width/bw) + (x / bw)
}
