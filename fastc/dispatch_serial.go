package fastc

// BlockWorkFunc processes every block in a Job's [XStart,XEnd)x[YStart,YEnd)
// range, the shape every EncodeJob*/DecodeJob* function in this package
// already has (spec.md §4.9).
type BlockWorkFunc func(Job) error

// DispatchSerial runs work over job's entire range on the calling
// goroutine, one block at a time in row-major order — the baseline
// strategy of spec.md §4.9, and the only strategy valid for PVRTC encode
// since its labeling pass is whole-image.
func DispatchSerial(job Job, work BlockWorkFunc) error {
	return work(job)
}

// partitionBlockRows splits job into up to n contiguous row-bands, each
// spanning the job's full width. Splitting only along full block-rows
// (rather than at an arbitrary linear block index, as original_source's
// CompressionJob permits) keeps every band rectangular, so it can be fed
// straight to the package's existing per-row block-iteration loops without
// each of them needing the C++ side's partial-first/last-row special case.
func partitionBlockRows(job Job, n int) []Job {
	_, bh := job.Format.BlockDimensions()
	totalRows := (job.YEnd - job.YStart) / bh
	if totalRows <= 0 {
		return nil
	}
	if n > totalRows {
		n = totalRows
	}
	if n < 1 {
		n = 1
	}
	rowsPerBand := (totalRows + n - 1) / n

	var out []Job
	y := job.YStart
	for y < job.YEnd {
		end := y + rowsPerBand*bh
		if end > job.YEnd {
			end = job.YEnd
		}
		out = append(out, job.WithRange(job.XStart, y, job.XEnd, end))
		y = end
	}
	return out
}
