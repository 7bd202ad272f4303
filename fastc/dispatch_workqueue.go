package fastc

import (
	"sync"
	"sync/atomic"
)

// WorkQueue is a pool of workers pulling contiguous row-bands off a shared
// atomic cursor, grounded on original_source/Core/src/WorkerQueue.cpp's
// WorkerThread::operator()/WorkerQueue::AcceptThreadData. Unlike ThreadGroup
// (one barrier-synchronized phase per Dispatch call), a WorkQueue accepts a
// queue of jobs up front and workers free-run across all of them, matching
// "supports multiple jobs queued behind one another" in spec.md §4.9.
//
// The original has each blocked worker re-enter AcceptThreadData in a tight
// Yield() spin, incrementing m_WaitingThreads again on every retry until
// the last straggler promotes the queue — harmless there but a real
// over-count hazard translated literally. Here each worker blocks on a
// condition variable instead, incrementing the waiting count exactly once
// per exhaustion event; the promoting worker's Broadcast wakes the rest to
// retry the fetch-add. Same promotion rule, no busy-wait.
type WorkQueue struct {
	numWorkers   int
	rowsPerFetch int // m_JobSize, in block-rows
	work         BlockWorkFunc

	mu      sync.Mutex
	cond    *sync.Cond
	jobs    []Job
	jobIdx  int
	waiting int

	nextRow   uint32 // m_NextBlock, scoped to the current job; claimed via fetch-and-add
	totalRows uint32

	firstErr error
	errOnce  sync.Once
}

// NewWorkQueue builds a queue over jobs, to be drained by numWorkers
// goroutines started by Run, each claiming rowsPerFetch block-rows at a
// time (original_source's m_JobSize, there expressed in blocks).
func NewWorkQueue(jobs []Job, numWorkers, rowsPerFetch int, work BlockWorkFunc) *WorkQueue {
	if numWorkers < 1 {
		numWorkers = 1
	}
	if rowsPerFetch < 1 {
		rowsPerFetch = 1
	}
	wq := &WorkQueue{numWorkers: numWorkers, rowsPerFetch: rowsPerFetch, work: work, jobs: jobs}
	wq.cond = sync.NewCond(&wq.mu)
	if len(jobs) > 0 {
		_, bh := jobs[0].Format.BlockDimensions()
		wq.totalRows = uint32((jobs[0].YEnd - jobs[0].YStart) / bh)
	}
	return wq
}

// acceptWork fetch-and-adds the row cursor to claim the next band of the
// current job. When the cursor overshoots the job's row count, the caller
// waits at a promotion barrier; the worker whose arrival completes the
// barrier (waiting == numWorkers) advances to the next queued job and
// resets the cursor, then wakes the rest.
func (wq *WorkQueue) acceptWork() (job Job, rowStart, rowEnd int, ok bool) {
	for {
		// totalRows and jobIdx only ever change under wq.mu (in the promotion
		// branch below), so reading totalRows and fetch-adding nextRow while
		// holding it keeps a claim from straddling a concurrent job promotion.
		wq.mu.Lock()
		total := wq.totalRows
		start := atomic.AddUint32(&wq.nextRow, uint32(wq.rowsPerFetch)) - uint32(wq.rowsPerFetch)
		if start < total {
			cur := wq.jobs[wq.jobIdx]
			wq.mu.Unlock()
			end := start + uint32(wq.rowsPerFetch)
			if end > total {
				end = total
			}
			return cur, int(start), int(end), true
		}
		if wq.jobIdx >= len(wq.jobs) {
			wq.mu.Unlock()
			return Job{}, 0, 0, false
		}
		wq.waiting++
		if wq.waiting == wq.numWorkers {
			wq.jobIdx++
			wq.waiting = 0
			atomic.StoreUint32(&wq.nextRow, 0)
			if wq.jobIdx < len(wq.jobs) {
				_, bh := wq.jobs[wq.jobIdx].Format.BlockDimensions()
				atomic.StoreUint32(&wq.totalRows, uint32((wq.jobs[wq.jobIdx].YEnd-wq.jobs[wq.jobIdx].YStart)/bh))
			} else {
				atomic.StoreUint32(&wq.totalRows, 0)
			}
			wq.cond.Broadcast()
		} else {
			wq.cond.Wait()
		}
		wq.mu.Unlock()
	}
}

// Run drains the queue with numWorkers goroutines and blocks until every
// row-band of every queued job has been processed, returning the first
// worker error encountered (if any).
func (wq *WorkQueue) Run() error {
	var wg sync.WaitGroup
	wg.Add(wq.numWorkers)
	for i := 0; i < wq.numWorkers; i++ {
		go func() {
			defer wg.Done()
			for {
				job, rowStart, rowEnd, ok := wq.acceptWork()
				if !ok {
					return
				}
				_, bh := job.Format.BlockDimensions()
				sub := job.WithRange(job.XStart, job.YStart+rowStart*bh, job.XEnd, job.YStart+rowEnd*bh)
				if err := wq.work(sub); err != nil {
					wq.errOnce.Do(func() { wq.firstErr = err })
					return
				}
			}
		}()
	}
	wg.Wait()
	return wq.firstErr
}
