package fastc

import "sync"

// ThreadGroup is a fixed pool of reusable worker goroutines synchronized by
// a start barrier and a finished condition-variable, grounded on
// original_source/Core/src/ThreadGroup.cpp's CmpThread::operator() and
// ThreadGroup::{PrepareThreads,Start,Join,CleanUpThreads}. A channel close
// stands in for TCBarrier::Wait (both release every waiter at once); a
// Mutex+Cond pair stands in for TCMutex/TCConditionVariable directly.
type ThreadGroup struct {
	numWorkers int
	work       BlockWorkFunc

	mu       sync.Mutex
	cond     *sync.Cond
	barrier  chan struct{}
	jobs     []Job
	errs     []error
	finished int
	exit     bool
}

// NewThreadGroup spawns numWorkers goroutines that immediately block at the
// start barrier, waiting for the first Dispatch.
func NewThreadGroup(numWorkers int, work BlockWorkFunc) *ThreadGroup {
	if numWorkers < 1 {
		numWorkers = 1
	}
	tg := &ThreadGroup{numWorkers: numWorkers, work: work, barrier: make(chan struct{})}
	tg.cond = sync.NewCond(&tg.mu)
	for i := 0; i < numWorkers; i++ {
		go tg.runWorker(i, tg.barrier)
	}
	return tg
}

func (tg *ThreadGroup) runWorker(idx int, barrier chan struct{}) {
	for {
		<-barrier

		tg.mu.Lock()
		exit := tg.exit
		hasWork := !exit && idx < len(tg.jobs)
		var job Job
		if hasWork {
			job = tg.jobs[idx]
		}
		tg.mu.Unlock()
		if exit {
			return
		}

		var err error
		if hasWork {
			err = tg.work(job)
		}

		tg.mu.Lock()
		if hasWork {
			tg.errs[idx] = err
		}
		tg.finished++
		barrier = tg.barrier
		if tg.finished == tg.numWorkers {
			tg.cond.Signal()
		}
		tg.mu.Unlock()
	}
}

// Dispatch partitions job into PrepareThreads-style contiguous row-bands
// (one per worker), hits the start barrier to release all workers at once,
// and blocks on the finished condition-variable until every worker's band
// completes — mirroring ThreadGroup::Start followed by ThreadGroup::Join.
func (tg *ThreadGroup) Dispatch(job Job) error {
	bands := partitionBlockRows(job, tg.numWorkers)

	tg.mu.Lock()
	tg.jobs = bands
	tg.errs = make([]error, len(bands))
	tg.finished = 0
	release := tg.barrier
	tg.barrier = make(chan struct{})
	tg.mu.Unlock()
	close(release)

	tg.mu.Lock()
	for tg.finished < tg.numWorkers {
		tg.cond.Wait()
	}
	tg.mu.Unlock()

	for _, e := range tg.errs {
		if e != nil {
			return e
		}
	}
	return nil
}

// Close marks the group for exit and releases the barrier one final time so
// every worker goroutine observes the exit flag and returns, mirroring
// ThreadGroup::CleanUpThreads.
func (tg *ThreadGroup) Close() {
	tg.mu.Lock()
	tg.exit = true
	release := tg.barrier
	tg.barrier = make(chan struct{})
	tg.mu.Unlock()
	close(release)
}
