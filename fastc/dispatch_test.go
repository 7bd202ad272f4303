package fastc_test

import (
	"testing"

	"github.com/GammaUNC/fastc-go/fastc"
)

func dxtWork(j fastc.Job) error { return fastc.EncodeJobDXT(j) }

func TestDispatchSerialMatchesDirectCall(t *testing.T) {
	const w, h = 16, 16
	in := make([]byte, w*h*4)
	for i := range in {
		in[i] = uint8(i)
	}
	want := make([]byte, (w/4)*(h/4)*8)
	if err := fastc.EncodeJobDXT(fastc.NewJob(fastc.FormatDXT1, in, want, w, h)); err != nil {
		t.Fatalf("EncodeJobDXT: %v", err)
	}

	got := make([]byte, (w/4)*(h/4)*8)
	j := fastc.NewJob(fastc.FormatDXT1, in, got, w, h)
	if err := fastc.DispatchSerial(j, dxtWork); err != nil {
		t.Fatalf("DispatchSerial: %v", err)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("byte %d: got %#x want %#x", i, got[i], want[i])
		}
	}
}

func TestThreadGroupMatchesSerial(t *testing.T) {
	const w, h = 32, 16
	in := make([]byte, w*h*4)
	for i := range in {
		in[i] = uint8(i * 3)
	}
	want := make([]byte, (w/4)*(h/4)*8)
	if err := fastc.DispatchSerial(fastc.NewJob(fastc.FormatDXT1, in, want, w, h), dxtWork); err != nil {
		t.Fatalf("DispatchSerial: %v", err)
	}

	got := make([]byte, (w/4)*(h/4)*8)
	tg := fastc.NewThreadGroup(4, dxtWork)
	defer tg.Close()
	if err := tg.Dispatch(fastc.NewJob(fastc.FormatDXT1, in, got, w, h)); err != nil {
		t.Fatalf("ThreadGroup.Dispatch: %v", err)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("byte %d: got %#x want %#x", i, got[i], want[i])
		}
	}
}

func TestThreadGroupReusableAcrossDispatches(t *testing.T) {
	const w, h = 16, 16
	in := make([]byte, w*h*4)
	tg := fastc.NewThreadGroup(3, dxtWork)
	defer tg.Close()

	for i := 0; i < 3; i++ {
		out := make([]byte, (w/4)*(h/4)*8)
		if err := tg.Dispatch(fastc.NewJob(fastc.FormatDXT1, in, out, w, h)); err != nil {
			t.Fatalf("Dispatch #%d: %v", i, err)
		}
	}
}

func TestThreadGroupMoreWorkersThanRowsDoesNotPanic(t *testing.T) {
	const w, h = 8, 4 // only one block-row
	in := make([]byte, w*h*4)
	out := make([]byte, (w/4)*(h/4)*8)
	tg := fastc.NewThreadGroup(8, dxtWork)
	defer tg.Close()
	if err := tg.Dispatch(fastc.NewJob(fastc.FormatDXT1, in, out, w, h)); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
}

func TestWorkQueueMatchesSerialAcrossMultipleJobs(t *testing.T) {
	const w1, h1 = 16, 16
	const w2, h2 = 32, 8

	in1 := make([]byte, w1*h1*4)
	in2 := make([]byte, w2*h2*4)
	for i := range in1 {
		in1[i] = uint8(i * 7)
	}
	for i := range in2 {
		in2[i] = uint8(i * 11)
	}

	want1 := make([]byte, (w1/4)*(h1/4)*8)
	want2 := make([]byte, (w2/4)*(h2/4)*8)
	if err := fastc.DispatchSerial(fastc.NewJob(fastc.FormatDXT1, in1, want1, w1, h1), dxtWork); err != nil {
		t.Fatalf("serial job1: %v", err)
	}
	if err := fastc.DispatchSerial(fastc.NewJob(fastc.FormatDXT1, in2, want2, w2, h2), dxtWork); err != nil {
		t.Fatalf("serial job2: %v", err)
	}

	got1 := make([]byte, (w1/4)*(h1/4)*8)
	got2 := make([]byte, (w2/4)*(h2/4)*8)
	jobs := []fastc.Job{
		fastc.NewJob(fastc.FormatDXT1, in1, got1, w1, h1),
		fastc.NewJob(fastc.FormatDXT1, in2, got2, w2, h2),
	}
	wq := fastc.NewWorkQueue(jobs, 4, 1, dxtWork)
	if err := wq.Run(); err != nil {
		t.Fatalf("WorkQueue.Run: %v", err)
	}

	for i := range want1 {
		if got1[i] != want1[i] {
			t.Fatalf("job1 byte %d: got %#x want %#x", i, got1[i], want1[i])
		}
	}
	for i := range want2 {
		if got2[i] != want2[i] {
			t.Fatalf("job2 byte %d: got %#x want %#x", i, got2[i], want2[i])
		}
	}
}

func TestWorkQueueEmptyJobListReturnsImmediately(t *testing.T) {
	wq := fastc.NewWorkQueue(nil, 2, 1, dxtWork)
	if err := wq.Run(); err != nil {
		t.Fatalf("WorkQueue.Run on empty job list: %v", err)
	}
}

func TestWorkQueuePropagatesWorkerError(t *testing.T) {
	failing := func(fastc.Job) error {
		return fastc.EncodeJobDXT(fastc.NewJob(fastc.FormatBPTC, nil, nil, 0, 0))
	}
	const w, h = 8, 8
	in := make([]byte, w*h*4)
	out := make([]byte, (w/4)*(h/4)*8)
	jobs := []fastc.Job{fastc.NewJob(fastc.FormatDXT1, in, out, w, h)}
	wq := fastc.NewWorkQueue(jobs, 2, 1, failing)
	if err := wq.Run(); err == nil {
		t.Fatalf("WorkQueue.Run: got nil error, want the worker's error")
	}
}
