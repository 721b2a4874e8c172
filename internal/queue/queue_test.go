package queue

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunnerExecutesJobs(t *testing.T) {
	runner := NewSideEffectRunner(8, 2, nil)

	var ran int32
	errc := make(chan error, 1)
	runner.Enqueue(Job{
		Fn: func() error {
			atomic.AddInt32(&ran, 1)
			return nil
		},
		Errc: errc,
	})

	select {
	case err := <-errc:
		if err != nil {
			t.Fatalf("unexpected job error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("job never ran")
	}

	if atomic.LoadInt32(&ran) != 1 {
		t.Fatal("job function not executed")
	}

	runner.Shutdown()
}

func TestRunnerReportsJobError(t *testing.T) {
	runner := NewSideEffectRunner(8, 1, nil)
	defer runner.Shutdown()

	wantErr := errors.New("backend down")
	errc := make(chan error, 1)
	runner.Enqueue(Job{Fn: func() error { return wantErr }, Errc: errc})

	select {
	case err := <-errc:
		if !errors.Is(err, wantErr) {
			t.Fatalf("expected %v, got %v", wantErr, err)
		}
	case <-time.After(time.Second):
		t.Fatal("job result never arrived")
	}
}

func TestEnqueueNeverBlocksWhenFull(t *testing.T) {
	runner := NewSideEffectRunner(1, 1, nil)
	defer runner.Shutdown()

	block := make(chan struct{})
	runner.Enqueue(Job{Fn: func() error { <-block; return nil }})
	runner.Enqueue(Job{Fn: func() error { return nil }})

	done := make(chan struct{})
	go func() {
		// Queue of one is already occupied; this drop must not block.
		runner.Enqueue(Job{Fn: func() error { return nil }})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("enqueue blocked on a full queue")
	}

	close(block)
}
