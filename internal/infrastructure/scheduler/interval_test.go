package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestIntervalSchedulerRunsImmediatelyAndRepeats(t *testing.T) {
	t.Parallel()

	var runs int32
	fired := make(chan struct{}, 16)
	s := NewIntervalScheduler(10*time.Millisecond, nil)

	if err := s.Start(context.Background(), func(time.Time) {
		atomic.AddInt32(&runs, 1)
		select {
		case fired <- struct{}{}:
		default:
		}
	}); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	for i := 0; i < 3; i++ {
		select {
		case <-fired:
		case <-time.After(2 * time.Second):
			t.Fatalf("job did not fire (run %d)", i)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("Stop returned error: %v", err)
	}

	after := atomic.LoadInt32(&runs)
	time.Sleep(40 * time.Millisecond)
	if got := atomic.LoadInt32(&runs); got != after {
		t.Fatalf("job kept running after Stop: %d -> %d", after, got)
	}
}

func TestIntervalSchedulerStopWithoutStart(t *testing.T) {
	t.Parallel()

	s := NewIntervalScheduler(time.Minute, time.UTC)
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("Stop returned error: %v", err)
	}
}

func TestIntervalSchedulerReportsLocation(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("BST", 3600)
	got := make(chan time.Time, 1)
	s := NewIntervalScheduler(time.Hour, loc)
	if err := s.Start(context.Background(), func(trigger time.Time) {
		select {
		case got <- trigger:
		default:
		}
	}); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	defer s.Stop(context.Background())

	select {
	case trigger := <-got:
		if trigger.Location() != loc {
			t.Fatalf("unexpected location %v", trigger.Location())
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("job did not fire")
	}
}
