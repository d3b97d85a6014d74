package scheduler

import (
	"sync/atomic"
	"testing"
	"time"
)

type countingPurger struct {
	calls atomic.Int32
}

func (c *countingPurger) Purge() int {
	c.calls.Add(1)
	return 2
}

func TestSchedulerPurgesOnStart(t *testing.T) {
	p := &countingPurger{}
	s := New(p, time.Hour)
	if err := s.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Stop()

	// gocron runs a new interval job immediately.
	deadline := time.Now().Add(2 * time.Second)
	for p.calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if p.calls.Load() == 0 {
		t.Fatal("expected purge job to run")
	}
}

func TestSchedulerWithoutCache(t *testing.T) {
	s := New(nil, time.Minute)
	if err := s.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s.Stop()
}
