package organizing

import (
	"context"
	"testing"
	"time"
)

func TestBreakerTripsOncePerCrossing(t *testing.T) {
	breaker := NewBreaker(3)

	for i := 0; i < 3; i++ {
		if breaker.Record() {
			t.Fatalf("breaker tripped at failure %d, threshold is 3", i+1)
		}
	}
	if !breaker.Record() {
		t.Fatal("breaker should trip on the 4th failure")
	}
	if breaker.Record() || breaker.Record() {
		t.Error("breaker should not trip again while tripped")
	}
	if breaker.Failures() != 6 {
		t.Errorf("expected 6 failures counted, got %d", breaker.Failures())
	}

	breaker.Reset()
	if breaker.Failures() != 0 {
		t.Errorf("expected counter cleared, got %d", breaker.Failures())
	}
	for i := 0; i < 3; i++ {
		if breaker.Record() {
			t.Fatalf("breaker tripped at failure %d after reset", i+1)
		}
	}
	if !breaker.Record() {
		t.Error("breaker should trip again on the next crossing")
	}
}

func TestBreakerDisabled(t *testing.T) {
	breaker := NewBreaker(0)
	for i := 0; i < 100; i++ {
		if breaker.Record() {
			t.Fatal("disabled breaker should never trip")
		}
	}
}

func TestGatePauseAndResume(t *testing.T) {
	g := newGate()

	if err := g.Wait(context.Background()); err != nil {
		t.Fatalf("open gate should not block: %v", err)
	}

	g.Pause()
	passed := make(chan error, 1)
	go func() {
		passed <- g.Wait(context.Background())
	}()

	select {
	case <-passed:
		t.Fatal("Wait should block while paused")
	case <-time.After(20 * time.Millisecond):
	}

	g.Resume()
	select {
	case err := <-passed:
		if err != nil {
			t.Errorf("Wait returned error after resume: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after resume")
	}
}

func TestGateWaitHonorsContext(t *testing.T) {
	g := newGate()
	g.Pause()
	g.Pause()

	ctx, cancel := context.WithCancel(context.Background())
	passed := make(chan error, 1)
	go func() {
		passed <- g.Wait(ctx)
	}()
	cancel()

	select {
	case err := <-passed:
		if err != context.Canceled {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after cancel")
	}

	g.Resume()
	g.Resume()
	if err := g.Wait(context.Background()); err != nil {
		t.Errorf("gate should be open again: %v", err)
	}
}
