package cli

import (
	"context"
	"testing"
	"time"
)

func TestSpinnerStop(t *testing.T) {
	s := newSpinner("Generating 3 targets...")
	s.Start()
	time.Sleep(2 * spinnerInterval)
	s.Stop()

	// An explicit Stop is not a cancellation.
	if s.Cancelled() {
		t.Error("Stop() must not report the spinner as cancelled")
	}
}

func TestSpinnerContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	s := newSpinnerWithContext(ctx, "Generating...")
	s.Start()
	cancel()

	// Give the animation goroutine time to notice.
	time.Sleep(2 * spinnerInterval)

	if !s.Cancelled() {
		t.Error("spinner should report cancellation after its context ends")
	}
	s.Stop()
}

func TestSpinnerContextTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), spinnerInterval/2)
	defer cancel()

	s := newSpinnerWithContext(ctx, "Generating...")
	s.Start()
	time.Sleep(2 * spinnerInterval)

	if !s.Cancelled() {
		t.Error("spinner should report cancellation after its context times out")
	}
	s.Stop()
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := newSpinner("Exporting artifacts...")
	s.Start()

	s.Stop()
	s.Stop()
	s.Stop()
}

func TestSpinnerStopWithOutcome(t *testing.T) {
	s := newSpinner("Generating...")
	s.Start()
	time.Sleep(spinnerInterval)
	s.StopWithSuccess("Generated 2 targets")

	s = newSpinner("Generating...")
	s.Start()
	time.Sleep(spinnerInterval)
	s.StopWithError("target \"inv\" failed")
}
