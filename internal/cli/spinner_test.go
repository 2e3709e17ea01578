package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

// fakeClock returns a spinner clock that reads *at.
func fakeClock(at *time.Time) func() time.Time {
	return func() time.Time { return *at }
}

func TestSpinnerStatus(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		action  string
		timeout time.Duration
		elapsed time.Duration
		want    string
	}{
		{"within timeout", "Analyzing", 2 * time.Minute, 1250 * time.Millisecond, "Analyzing karate... 1.2s of 2m0s"},
		{"timeout reached", "Analyzing", time.Second, 3 * time.Second, "Analyzing karate... 3s (timeout 1s reached)"},
		{"no timeout", "Enumerating 2^4 labelings of", 0, 500 * time.Millisecond, "Enumerating 2^4 labelings of karate... 500ms"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now := t0
			s := newSpinner(context.Background(), io.Discard, tt.action, "karate", tt.timeout)
			s.now = fakeClock(&now)
			s.start = t0
			now = t0.Add(tt.elapsed)

			if got := s.status(); got != tt.want {
				t.Errorf("status() = %q, want %q", got, tt.want)
			}
			if s.Elapsed() != tt.elapsed {
				t.Errorf("Elapsed() = %s, want %s", s.Elapsed(), tt.elapsed)
			}
		})
	}
}

func TestSpinnerRendersAndClears(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinner(context.Background(), &buf, "Analyzing", "karate", time.Minute)
	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.Stop()

	out := buf.String()
	if !strings.Contains(out, "Analyzing karate...") {
		t.Errorf("output %q lacks the network status", out)
	}
	if !strings.Contains(out, "of 1m0s") {
		t.Errorf("output %q lacks the timeout", out)
	}
	if !strings.HasSuffix(out, "\r") {
		t.Errorf("line was not cleared: %q", out)
	}
	if s.Cancelled() {
		t.Error("a stopped spinner is not cancelled")
	}
}

func TestSpinnerCancelledByContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	s := newSpinner(ctx, io.Discard, "Analyzing", "karate", time.Minute)
	s.Start()
	<-ctx.Done()
	time.Sleep(50 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("spinner should be cancelled after its context ends")
	}
	s.Stop()
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := newSpinner(context.Background(), io.Discard, "Analyzing", "karate", 0)
	s.Start()
	s.Stop()
	s.Stop()
	s.StopWithSuccess("karate: rho = 12")
	s.StopWithError(errors.New("boom"))
}
