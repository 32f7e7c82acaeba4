package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestSpinnerStop(t *testing.T) {
	s := newSpinner("Analyzing")
	var buf bytes.Buffer
	s.w = &buf
	s.Start()
	time.Sleep(120 * time.Millisecond)
	s.Stop()
	s.Stop()

	if s.Cancelled() {
		t.Error("Stop must not count as cancellation")
	}
	if !strings.Contains(buf.String(), "Analyzing") {
		t.Errorf("spinner wrote %q", buf.String())
	}
}

func TestSpinnerCancelledByContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := newSpinnerWithContext(ctx, "Laying out")
	s.w = &bytes.Buffer{}
	s.Start()
	cancel()

	select {
	case <-s.stopped:
	case <-time.After(time.Second):
		t.Fatal("spinner did not stop after cancellation")
	}
	if !s.Cancelled() {
		t.Error("Cancelled() = false after parent cancellation")
	}
	s.Stop()
}

func TestSpinnerUpdate(t *testing.T) {
	s := newSpinner("a long message")
	var buf bytes.Buffer
	s.w = &buf
	s.Update("short")
	if s.message != "short" {
		t.Errorf("message = %q", s.message)
	}
}
