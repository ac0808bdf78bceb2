package core

import (
	"testing"
	"time"
)

func TestRequestEndDuration(t *testing.T) {
	start := time.Now()
	e := RequestEnd{Start: start, End: start.Add(250 * time.Millisecond)}

	if got := e.Duration(); got != 250*time.Millisecond {
		t.Errorf("Duration() = %v, want 250ms", got)
	}
}

func TestNoopTelemetryHook(t *testing.T) {
	var hook TelemetryHook = NoopTelemetryHook{}

	// Must be callable without side effects.
	hook.OnRequestStart(RequestStart{})
	hook.OnRequestEnd(RequestEnd{})
	hook.OnPoll(Poll{})
}
