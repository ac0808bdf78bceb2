package core

import "time"

// TelemetryHook receives notifications about request and polling lifecycle
// events. Implementations can use this for logging, metrics, or tracing.
//
// Event types never include sensitive data: no API keys (those live in
// Secret), no prompt content, no response bodies. Only operational metadata
// is exposed, so telemetry can be logged or shipped to monitoring systems
// safely. Keep that property when extending the interface.
type TelemetryHook interface {
	// OnRequestStart is called when a logical API request begins.
	OnRequestStart(e RequestStart)

	// OnRequestEnd is called when a logical API request completes,
	// after all retry attempts.
	OnRequestEnd(e RequestEnd)

	// OnPoll is called after each successful status fetch during job
	// polling.
	OnPoll(e Poll)
}

// RequestStart contains metadata about a starting request.
type RequestStart struct {
	Method string
	Path   string
	Start  time.Time
}

// RequestEnd contains metadata about a completed request.
type RequestEnd struct {
	Method   string
	Path     string
	Start    time.Time
	End      time.Time
	Status   int   // last HTTP status observed; zero if no response arrived
	Attempts int   // total attempts made, including the first
	Err      error // nil on success
}

// Duration returns the elapsed time for the request across all attempts.
func (e RequestEnd) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// Poll contains metadata about one successful polling fetch.
//
// Regressed is set when the reported progress is lower than the previous
// fetch for the same poll session. The server guarantees monotonic progress,
// so a regression is an anomaly worth surfacing; the poller does not reject
// the response.
type Poll struct {
	JobID     string
	Attempt   int
	Progress  float64
	Status    Status
	Regressed bool
}

// NoopTelemetryHook is a no-op implementation of TelemetryHook. It is the
// default when no telemetry is configured.
type NoopTelemetryHook struct{}

// OnRequestStart does nothing.
func (NoopTelemetryHook) OnRequestStart(RequestStart) {}

// OnRequestEnd does nothing.
func (NoopTelemetryHook) OnRequestEnd(RequestEnd) {}

// OnPoll does nothing.
func (NoopTelemetryHook) OnPoll(Poll) {}

// Compile-time check that NoopTelemetryHook implements TelemetryHook.
var _ TelemetryHook = NoopTelemetryHook{}
