package core

// EventType tags a stream event.
type EventType string

const (
	EventProgress      EventType = "progress"
	EventPartialResult EventType = "partial_result"
	EventError         EventType = "error"
	EventDone          EventType = "done"
)

// Event is one decoded stream event, parameterized over the operation's
// result type. Events are produced one per SSE data line and are not
// retained by the decoder.
type Event[T any] struct {
	Type  EventType `json:"type"`
	Data  T         `json:"data,omitempty"`
	Error any       `json:"error,omitempty"`
}

// IsProgress reports whether this is a progress update.
func (e *Event[T]) IsProgress() bool {
	return e.Type == EventProgress
}

// IsPartialResult reports whether this carries a partial result.
func (e *Event[T]) IsPartialResult() bool {
	return e.Type == EventPartialResult
}

// IsError reports whether this is an error event.
func (e *Event[T]) IsError() bool {
	return e.Type == EventError
}

// IsDone reports whether the stream has completed.
func (e *Event[T]) IsDone() bool {
	return e.Type == EventDone
}

// ImageEvent is a stream event for image operations.
type ImageEvent = Event[ImageResult]

// VideoEvent is a stream event for video operations.
type VideoEvent = Event[VideoResult]
