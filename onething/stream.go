package onething

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/onething-labs/onething-go/core"
)

// doneSentinel ends an SSE stream.
const doneSentinel = "[DONE]"

// sseReader owns the SSE line framing shared by both decoder variants:
// context checks, line reads, and idempotent close of the response body.
type sseReader struct {
	ctx       context.Context
	body      io.ReadCloser
	reader    *bufio.Reader
	closeOnce sync.Once
	closeErr  error
}

func newSSEReader(ctx context.Context, body io.ReadCloser) *sseReader {
	return &sseReader{
		ctx:    ctx,
		body:   body,
		reader: bufio.NewReader(body),
	}
}

// readLine returns the next trimmed line. io.EOF is passed through as-is;
// any other read failure is a hard stream error.
func (s *sseReader) readLine() (string, error) {
	line, err := s.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", io.EOF
		}
		return "", fmt.Errorf("%w: read: %v", core.ErrStream, err)
	}
	return strings.TrimSpace(line), nil
}

// Close releases the underlying connection. Safe to call multiple times.
func (s *sseReader) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.body.Close()
	})
	return s.closeErr
}

// EventReader decodes a structured SSE stream into typed events, one
// complete JSON event per data line. It is pull-based: the connection is
// read only when the caller asks for the next event, so backpressure is
// implicit.
//
// EventReader is not safe for concurrent use; a stream body belongs to
// exactly one reader.
type EventReader[T any] struct {
	*sseReader
}

func newEventReader[T any](ctx context.Context, body io.ReadCloser) *EventReader[T] {
	return &EventReader[T]{sseReader: newSSEReader(ctx, body)}
}

// Next returns the next event, or io.EOF when the stream ends (including
// the [DONE] sentinel). Blank lines and comment lines are skipped.
func (r *EventReader[T]) Next() (*core.Event[T], error) {
	select {
	case <-r.ctx.Done():
		return nil, r.ctx.Err()
	default:
	}

	for {
		line, err := r.readLine()
		if err != nil {
			return nil, err
		}

		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}

		data, ok := strings.CutPrefix(line, "data: ")
		if !ok {
			continue
		}
		if data == doneSentinel {
			return nil, io.EOF
		}

		var event core.Event[T]
		if err := json.Unmarshal([]byte(data), &event); err != nil {
			return nil, fmt.Errorf("%w: parse event: %v", core.ErrDecode, err)
		}
		return &event, nil
	}
}

// ReadAll drains the stream and returns every event up to and including the
// done event, if any.
func (r *EventReader[T]) ReadAll() ([]core.Event[T], error) {
	var events []core.Event[T]
	for {
		event, err := r.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return events, nil
			}
			return events, err
		}
		events = append(events, *event)
		if event.IsDone() {
			return events, nil
		}
	}
}

// Drain pulls events and hands each to fn. It stops cleanly after a done
// event or end of stream, and fails on an error event, a callback error, or
// a decode/read failure. The reader is closed before returning.
func Drain[T any](r *EventReader[T], fn func(*core.Event[T]) error) error {
	defer r.Close()

	for {
		event, err := r.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		if err := fn(event); err != nil {
			return err
		}
		if event.IsDone() {
			return nil
		}
		if event.IsError() {
			return fmt.Errorf("%w: %v", core.ErrStream, event.Error)
		}
	}
}

// ChunkReader decodes a free-form SSE stream where one JSON payload may
// span several data lines: lines accumulate until a blank separator, then
// the concatenation is parsed as a single untyped object. Used for
// provider-defined shapes such as chat-completion chunks.
//
// ChunkReader is not safe for concurrent use.
type ChunkReader struct {
	*sseReader
}

func newChunkReader(ctx context.Context, body io.ReadCloser) *ChunkReader {
	return &ChunkReader{sseReader: newSSEReader(ctx, body)}
}

// Next returns the next decoded chunk, or io.EOF when the stream ends.
func (r *ChunkReader) Next() (map[string]any, error) {
	select {
	case <-r.ctx.Done():
		return nil, r.ctx.Err()
	default:
	}

	var buf bytes.Buffer
	for {
		line, err := r.readLine()
		if err != nil {
			if errors.Is(err, io.EOF) && buf.Len() > 0 {
				// Stream ended without a trailing separator; parse what
				// accumulated.
				var chunk map[string]any
				if jsonErr := json.Unmarshal(buf.Bytes(), &chunk); jsonErr == nil {
					return chunk, nil
				}
			}
			return nil, err
		}

		if line == "" {
			if buf.Len() == 0 {
				continue
			}
			var chunk map[string]any
			if err := json.Unmarshal(buf.Bytes(), &chunk); err != nil {
				return nil, fmt.Errorf("%w: parse chunk: %v", core.ErrDecode, err)
			}
			return chunk, nil
		}

		if strings.HasPrefix(line, ":") {
			continue
		}
		if data, ok := strings.CutPrefix(line, "data: "); ok {
			if data == doneSentinel {
				return nil, io.EOF
			}
			buf.WriteString(data)
		}
	}
}
