package audio_capture

import (
	"context"
	"fmt"
)

// Frame is one fixed-size block of interleaved 16-bit little-endian PCM
// samples produced by a capture backend. A frame is never mutated after it
// is returned; its length is always an exact multiple of 2*Channels bytes.
type Frame struct {
	Data       []byte
	SampleRate int
	Channels   int
}

// Samples returns the number of per-channel sample groups in the frame.
func (f Frame) Samples() int {
	if f.Channels <= 0 {
		return 0
	}
	return len(f.Data) / (2 * f.Channels)
}

// Interface is the capability shared by every capture backend: yield frames
// of a fixed nominal size and support a bounded graceful stop.
type Interface interface {
	// Start opens the backend. A device or process that cannot be opened is
	// reported as a *StartupError.
	Start() error

	// Read blocks until one full frame is available, the stream breaks, or
	// ctx is cancelled. A broken stream is reported as a *StreamError and is
	// never retryable.
	Read(ctx context.Context) (Frame, error)

	// Stop tears the backend down within a bounded grace window. It is
	// idempotent and safe to call at any time, including after Read has
	// already returned an error.
	Stop() error
}

// Aborter is implemented by backends that can escalate past the graceful
// Stop path. A second interrupt arriving while a session is draining calls
// Abort instead of queueing another graceful attempt.
type Aborter interface {
	Abort()
}

// StartupError reports that a capture backend could not be opened.
type StartupError struct {
	Backend string
	Err     error
}

func (e *StartupError) Error() string {
	return fmt.Sprintf("%s: startup failed: %v", e.Backend, e.Err)
}

func (e *StartupError) Unwrap() error { return e.Err }

// StreamError reports a fatal mid-stream capture failure, such as a broken
// pipe or an exited recording process.
type StreamError struct {
	Backend string
	Detail  string
	Err     error
}

func (e *StreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Backend, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Backend, e.Detail)
}

func (e *StreamError) Unwrap() error { return e.Err }
