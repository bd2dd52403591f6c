package speech_decoder

import "fmt"

// StepKind classifies the outcome of feeding one frame to the decoder.
type StepKind int

const (
	// StepNone means the decoder consumed the frame with nothing to report.
	StepNone StepKind = iota

	// StepPartial carries an in-progress, provisional hypothesis.
	StepPartial

	// StepFinal carries the committed transcript for one utterance. The
	// decoder produces exactly one final per utterance.
	StepFinal
)

// WordConfidence is the decoder's per-word confidence, when available.
type WordConfidence struct {
	Word       string
	Confidence float64
}

// Final is the decoder's committed transcript for one segmented utterance.
type Final struct {
	Text  string
	Words []WordConfidence
}

// Step is the result of one Accept call.
type Step struct {
	Kind    StepKind
	Partial string
	Final   Final
}

// Interface wraps the opaque speech decoder. The decoder is configured once
// at construction, with either a closed grammar or open vocabulary, and is
// stateful across the session: it must only be driven from one goroutine.
type Interface interface {
	// Accept feeds one mono 16-bit little-endian PCM frame to the decoder.
	// A decoder failure is reported as a *DecodeError; decoder state cannot
	// be trusted afterwards, so the caller must terminate.
	Accept(pcm []byte) (Step, error)

	// Close releases decoder resources. Idempotent.
	Close() error
}

// DecodeError reports a decoder failure. Not expected from a well-formed
// decoder; always fatal.
type DecodeError struct {
	Backend string
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: decode failed: %v", e.Backend, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
