package listener

import "context"

// Interface is one capture session: it owns the audio source and decoder,
// drives the frame loop, and guarantees teardown on every exit route.
type Interface interface {
	// Run blocks until the session terminates and returns its disposition.
	// The returned error carries detail for failed dispositions.
	Run(ctx context.Context) (Disposition, error)

	// State reports the current lifecycle state. Safe to call from any
	// goroutine.
	State() State
}
