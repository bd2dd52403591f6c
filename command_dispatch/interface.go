package command_dispatch

import "winterfresh-listener/phrase_match"

// Interface consumes classified command events and performs their side
// effects.
type Interface interface {
	// Dispatch acts on one event and reports whether the session should
	// terminate. Side-effect failures are logged, never propagated: a
	// failed volume change leaves the session listening.
	Dispatch(event phrase_match.CommandEvent) bool
}

// VolumeControl applies a 0–10 volume level to the system mixer.
type VolumeControl interface {
	Apply(level int) error
}

// ChimePlayer plays the confirmation chime at an amplitude proportional to
// the volume level just set.
type ChimePlayer interface {
	Play(level int) error
}
