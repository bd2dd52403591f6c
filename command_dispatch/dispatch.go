package command_dispatch

import (
	"fmt"
	"io"
	"log/slog"

	"winterfresh-listener/phrase_match"
)

// The only contractually meaningful stdout lines. The supervising process
// parses exactly one of these; everything else this program prints is
// advisory and goes to stderr.
const (
	TokenWake     = "WAKE"
	TokenShutdown = "SHUTDOWN"
)

// Config configures the dispatcher.
type Config struct {
	// Out receives the single-line hand-off token. Required.
	Out io.Writer

	// Volume applies volume levels. Optional; volume events are logged and
	// skipped when nil.
	Volume VolumeControl

	// Chime plays the confirmation chime after a successful volume change.
	// Optional.
	Chime ChimePlayer

	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

type dispatcherImpl struct {
	out    io.Writer
	volume VolumeControl
	chime  ChimePlayer
	logger *slog.Logger
}

func New(cfg *Config) (Interface, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	if cfg.Out == nil {
		return nil, fmt.Errorf("out is nil")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &dispatcherImpl{
		out:    cfg.Out,
		volume: cfg.Volume,
		chime:  cfg.Chime,
		logger: logger,
	}, nil
}

func (d *dispatcherImpl) Dispatch(event phrase_match.CommandEvent) bool {
	switch event.Kind {
	case phrase_match.EventWake:
		d.logger.Info("wake phrase matched", "text", event.Text)
		fmt.Fprintln(d.out, TokenWake)
		return true

	case phrase_match.EventShutdown:
		d.logger.Info("shutdown phrase matched", "text", event.Text)
		fmt.Fprintln(d.out, TokenShutdown)
		return true

	case phrase_match.EventVolume:
		d.applyVolume(event.Level)
		return false

	case phrase_match.EventUnmatched:
		d.logger.Debug("unmatched", "text", event.Text)
		return false

	default:
		return false
	}
}

func (d *dispatcherImpl) applyVolume(level int) {
	if d.volume == nil {
		d.logger.Warn("volume control not configured", "level", level)
		return
	}

	if err := d.volume.Apply(level); err != nil {
		// Recoverable: the session keeps listening.
		d.logger.Error("volume apply failed", "level", level, "err", err)
		return
	}

	d.logger.Info("volume set", "level", level)

	if d.chime == nil {
		return
	}
	if err := d.chime.Play(level); err != nil {
		d.logger.Warn("chime playback failed", "level", level, "err", err)
	}
}
