package listener

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	"winterfresh-listener/audio_capture"
	"winterfresh-listener/command_dispatch"
	"winterfresh-listener/phrase_match"
	"winterfresh-listener/speech_decoder"
)

// State is the session lifecycle state.
type State int32

const (
	StateIdle State = iota
	StateStarting
	StateStreaming
	StateDraining
	StateTerminated
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarting:
		return "starting"
	case StateStreaming:
		return "streaming"
	case StateDraining:
		return "draining"
	case StateTerminated:
		return "terminated"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Disposition is how the session ended. The supervising process only sees
// the mapped exit code, but tests and logs distinguish all four.
type Disposition int

const (
	DispositionNone Disposition = iota
	DispositionWake
	DispositionShutdown
	DispositionCancelled
	DispositionFailed
)

func (d Disposition) String() string {
	switch d {
	case DispositionWake:
		return "wake"
	case DispositionShutdown:
		return "shutdown"
	case DispositionCancelled:
		return "cancelled"
	case DispositionFailed:
		return "failed"
	default:
		return "none"
	}
}

// ExitCode maps a disposition to the process exit status: 0 for a matched
// phrase or an explicit interrupt, 1 for a fatal audio or decoder error.
func (d Disposition) ExitCode() int {
	if d == DispositionFailed {
		return 1
	}
	return 0
}

// Config configures a session.
type Config struct {
	Source     audio_capture.Interface
	Recognizer speech_decoder.Interface
	Classifier phrase_match.Interface
	Dispatcher command_dispatch.Interface

	// Downmix selects the multi-channel reduction policy.
	Downmix audio_capture.DownmixPolicy

	// Signals overrides the interrupt source. Nil installs a handler for
	// SIGINT and SIGTERM.
	Signals <-chan os.Signal

	// ShowLevel prints an advisory level bar with partial hypotheses.
	ShowLevel bool

	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

type sessionImpl struct {
	source     audio_capture.Interface
	recognizer speech_decoder.Interface
	classifier phrase_match.Interface
	dispatcher command_dispatch.Interface
	downmix    audio_capture.DownmixPolicy
	signals    <-chan os.Signal
	showLevel  bool
	logger     *slog.Logger

	state    atomic.Int32
	stopOnce sync.Once
}

// New creates a session. Exactly one session runs per process invocation;
// it owns the source and recognizer exclusively.
func New(cfg *Config) (Interface, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	if cfg.Source == nil {
		return nil, fmt.Errorf("source is nil")
	}

	if cfg.Recognizer == nil {
		return nil, fmt.Errorf("recognizer is nil")
	}

	if cfg.Classifier == nil {
		return nil, fmt.Errorf("classifier is nil")
	}

	if cfg.Dispatcher == nil {
		return nil, fmt.Errorf("dispatcher is nil")
	}

	downmix := cfg.Downmix
	if downmix == "" {
		downmix = audio_capture.DownmixFirst
	}
	if !downmix.Valid() {
		return nil, fmt.Errorf("unknown downmix policy %q", downmix)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &sessionImpl{
		source:     cfg.Source,
		recognizer: cfg.Recognizer,
		classifier: cfg.Classifier,
		dispatcher: cfg.Dispatcher,
		downmix:    downmix,
		signals:    cfg.Signals,
		showLevel:  cfg.ShowLevel,
		logger:     logger,
	}, nil
}

func (s *sessionImpl) State() State {
	return State(s.state.Load())
}

func (s *sessionImpl) setState(st State) {
	s.state.Store(int32(st))
}

func (s *sessionImpl) Run(ctx context.Context) (Disposition, error) {
	s.setState(StateStarting)

	if err := s.source.Start(); err != nil {
		s.setState(StateFailed)
		return DispositionFailed, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigs := s.signals
	if sigs == nil {
		ch := make(chan os.Signal, 2)
		signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(ch)
		sigs = ch
	}

	watcherDone := make(chan struct{})
	defer close(watcherDone)
	go s.watchSignals(sigs, cancel, watcherDone)

	s.setState(StateStreaming)
	s.logger.Info("listening")

	disposition, err := s.stream(ctx)

	// Single finalization path, reachable from every exit route.
	s.stopSource()
	if closeErr := s.recognizer.Close(); closeErr != nil {
		s.logger.Warn("recognizer close", "err", closeErr)
	}

	if disposition == DispositionFailed {
		s.setState(StateFailed)
	} else {
		s.setState(StateTerminated)
	}

	return disposition, err
}

// stream is the main loop: read one frame, downmix, feed the decoder,
// classify any final, dispatch. Frames are handled strictly in arrival
// order; the loop is the only goroutine touching the recognizer and
// dispatcher.
func (s *sessionImpl) stream(ctx context.Context) (Disposition, error) {
	for {
		if ctx.Err() != nil {
			return DispositionCancelled, nil
		}

		frame, err := s.source.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return DispositionCancelled, nil
			}
			return DispositionFailed, err
		}

		// A cancellation observed after the read never processes the frame
		// any further.
		if ctx.Err() != nil {
			return DispositionCancelled, nil
		}

		mono, err := audio_capture.Downmix(frame, s.downmix)
		if err != nil {
			return DispositionFailed, err
		}

		step, err := s.recognizer.Accept(mono.Data)
		if err != nil {
			return DispositionFailed, err
		}

		switch step.Kind {
		case speech_decoder.StepPartial:
			if s.showLevel {
				bar := audio_capture.Bar(audio_capture.Level(mono.Data), 30)
				s.logger.Debug("partial", "level", bar, "text", step.Partial)
			}

		case speech_decoder.StepFinal:
			event := s.classifier.Classify(step.Final)
			if event.Kind == phrase_match.EventNone {
				continue
			}

			s.logger.Info("heard", "text", event.Text, "event", event.Kind)

			if s.dispatcher.Dispatch(event) {
				switch event.Kind {
				case phrase_match.EventWake:
					return DispositionWake, nil
				case phrase_match.EventShutdown:
					return DispositionShutdown, nil
				}
			}
		}
	}
}

// watchSignals turns the first interrupt into a cancellation plus a source
// stop (to unblock a pipe read parked in the kernel) and escalates on the
// second. No cleanup logic runs here beyond that; the finalization path in
// Run owns teardown.
func (s *sessionImpl) watchSignals(sigs <-chan os.Signal, cancel context.CancelFunc, done <-chan struct{}) {
	seen := 0
	for {
		select {
		case <-done:
			return
		case sig := <-sigs:
			seen++
			if seen == 1 {
				s.logger.Info("interrupt received, draining", "signal", sig)
				cancel()
				go s.stopSource()
			} else {
				s.logger.Warn("second interrupt, forcing teardown", "signal", sig)
				if aborter, ok := s.source.(audio_capture.Aborter); ok {
					aborter.Abort()
				}
			}
		}
	}
}

// stopSource performs the bounded source teardown exactly once per session,
// no matter which exit route reaches it first.
func (s *sessionImpl) stopSource() {
	s.stopOnce.Do(func() {
		s.setState(StateDraining)
		if err := s.source.Stop(); err != nil {
			s.logger.Warn("source stop", "err", err)
		}
	})
}
