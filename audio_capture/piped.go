package audio_capture

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strconv"
	"sync"
	"syscall"
	"time"
)

const (
	// stopGracePeriod is how long Stop waits for the recording process to
	// exit after SIGTERM before escalating to SIGKILL.
	stopGracePeriod = 500 * time.Millisecond

	// stderrLimit caps how much recorder stderr is kept for diagnostics.
	stderrLimit = 4096
)

// PipedConfig configures a capture backend that spawns an external recording
// command and reads raw PCM from its stdout.
type PipedConfig struct {
	// Command is the recording executable. Defaults to "arecord".
	Command string

	// Args overrides the generated argument list. When nil, arguments are
	// built for arecord-style recorders: raw 16-bit little-endian output at
	// the configured rate and channel count.
	Args []string

	// Device is the capture device identifier passed to the recorder.
	// Ignored when Args is set. Empty selects the recorder's default device.
	Device string

	SampleRate  int
	Channels    int
	BlockFrames int
}

type pipedImpl struct {
	command     string
	args        []string
	sampleRate  int
	channels    int
	blockFrames int

	mu      sync.Mutex
	cmd     *exec.Cmd
	stdout  io.ReadCloser
	stderr  *tailBuffer
	waitCh  chan error
	stopped bool
}

// NewPiped creates the piped-process capture backend. The recording command
// is not spawned until Start.
func NewPiped(cfg *PipedConfig) (Interface, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	if cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive")
	}

	if cfg.Channels <= 0 {
		return nil, fmt.Errorf("channel count must be positive")
	}

	if cfg.BlockFrames <= 0 {
		return nil, fmt.Errorf("block size must be positive")
	}

	command := cfg.Command
	if command == "" {
		command = "arecord"
	}

	args := cfg.Args
	if args == nil {
		args = []string{
			"-q",
			"-t", "raw",
			"-f", "S16_LE",
			"-c", strconv.Itoa(cfg.Channels),
			"-r", strconv.Itoa(cfg.SampleRate),
		}
		if cfg.Device != "" {
			args = append(args, "-D", cfg.Device)
		}
	}

	return &pipedImpl{
		command:     command,
		args:        args,
		sampleRate:  cfg.SampleRate,
		channels:    cfg.Channels,
		blockFrames: cfg.BlockFrames,
	}, nil
}

func (p *pipedImpl) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cmd != nil {
		return &StartupError{Backend: p.command, Err: fmt.Errorf("already started")}
	}

	cmd := exec.Command(p.command, p.args...)

	// The recorder runs in its own process group so that Stop can signal the
	// whole group, including any shell children it spawns.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	stderr := &tailBuffer{limit: stderrLimit}
	cmd.Stderr = stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return &StartupError{Backend: p.command, Err: err}
	}

	if err := cmd.Start(); err != nil {
		return &StartupError{Backend: p.command, Err: err}
	}

	waitCh := make(chan error, 1)
	go func() {
		waitCh <- cmd.Wait()
	}()

	p.cmd = cmd
	p.stdout = stdout
	p.stderr = stderr
	p.waitCh = waitCh

	slog.Debug("recorder started",
		"command", p.command,
		"pid", cmd.Process.Pid,
		"sample_rate", p.sampleRate,
		"channels", p.channels,
	)

	return nil
}

func (p *pipedImpl) Read(ctx context.Context) (Frame, error) {
	p.mu.Lock()
	stdout := p.stdout
	p.mu.Unlock()

	if stdout == nil {
		return Frame{}, &StreamError{Backend: p.command, Detail: "not started"}
	}

	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}

	buf := make([]byte, p.blockFrames*p.channels*2)

	// A short or zero-length read means the recorder exited or the pipe
	// broke. That is fatal; the caller must terminate with a failure status.
	if _, err := io.ReadFull(stdout, buf); err != nil {
		return Frame{}, &StreamError{
			Backend: p.command,
			Detail:  fmt.Sprintf("pipe closed (stderr: %s)", p.stderr.String()),
			Err:     err,
		}
	}

	return Frame{Data: buf, SampleRate: p.sampleRate, Channels: p.channels}, nil
}

func (p *pipedImpl) Stop() error {
	p.mu.Lock()
	if p.cmd == nil || p.stopped {
		p.mu.Unlock()
		return nil
	}
	p.stopped = true
	pgid := p.cmd.Process.Pid
	p.mu.Unlock()

	// Signal the whole process group, wait out the grace window, then
	// force-kill whatever is left. Never blocks past the second window.
	_ = syscall.Kill(-pgid, syscall.SIGTERM)

	select {
	case <-p.waitCh:
	case <-time.After(stopGracePeriod):
		slog.Warn("recorder ignored SIGTERM, killing", "command", p.command, "pid", pgid)
		_ = syscall.Kill(-pgid, syscall.SIGKILL)
		select {
		case <-p.waitCh:
		case <-time.After(stopGracePeriod):
		}
	}

	return nil
}

// Abort force-kills the recorder process group without a grace window.
func (p *pipedImpl) Abort() {
	p.mu.Lock()
	cmd := p.cmd
	p.stopped = true
	p.mu.Unlock()

	if cmd == nil {
		return
	}

	_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
}

// tailBuffer is a size-bounded write sink that keeps the most recent bytes.
type tailBuffer struct {
	mu    sync.Mutex
	buf   bytes.Buffer
	limit int
}

func (t *tailBuffer) Write(b []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.buf.Write(b)
	if t.buf.Len() > t.limit {
		trimmed := t.buf.Bytes()[t.buf.Len()-t.limit:]
		var next bytes.Buffer
		next.Write(trimmed)
		t.buf = next
	}
	return len(b), nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	return bytes.NewBuffer(bytes.TrimSpace(t.buf.Bytes())).String()
}
