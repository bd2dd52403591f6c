package audio_capture

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-audio/wav"
	"github.com/spf13/afero"
)

// ReplayConfig configures a capture backend that replays a canned WAV file.
// It exists so the session loop can be exercised without a microphone or a
// recording process; exhausting the file behaves exactly like a broken
// capture pipe.
type ReplayConfig struct {
	FileSys     afero.Fs
	Path        string
	BlockFrames int
}

type replayImpl struct {
	fileSys     afero.Fs
	path        string
	blockFrames int

	mu         sync.Mutex
	data       []int
	pos        int
	sampleRate int
	channels   int
	started    bool
	stopped    bool
}

// NewReplay creates the replay capture backend. The WAV file is decoded
// during Start.
func NewReplay(cfg *ReplayConfig) (Interface, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	if cfg.FileSys == nil {
		return nil, fmt.Errorf("fileSys is nil")
	}

	if cfg.Path == "" {
		return nil, fmt.Errorf("path is empty")
	}

	if cfg.BlockFrames <= 0 {
		return nil, fmt.Errorf("block size must be positive")
	}

	return &replayImpl{
		fileSys:     cfg.FileSys,
		path:        cfg.Path,
		blockFrames: cfg.BlockFrames,
	}, nil
}

func (r *replayImpl) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return &StartupError{Backend: "replay", Err: fmt.Errorf("already started")}
	}

	f, err := r.fileSys.Open(r.path)
	if err != nil {
		return &StartupError{Backend: "replay", Err: err}
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return &StartupError{Backend: "replay", Err: fmt.Errorf("decode %s: %w", r.path, err)}
	}
	if buf.Format == nil || buf.Format.NumChannels <= 0 {
		return &StartupError{Backend: "replay", Err: fmt.Errorf("decode %s: missing format", r.path)}
	}

	r.data = buf.Data
	r.sampleRate = buf.Format.SampleRate
	r.channels = buf.Format.NumChannels
	r.started = true

	return nil
}

func (r *replayImpl) Read(ctx context.Context) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.started {
		return Frame{}, &StreamError{Backend: "replay", Detail: "not started"}
	}

	if r.stopped {
		return Frame{}, &StreamError{Backend: "replay", Detail: "stream stopped"}
	}

	want := r.blockFrames * r.channels
	if r.pos+want > len(r.data) {
		// Same contract as a recorder whose pipe hit EOF.
		return Frame{}, &StreamError{Backend: "replay", Detail: "end of canned audio"}
	}

	buf := make([]byte, want*2)
	for i := 0; i < want; i++ {
		s := r.data[r.pos+i]
		buf[i*2] = byte(s)
		buf[i*2+1] = byte(s >> 8)
	}
	r.pos += want

	return Frame{Data: buf, SampleRate: r.sampleRate, Channels: r.channels}, nil
}

func (r *replayImpl) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stopped = true
	return nil
}
