package audio_capture

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// defaultQueueDepth bounds the frame queue between the portaudio callback
// thread and the consuming session loop. If the consumer stalls, frames are
// dropped rather than buffered without limit.
const defaultQueueDepth = 16

// CallbackConfig configures a capture backend driven by a portaudio input
// stream. Frames are delivered on portaudio's own thread and handed to Read
// through a bounded queue.
type CallbackConfig struct {
	// Device selects an input device by case-insensitive name substring.
	// Empty selects the default input device.
	Device string

	SampleRate  int
	Channels    int
	BlockFrames int

	// QueueDepth bounds the producer/consumer queue. Defaults to 16 blocks.
	QueueDepth int
}

type callbackImpl struct {
	device      string
	sampleRate  int
	channels    int
	blockFrames int

	frames  chan []byte
	done    chan struct{}
	dropped int

	mu       sync.Mutex
	stream   *portaudio.Stream
	started  bool
	stopOnce sync.Once
	stopErr  error
}

// NewCallback creates the callback-stream capture backend. The audio device
// is not opened until Start.
func NewCallback(cfg *CallbackConfig) (Interface, error) {
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

	depth := cfg.QueueDepth
	if depth <= 0 {
		depth = defaultQueueDepth
	}

	return &callbackImpl{
		device:      cfg.Device,
		sampleRate:  cfg.SampleRate,
		channels:    cfg.Channels,
		blockFrames: cfg.BlockFrames,
		frames:      make(chan []byte, depth),
		done:        make(chan struct{}),
	}, nil
}

func (c *callbackImpl) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started {
		return &StartupError{Backend: "portaudio", Err: fmt.Errorf("already started")}
	}

	if err := portaudio.Initialize(); err != nil {
		return &StartupError{Backend: "portaudio", Err: err}
	}

	stream, err := c.openStream()
	if err != nil {
		_ = portaudio.Terminate()
		return &StartupError{Backend: "portaudio", Err: err}
	}

	if err := stream.Start(); err != nil {
		_ = stream.Close()
		_ = portaudio.Terminate()
		return &StartupError{Backend: "portaudio", Err: err}
	}

	c.stream = stream
	c.started = true

	return nil
}

func (c *callbackImpl) openStream() (*portaudio.Stream, error) {
	if c.device == "" {
		return portaudio.OpenDefaultStream(
			c.channels, 0, float64(c.sampleRate), c.blockFrames, c.onAudio)
	}

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}

	var dev *portaudio.DeviceInfo
	for _, d := range devices {
		if d.MaxInputChannels > 0 &&
			strings.Contains(strings.ToLower(d.Name), strings.ToLower(c.device)) {
			dev = d
			break
		}
	}
	if dev == nil {
		return nil, fmt.Errorf("no input device matching %q", c.device)
	}

	params := portaudio.LowLatencyParameters(dev, nil)
	params.Input.Channels = c.channels
	params.SampleRate = float64(c.sampleRate)
	params.FramesPerBuffer = c.blockFrames

	return portaudio.OpenStream(params, c.onAudio)
}

// onAudio runs on portaudio's capture thread. Its only job is to copy the
// delivered buffer onto the queue; it never blocks and never classifies.
func (c *callbackImpl) onAudio(in []int16) {
	buf := make([]byte, len(in)*2)
	for i, s := range in {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(s))
	}

	select {
	case c.frames <- buf:
	case <-c.done:
	default:
		// Queue full: the consumer has stalled. Drop rather than grow.
		c.dropped++
		if c.dropped == 1 || c.dropped%100 == 0 {
			slog.Warn("capture queue full, dropping frames", "dropped", c.dropped)
		}
	}
}

func (c *callbackImpl) Read(ctx context.Context) (Frame, error) {
	select {
	case <-ctx.Done():
		return Frame{}, ctx.Err()
	case <-c.done:
		return Frame{}, &StreamError{Backend: "portaudio", Detail: "stream stopped"}
	case buf := <-c.frames:
		return Frame{Data: buf, SampleRate: c.sampleRate, Channels: c.channels}, nil
	}
}

func (c *callbackImpl) Stop() error {
	c.stopOnce.Do(func() {
		close(c.done)

		c.mu.Lock()
		defer c.mu.Unlock()

		if !c.started {
			return
		}

		// Closing the stream guarantees no further callbacks fire; the
		// queue is left to the garbage collector.
		if err := c.stream.Stop(); err != nil {
			c.stopErr = err
		}
		if err := c.stream.Close(); err != nil && c.stopErr == nil {
			c.stopErr = err
		}
		if err := portaudio.Terminate(); err != nil {
			slog.Warn("portaudio terminate", "err", err)
		}
	})
	return c.stopErr
}
