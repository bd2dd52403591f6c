package command_dispatch

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"
	"github.com/spf13/afero"
)

const chimeTimeout = 2 * time.Second

// ChimeConfig configures the confirmation chime player.
type ChimeConfig struct {
	FileSys afero.Fs

	// Path is the chime WAV file.
	Path string
}

type chimeImpl struct {
	fileSys afero.Fs
	path    string

	initOnce sync.Once
	initErr  error
}

// NewChime creates a ChimePlayer that plays a WAV asset through the default
// output device, scaled to the volume level just set.
func NewChime(cfg *ChimeConfig) (ChimePlayer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	if cfg.FileSys == nil {
		return nil, fmt.Errorf("fileSys is nil")
	}

	if cfg.Path == "" {
		return nil, fmt.Errorf("path is empty")
	}

	return &chimeImpl{
		fileSys: cfg.FileSys,
		path:    cfg.Path,
	}, nil
}

func (c *chimeImpl) Play(level int) error {
	if level <= 0 {
		// Volume zero: nothing audible to confirm with.
		return nil
	}
	if level > 10 {
		level = 10
	}

	f, err := c.fileSys.Open(c.path)
	if err != nil {
		return fmt.Errorf("opening chime: %w", err)
	}

	streamer, format, err := wav.Decode(f)
	if err != nil {
		f.Close()
		return fmt.Errorf("decoding chime: %w", err)
	}
	defer streamer.Close()

	c.initOnce.Do(func() {
		c.initErr = speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10))
	})
	if c.initErr != nil {
		return fmt.Errorf("initialising speaker: %w", c.initErr)
	}

	// Amplitude proportional to the level: level 10 plays at full volume.
	volume := &effects.Volume{
		Streamer: streamer,
		Base:     2,
		Volume:   math.Log2(float64(level) / 10.0),
	}

	done := make(chan struct{})
	speaker.Play(beep.Seq(volume, beep.Callback(func() {
		close(done)
	})))

	select {
	case <-done:
		return nil
	case <-time.After(chimeTimeout):
		return fmt.Errorf("chime playback timed out")
	}
}
