// Package config loads the listener's configuration from environment
// variables. There are no flags and no config file: the supervising process
// sets the environment and reads the exit code.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// CaptureBackend selects the audio source implementation.
type CaptureBackend string

const (
	CapturePipe      CaptureBackend = "pipe"
	CapturePortAudio CaptureBackend = "portaudio"
	CaptureReplay    CaptureBackend = "replay"
)

// DecoderBackend selects the speech decoder implementation.
type DecoderBackend string

const (
	DecoderVosk    DecoderBackend = "vosk"
	DecoderWhisper DecoderBackend = "whisper"
)

// Config is the full environment-derived configuration.
type Config struct {
	SampleRate  int    `env:"WAKE_SR" envDefault:"16000"`
	BlockFrames int    `env:"WAKE_BLOCK" envDefault:"4000"`
	Channels    int    `env:"WAKE_CHANNELS" envDefault:"1"`
	Device      string `env:"WAKE_DEVICE"`

	Capture    CaptureBackend `env:"WAKE_CAPTURE" envDefault:"portaudio"`
	ReplayFile string         `env:"WAKE_REPLAY_FILE"`

	Decoder   DecoderBackend `env:"WAKE_DECODER" envDefault:"vosk"`
	ModelPath string         `env:"WAKE_MODEL_PATH"`

	// OpenVocab disables the grammar constraint and enables the word-count
	// and confidence filters.
	OpenVocab     bool    `env:"WAKE_OPEN_VOCAB" envDefault:"false"`
	MaxWords      int     `env:"WAKE_MAX_WORDS" envDefault:"6"`
	MinConfidence float64 `env:"WAKE_MIN_CONFIDENCE" envDefault:"0.6"`

	AssistantName   string   `env:"WAKE_ASSISTANT_NAME" envDefault:"winter fresh"`
	WakePhrases     []string `env:"WAKE_PHRASES" envSeparator:","`
	ShutdownPhrases []string `env:"SHUTDOWN_PHRASES" envSeparator:","`

	Downmix string `env:"WAKE_DOWNMIX" envDefault:"first"`

	AlsaCard  string `env:"ALSA_CARD" envDefault:"2"`
	ChimePath string `env:"WAKE_CHIME_PATH"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	ShowLevel bool   `env:"WAKE_SHOW_LEVEL" envDefault:"false"`
}

// FromEnv parses and validates the environment.
func FromEnv() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Validate checks value ranges and enum fields.
func (c *Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("WAKE_SR must be positive, got %d", c.SampleRate)
	}

	if c.BlockFrames <= 0 {
		return fmt.Errorf("WAKE_BLOCK must be positive, got %d", c.BlockFrames)
	}

	if c.Channels < 1 || c.Channels > 8 {
		return fmt.Errorf("WAKE_CHANNELS must be 1-8, got %d", c.Channels)
	}

	switch c.Capture {
	case CapturePipe, CapturePortAudio:
	case CaptureReplay:
		if c.ReplayFile == "" {
			return fmt.Errorf("WAKE_CAPTURE=replay requires WAKE_REPLAY_FILE")
		}
	default:
		return fmt.Errorf("WAKE_CAPTURE must be pipe, portaudio or replay, got %q", c.Capture)
	}

	switch c.Decoder {
	case DecoderVosk, DecoderWhisper:
	default:
		return fmt.Errorf("WAKE_DECODER must be vosk or whisper, got %q", c.Decoder)
	}

	if c.ModelPath == "" {
		return fmt.Errorf("WAKE_MODEL_PATH is required")
	}

	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return fmt.Errorf("WAKE_MIN_CONFIDENCE must be in [0,1], got %v", c.MinConfidence)
	}

	if c.MaxWords < 0 {
		return fmt.Errorf("WAKE_MAX_WORDS must not be negative, got %d", c.MaxWords)
	}

	if c.Downmix != "first" && c.Downmix != "average" {
		return fmt.Errorf("WAKE_DOWNMIX must be first or average, got %q", c.Downmix)
	}

	if c.AssistantName == "" {
		return fmt.Errorf("WAKE_ASSISTANT_NAME must not be empty")
	}

	return nil
}
