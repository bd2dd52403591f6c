package speech_decoder

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
)

const (
	defaultQuietTime    = 200 * time.Millisecond
	defaultMaxUtterance = 10 * time.Second
)

// WhisperConfig configures the whisper decoder backend. Whisper has no
// grammar mode, so this backend always runs open-vocabulary; token
// probabilities stand in for per-word confidences.
type WhisperConfig struct {
	// Model is a loaded whisper model. The caller keeps ownership and must
	// close it after the decoder is closed.
	Model whisper.Model

	SampleRate  int
	BlockFrames int

	// Language is the decode language. Empty keeps the model default.
	Language string

	// QuietTime is how long the signal must stay quiet before the buffered
	// utterance is committed. Defaults to 200ms.
	QuietTime time.Duration

	// MaxUtterance force-commits an utterance that exceeds this duration,
	// bounding memory during continuous speech. Defaults to 10s.
	MaxUtterance time.Duration
}

type whisperImpl struct {
	model      whisper.Model
	language   string
	sampleRate int
	seg        *segmenter
	closed     bool
}

// NewWhisper creates the whisper decoder backend. Because whisper transcribes
// whole utterances in a batch, this backend segments the incoming stream
// itself: a spectral-flux detector with a pre-roll buffer decides where each
// utterance starts and ends, and each committed utterance is decoded as one
// final hypothesis. No partials are produced.
func NewWhisper(cfg *WhisperConfig) (Interface, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	if cfg.Model == nil {
		return nil, fmt.Errorf("model is nil")
	}

	if cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive")
	}

	if cfg.BlockFrames <= 0 {
		return nil, fmt.Errorf("block size must be positive")
	}

	quietTime := cfg.QuietTime
	if quietTime <= 0 {
		quietTime = defaultQuietTime
	}

	maxUtterance := cfg.MaxUtterance
	if maxUtterance <= 0 {
		maxUtterance = defaultMaxUtterance
	}
	maxSamples := int(maxUtterance.Seconds() * float64(cfg.SampleRate))

	return &whisperImpl{
		model:      cfg.Model,
		language:   cfg.Language,
		sampleRate: cfg.SampleRate,
		seg:        newSegmenter(cfg.BlockFrames, quietTime, maxSamples),
	}, nil
}

func (w *whisperImpl) Accept(pcm []byte) (Step, error) {
	if w.closed {
		return Step{}, &DecodeError{Backend: "whisper", Err: fmt.Errorf("decoder is closed")}
	}

	samples := bytesToSamples(pcm)

	utterance, boundary := w.seg.Feed(samples)
	if !boundary || len(utterance) == 0 {
		return Step{Kind: StepNone}, nil
	}

	final, err := w.transcribe(utterance)
	if err != nil {
		return Step{}, &DecodeError{Backend: "whisper", Err: err}
	}
	if final.Text == "" {
		return Step{Kind: StepNone}, nil
	}

	return Step{Kind: StepFinal, Final: final}, nil
}

func (w *whisperImpl) transcribe(utterance []int16) (Final, error) {
	wctx, err := w.model.NewContext()
	if err != nil {
		return Final{}, fmt.Errorf("creating context: %w", err)
	}

	if w.language != "" && w.model.IsMultilingual() {
		if err := wctx.SetLanguage(w.language); err != nil {
			return Final{}, fmt.Errorf("setting language: %w", err)
		}
	}

	data := make([]float32, len(utterance))
	for i, s := range utterance {
		data[i] = float32(s) / 32768.0
	}

	var cb whisper.SegmentCallback
	if err := wctx.Process(data, cb); err != nil {
		return Final{}, fmt.Errorf("processing utterance: %w", err)
	}

	var (
		parts []string
		words []WordConfidence
	)
	for {
		segment, err := wctx.NextSegment()
		if err == io.EOF {
			break
		} else if err != nil {
			return Final{}, fmt.Errorf("reading segment: %w", err)
		}

		// Bracketed segments are non-speech annotations like [BLANK_AUDIO].
		text := strings.TrimSpace(segment.Text)
		if len(text) > 0 && (text[0] == '(' || text[0] == '[' ||
			text[len(text)-1] == ')' || text[len(text)-1] == ']') {
			continue
		}
		if text == "" {
			continue
		}

		parts = append(parts, text)
		for _, token := range segment.Tokens {
			word := strings.TrimSpace(token.Text)
			if word == "" {
				continue
			}
			words = append(words, WordConfidence{Word: word, Confidence: float64(token.P)})
		}
	}

	return Final{Text: strings.Join(parts, " "), Words: words}, nil
}

func (w *whisperImpl) Close() error {
	// The model is owned by the caller; there is nothing else to free.
	w.closed = true
	return nil
}

func bytesToSamples(pcm []byte) []int16 {
	samples := make([]int16, len(pcm)/2)
	for i := range samples {
		samples[i] = int16(pcm[i*2]) | int16(pcm[i*2+1])<<8
	}
	return samples
}
