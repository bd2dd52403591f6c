package speech_decoder

import (
	"encoding/json"
	"fmt"
	"sync"

	vosk "github.com/alphacep/vosk-api/go"
)

// VoskConfig configures the vosk decoder backend.
type VoskConfig struct {
	// Model is a loaded vosk model. The caller keeps ownership.
	Model *vosk.VoskModel

	SampleRate int

	// Grammar constrains decoding to the given phrases. Nil enables open
	// vocabulary with per-word confidences instead.
	Grammar []string
}

type voskImpl struct {
	mu     sync.Mutex
	rec    *vosk.VoskRecognizer
	closed bool
}

// NewVosk creates the vosk decoder backend. With a grammar the recognizer is
// restricted to the union of the registered phrase sets; without one it runs
// open-vocabulary and reports word confidences for post-hoc filtering.
func NewVosk(cfg *VoskConfig) (Interface, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	if cfg.Model == nil {
		return nil, fmt.Errorf("model is nil")
	}

	if cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive")
	}

	var (
		rec *vosk.VoskRecognizer
		err error
	)

	if cfg.Grammar != nil {
		grammar, jsonErr := json.Marshal(cfg.Grammar)
		if jsonErr != nil {
			return nil, fmt.Errorf("encoding grammar: %w", jsonErr)
		}
		rec, err = vosk.NewRecognizerGrm(cfg.Model, float64(cfg.SampleRate), string(grammar))
	} else {
		rec, err = vosk.NewRecognizer(cfg.Model, float64(cfg.SampleRate))
	}
	if err != nil {
		return nil, fmt.Errorf("creating recognizer: %w", err)
	}

	rec.SetWords(1)

	return &voskImpl{rec: rec}, nil
}

func (v *voskImpl) Accept(pcm []byte) (Step, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return Step{}, &DecodeError{Backend: "vosk", Err: fmt.Errorf("decoder is closed")}
	}

	if v.rec.AcceptWaveform(pcm) != 0 {
		final, err := parseVoskResult(v.rec.Result())
		if err != nil {
			return Step{}, &DecodeError{Backend: "vosk", Err: err}
		}
		return Step{Kind: StepFinal, Final: final}, nil
	}

	partial, err := parseVoskPartial(v.rec.PartialResult())
	if err != nil {
		return Step{}, &DecodeError{Backend: "vosk", Err: err}
	}
	if partial == "" {
		return Step{Kind: StepNone}, nil
	}

	return Step{Kind: StepPartial, Partial: partial}, nil
}

func (v *voskImpl) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	// The binding frees the recognizer through a runtime finalizer; dropping
	// the reference is all that is needed here.
	v.closed = true
	v.rec = nil

	return nil
}

type voskResult struct {
	Text   string `json:"text"`
	Result []struct {
		Word string  `json:"word"`
		Conf float64 `json:"conf"`
	} `json:"result"`
}

func parseVoskResult(raw string) (Final, error) {
	var res voskResult
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		return Final{}, fmt.Errorf("parsing result %q: %w", raw, err)
	}

	final := Final{Text: res.Text}
	for _, w := range res.Result {
		final.Words = append(final.Words, WordConfidence{Word: w.Word, Confidence: w.Conf})
	}

	return final, nil
}

func parseVoskPartial(raw string) (string, error) {
	var res struct {
		Partial string `json:"partial"`
	}
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		return "", fmt.Errorf("parsing partial %q: %w", raw, err)
	}

	return res.Partial, nil
}
