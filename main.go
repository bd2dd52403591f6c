// Command winterfresh-listener runs one listening session: it captures live
// audio, decodes it against a command grammar, and exits once a wake or
// shutdown phrase is heard. The supervising process reads the disposition
// from the exit code and the single WAKE/SHUTDOWN line on stdout.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	vosk "github.com/alphacep/vosk-api/go"
	"github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
	"github.com/joho/godotenv"
	"github.com/spf13/afero"

	"winterfresh-listener/audio_capture"
	"winterfresh-listener/command_dispatch"
	"winterfresh-listener/config"
	"winterfresh-listener/listener"
	"winterfresh-listener/phrase_match"
	"winterfresh-listener/speech_decoder"
)

func main() {
	os.Exit(run())
}

func run() int {
	// A .env next to the binary is a convenience for development; the
	// supervisor sets real environments directly.
	_ = godotenv.Load()

	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "winterfresh-listener: %v\n", err)
		return 1
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	classifier, err := buildClassifier(cfg)
	if err != nil {
		logger.Error("building classifier", "err", err)
		return 1
	}

	recognizer, cleanup, err := buildRecognizer(cfg, classifier)
	if err != nil {
		logger.Error("loading decoder", "err", err, "model", cfg.ModelPath)
		return 1
	}
	defer cleanup()

	source, err := buildSource(cfg)
	if err != nil {
		logger.Error("building audio source", "err", err)
		return 1
	}

	dispatcher, err := buildDispatcher(cfg, logger)
	if err != nil {
		logger.Error("building dispatcher", "err", err)
		return 1
	}

	session, err := listener.New(&listener.Config{
		Source:     source,
		Recognizer: recognizer,
		Classifier: classifier,
		Dispatcher: dispatcher,
		Downmix:    audio_capture.DownmixPolicy(cfg.Downmix),
		ShowLevel:  cfg.ShowLevel,
		Logger:     logger,
	})
	if err != nil {
		logger.Error("building session", "err", err)
		return 1
	}

	logger.Info("session starting",
		"assistant", cfg.AssistantName,
		"capture", cfg.Capture,
		"decoder", cfg.Decoder,
		"sample_rate", cfg.SampleRate,
		"block", cfg.BlockFrames,
		"open_vocab", cfg.OpenVocab,
	)

	disposition, err := session.Run(context.Background())
	if err != nil {
		logger.Error("session failed", "err", err)
	}
	logger.Info("session ended", "disposition", disposition)

	return disposition.ExitCode()
}

func buildClassifier(cfg *config.Config) (phrase_match.Interface, error) {
	sets := phrase_match.DefaultSets(cfg.AssistantName)

	// CSV env overrides replace the generated phrase lists wholesale.
	for i := range sets {
		switch {
		case sets[i].Action == phrase_match.ActionWake && len(cfg.WakePhrases) > 0:
			sets[i].Phrases = cfg.WakePhrases
		case sets[i].Action == phrase_match.ActionShutdown && len(cfg.ShutdownPhrases) > 0:
			sets[i].Phrases = cfg.ShutdownPhrases
		}
	}

	return phrase_match.New(&phrase_match.Config{
		Sets:           sets,
		OpenVocabulary: cfg.OpenVocab,
		MaxWords:       cfg.MaxWords,
		MinConfidence:  cfg.MinConfidence,
	})
}

func buildRecognizer(cfg *config.Config, classifier phrase_match.Interface) (speech_decoder.Interface, func(), error) {
	switch cfg.Decoder {
	case config.DecoderWhisper:
		model, err := whisper.New(cfg.ModelPath)
		if err != nil {
			return nil, nil, fmt.Errorf("loading whisper model: %w", err)
		}
		rec, err := speech_decoder.NewWhisper(&speech_decoder.WhisperConfig{
			Model:       model,
			SampleRate:  cfg.SampleRate,
			BlockFrames: cfg.BlockFrames,
			Language:    "en",
		})
		if err != nil {
			model.Close()
			return nil, nil, err
		}
		return rec, func() { model.Close() }, nil

	default:
		vosk.SetLogLevel(-1)
		model, err := vosk.NewModel(cfg.ModelPath)
		if err != nil {
			return nil, nil, fmt.Errorf("loading vosk model: %w", err)
		}

		var grammar []string
		if !cfg.OpenVocab {
			grammar = classifier.Grammar()
		}

		rec, err := speech_decoder.NewVosk(&speech_decoder.VoskConfig{
			Model:      model,
			SampleRate: cfg.SampleRate,
			Grammar:    grammar,
		})
		if err != nil {
			return nil, nil, err
		}
		return rec, func() {}, nil
	}
}

func buildSource(cfg *config.Config) (audio_capture.Interface, error) {
	switch cfg.Capture {
	case config.CapturePipe:
		return audio_capture.NewPiped(&audio_capture.PipedConfig{
			Device:      cfg.Device,
			SampleRate:  cfg.SampleRate,
			Channels:    cfg.Channels,
			BlockFrames: cfg.BlockFrames,
		})

	case config.CaptureReplay:
		return audio_capture.NewReplay(&audio_capture.ReplayConfig{
			FileSys:     afero.NewOsFs(),
			Path:        cfg.ReplayFile,
			BlockFrames: cfg.BlockFrames,
		})

	default:
		return audio_capture.NewCallback(&audio_capture.CallbackConfig{
			Device:      cfg.Device,
			SampleRate:  cfg.SampleRate,
			Channels:    cfg.Channels,
			BlockFrames: cfg.BlockFrames,
		})
	}
}

func buildDispatcher(cfg *config.Config, logger *slog.Logger) (command_dispatch.Interface, error) {
	volume, err := command_dispatch.NewAlsa(&command_dispatch.AlsaConfig{
		Card: cfg.AlsaCard,
	})
	if err != nil {
		return nil, err
	}

	var chime command_dispatch.ChimePlayer
	if cfg.ChimePath != "" {
		chime, err = command_dispatch.NewChime(&command_dispatch.ChimeConfig{
			FileSys: afero.NewOsFs(),
			Path:    cfg.ChimePath,
		})
		if err != nil {
			return nil, err
		}
	}

	return command_dispatch.New(&command_dispatch.Config{
		Out:    os.Stdout,
		Volume: volume,
		Chime:  chime,
		Logger: logger,
	})
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	// Diagnostics go to stderr; stdout is reserved for the hand-off token.
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
