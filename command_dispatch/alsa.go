package command_dispatch

import (
	"context"
	"fmt"
	"os/exec"
	"time"
)

const amixerTimeout = 2 * time.Second

// AlsaConfig configures the ALSA mixer volume control.
type AlsaConfig struct {
	// Card is the ALSA card index or name passed to amixer -c.
	Card string

	// Control is the mixer simple control. Defaults to "PCM".
	Control string
}

type alsaImpl struct {
	card    string
	control string
}

// NewAlsa creates a VolumeControl that shells out to amixer. Levels 0–10 map
// to 0–100%.
func NewAlsa(cfg *AlsaConfig) (VolumeControl, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	if cfg.Card == "" {
		return nil, fmt.Errorf("card is empty")
	}

	control := cfg.Control
	if control == "" {
		control = "PCM"
	}

	return &alsaImpl{card: cfg.Card, control: control}, nil
}

func (a *alsaImpl) Apply(level int) error {
	if level < 0 || level > 10 {
		return fmt.Errorf("level %d out of range 0-10", level)
	}

	ctx, cancel := context.WithTimeout(context.Background(), amixerTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "amixer",
		"-c", a.card, "sset", a.control, fmt.Sprintf("%d%%", level*10))

	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("amixer: %w (output: %s)", err, out)
	}

	return nil
}
