package command_dispatch

import (
	"bytes"
	"fmt"
	"log/slog"
	"testing"

	"winterfresh-listener/phrase_match"
)

type fakeVolume struct {
	levels []int
	err    error
}

func (f *fakeVolume) Apply(level int) error {
	if f.err != nil {
		return f.err
	}
	f.levels = append(f.levels, level)
	return nil
}

type fakeChime struct {
	played []int
	err    error
}

func (f *fakeChime) Play(level int) error {
	f.played = append(f.played, level)
	return f.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestDispatch_WakeWritesTokenAndTerminates(t *testing.T) {
	var out bytes.Buffer
	d, err := New(&Config{Out: &out, Logger: quietLogger()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	terminate := d.Dispatch(phrase_match.CommandEvent{Kind: phrase_match.EventWake, Text: "winter fresh"})
	if !terminate {
		t.Error("wake event did not request termination")
	}
	if got := out.String(); got != "WAKE\n" {
		t.Errorf("stdout = %q, want %q", got, "WAKE\n")
	}
}

func TestDispatch_ShutdownWritesTokenAndTerminates(t *testing.T) {
	var out bytes.Buffer
	d, err := New(&Config{Out: &out, Logger: quietLogger()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	terminate := d.Dispatch(phrase_match.CommandEvent{Kind: phrase_match.EventShutdown, Text: "winter fresh stop"})
	if !terminate {
		t.Error("shutdown event did not request termination")
	}
	if got := out.String(); got != "SHUTDOWN\n" {
		t.Errorf("stdout = %q, want %q", got, "SHUTDOWN\n")
	}
}

func TestDispatch_VolumeAppliesAndContinues(t *testing.T) {
	var out bytes.Buffer
	volume := &fakeVolume{}
	chime := &fakeChime{}

	d, err := New(&Config{Out: &out, Volume: volume, Chime: chime, Logger: quietLogger()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	terminate := d.Dispatch(phrase_match.CommandEvent{Kind: phrase_match.EventVolume, Level: 4})
	if terminate {
		t.Error("volume event requested termination")
	}
	if len(volume.levels) != 1 || volume.levels[0] != 4 {
		t.Errorf("applied levels = %v, want [4]", volume.levels)
	}
	if len(chime.played) != 1 || chime.played[0] != 4 {
		t.Errorf("chimed levels = %v, want [4]", chime.played)
	}
	if out.Len() != 0 {
		t.Errorf("volume event wrote %q to stdout", out.String())
	}
}

func TestDispatch_VolumeFailureIsRecoverable(t *testing.T) {
	var out bytes.Buffer
	volume := &fakeVolume{err: fmt.Errorf("amixer exploded")}
	chime := &fakeChime{}

	d, err := New(&Config{Out: &out, Volume: volume, Chime: chime, Logger: quietLogger()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	terminate := d.Dispatch(phrase_match.CommandEvent{Kind: phrase_match.EventVolume, Level: 4})
	if terminate {
		t.Error("failed volume event requested termination")
	}
	if len(chime.played) != 0 {
		t.Error("chime played despite failed volume change")
	}
}

func TestDispatch_ChimeFailureIsRecoverable(t *testing.T) {
	var out bytes.Buffer
	volume := &fakeVolume{}
	chime := &fakeChime{err: fmt.Errorf("no output device")}

	d, err := New(&Config{Out: &out, Volume: volume, Chime: chime, Logger: quietLogger()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if terminate := d.Dispatch(phrase_match.CommandEvent{Kind: phrase_match.EventVolume, Level: 2}); terminate {
		t.Error("volume event requested termination")
	}
	if len(volume.levels) != 1 {
		t.Errorf("applied levels = %v, want one entry", volume.levels)
	}
}

func TestDispatch_VolumeWithoutControl(t *testing.T) {
	var out bytes.Buffer
	d, err := New(&Config{Out: &out, Logger: quietLogger()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if terminate := d.Dispatch(phrase_match.CommandEvent{Kind: phrase_match.EventVolume, Level: 5}); terminate {
		t.Error("volume event requested termination")
	}
}

func TestDispatch_UnmatchedIsSilent(t *testing.T) {
	var out bytes.Buffer
	d, err := New(&Config{Out: &out, Logger: quietLogger()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if terminate := d.Dispatch(phrase_match.CommandEvent{Kind: phrase_match.EventUnmatched, Text: "okay"}); terminate {
		t.Error("unmatched event requested termination")
	}
	if out.Len() != 0 {
		t.Errorf("unmatched event wrote %q to stdout", out.String())
	}
}

func TestNew_RequiresOut(t *testing.T) {
	if _, err := New(&Config{}); err == nil {
		t.Error("expected error for missing Out, got nil")
	}
	if _, err := New(nil); err == nil {
		t.Error("expected error for nil config, got nil")
	}
}

func TestAlsa_LevelRange(t *testing.T) {
	volume, err := NewAlsa(&AlsaConfig{Card: "2"})
	if err != nil {
		t.Fatalf("NewAlsa: %v", err)
	}

	if err := volume.Apply(-1); err == nil {
		t.Error("expected error for level -1, got nil")
	}
	if err := volume.Apply(11); err == nil {
		t.Error("expected error for level 11, got nil")
	}
}

func TestNewAlsa_Validation(t *testing.T) {
	if _, err := NewAlsa(nil); err == nil {
		t.Error("expected error for nil config, got nil")
	}
	if _, err := NewAlsa(&AlsaConfig{}); err == nil {
		t.Error("expected error for empty card, got nil")
	}
}
