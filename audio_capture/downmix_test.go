package audio_capture

import (
	"bytes"
	"testing"
)

func pcm(samples ...int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		out[i*2] = byte(s)
		out[i*2+1] = byte(s >> 8)
	}
	return out
}

func TestDownmix_FirstChannel(t *testing.T) {
	// Two channels, three sample groups; channel 0 carries the signal.
	frame := Frame{
		Data:       pcm(100, -7, 200, -7, -300, -7),
		SampleRate: 16000,
		Channels:   2,
	}

	got, err := Downmix(frame, DownmixFirst)
	if err != nil {
		t.Fatalf("Downmix: %v", err)
	}

	want := pcm(100, 200, -300)
	if !bytes.Equal(got.Data, want) {
		t.Errorf("data = %v, want %v", got.Data, want)
	}
	if got.Channels != 1 {
		t.Errorf("channels = %d, want 1", got.Channels)
	}
	if got.SampleRate != 16000 {
		t.Errorf("sample rate = %d, want 16000", got.SampleRate)
	}
}

func TestDownmix_Average(t *testing.T) {
	tests := []struct {
		name     string
		channels int
		in       []int16
		want     []int16
	}{
		{
			name:     "two channels",
			channels: 2,
			in:       []int16{100, 200, -100, -200},
			want:     []int16{150, -150},
		},
		{
			name:     "four channels truncates toward zero",
			channels: 4,
			in:       []int16{1, 1, 1, 2},
			want:     []int16{1},
		},
		{
			name:     "extremes stay in range",
			channels: 2,
			in:       []int16{32767, 32767, -32768, -32768},
			want:     []int16{32767, -32768},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame := Frame{Data: pcm(tt.in...), SampleRate: 16000, Channels: tt.channels}

			got, err := Downmix(frame, DownmixAverage)
			if err != nil {
				t.Fatalf("Downmix: %v", err)
			}

			if want := pcm(tt.want...); !bytes.Equal(got.Data, want) {
				t.Errorf("data = %v, want %v", got.Data, want)
			}
		})
	}
}

func TestDownmix_MonoPassthrough(t *testing.T) {
	frame := Frame{Data: pcm(1, 2, 3), SampleRate: 16000, Channels: 1}

	got, err := Downmix(frame, DownmixAverage)
	if err != nil {
		t.Fatalf("Downmix: %v", err)
	}

	if !bytes.Equal(got.Data, frame.Data) {
		t.Errorf("mono frame was modified: %v", got.Data)
	}
}

func TestDownmix_Errors(t *testing.T) {
	tests := []struct {
		name  string
		frame Frame
	}{
		{
			name:  "zero channels",
			frame: Frame{Data: pcm(1, 2), Channels: 0},
		},
		{
			name:  "ragged byte length",
			frame: Frame{Data: pcm(1, 2, 3), Channels: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Downmix(tt.frame, DownmixFirst); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestDownmix_UnknownPolicy(t *testing.T) {
	frame := Frame{Data: pcm(1, 2), Channels: 2}
	if _, err := Downmix(frame, DownmixPolicy("median")); err == nil {
		t.Error("expected error for unknown policy, got nil")
	}
}
