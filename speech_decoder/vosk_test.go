package speech_decoder

import "testing"

func TestParseVoskResult(t *testing.T) {
	raw := `{
		"result": [
			{"conf": 0.98, "end": 1.1, "start": 0.7, "word": "winter"},
			{"conf": 0.84, "end": 1.5, "start": 1.1, "word": "fresh"}
		],
		"text": "winter fresh"
	}`

	final, err := parseVoskResult(raw)
	if err != nil {
		t.Fatalf("parseVoskResult: %v", err)
	}

	if final.Text != "winter fresh" {
		t.Errorf("text = %q, want %q", final.Text, "winter fresh")
	}
	if len(final.Words) != 2 {
		t.Fatalf("words = %d, want 2", len(final.Words))
	}
	if final.Words[0].Word != "winter" || final.Words[0].Confidence != 0.98 {
		t.Errorf("words[0] = %+v", final.Words[0])
	}
	if final.Words[1].Word != "fresh" || final.Words[1].Confidence != 0.84 {
		t.Errorf("words[1] = %+v", final.Words[1])
	}
}

func TestParseVoskResult_EmptyHypothesis(t *testing.T) {
	final, err := parseVoskResult(`{"text": ""}`)
	if err != nil {
		t.Fatalf("parseVoskResult: %v", err)
	}
	if final.Text != "" || len(final.Words) != 0 {
		t.Errorf("got %+v, want empty final", final)
	}
}

func TestParseVoskResult_Malformed(t *testing.T) {
	if _, err := parseVoskResult("not json"); err == nil {
		t.Error("expected error, got nil")
	}
}

func TestParseVoskPartial(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "text present", raw: `{"partial": "winter fr"}`, want: "winter fr"},
		{name: "empty partial", raw: `{"partial": ""}`, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseVoskPartial(tt.raw)
			if err != nil {
				t.Fatalf("parseVoskPartial: %v", err)
			}
			if got != tt.want {
				t.Errorf("partial = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBytesToSamples(t *testing.T) {
	pcm := []byte{0x01, 0x00, 0xff, 0xff, 0x00, 0x80}
	want := []int16{1, -1, -32768}

	got := bytesToSamples(pcm)
	if len(got) != len(want) {
		t.Fatalf("length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d = %d, want %d", i, got[i], want[i])
		}
	}
}
