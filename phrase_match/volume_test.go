package phrase_match

import "testing"

func TestExtractLevel(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   int
		wantOK bool
	}{
		{name: "digit", text: "winter fresh volume 7", want: 7, wantOK: true},
		{name: "digit zero", text: "winter fresh volume 0", want: 0, wantOK: true},
		{name: "digit ten", text: "winter fresh volume 10", want: 10, wantOK: true},
		{name: "word", text: "winter fresh volume three", want: 3, wantOK: true},
		{name: "word zero", text: "winter fresh volume zero", want: 0, wantOK: true},
		{name: "word ten", text: "winter fresh volume ten", want: 10, wantOK: true},
		{name: "uppercase word", text: "VOLUME SEVEN", want: 7, wantOK: true},
		{name: "digit beats word", text: "volume one 9", want: 9, wantOK: true},
		{name: "first word wins", text: "volume two three", want: 2, wantOK: true},
		{name: "out of range digit", text: "volume 11", wantOK: false},
		{name: "negative digit", text: "volume -1", wantOK: false},
		{name: "no level", text: "winter fresh volume please", wantOK: false},
		{name: "empty", text: "", wantOK: false},
		{name: "number embedded in word", text: "volume tension", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractLevel(tt.text)
			if ok != tt.wantOK {
				t.Fatalf("ExtractLevel(%q) ok = %v, want %v", tt.text, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("ExtractLevel(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestExtractLevel_IsPure(t *testing.T) {
	for i := 0; i < 5; i++ {
		got, ok := ExtractLevel("winter fresh volume six")
		if !ok || got != 6 {
			t.Fatalf("call %d: got %d/%v, want 6/true", i, got, ok)
		}
	}
}
