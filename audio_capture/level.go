package audio_capture

import "strings"

// Level returns the mean absolute amplitude of a mono 16-bit little-endian
// PCM buffer, normalised to [0, 1]. Purely advisory; used for the level bar
// printed alongside partial hypotheses.
func Level(mono []byte) float64 {
	n := len(mono) / 2
	if n == 0 {
		return 0
	}

	var sum float64
	for i := 0; i < n; i++ {
		s := int16(mono[i*2]) | int16(mono[i*2+1])<<8
		if s < 0 {
			sum -= float64(s)
		} else {
			sum += float64(s)
		}
	}

	return sum / float64(n) / 32768.0
}

// Bar renders a level as a fixed-width meter. Levels are boosted 10x before
// rendering so ordinary speech is visible against the full 16-bit range.
func Bar(level float64, width int) string {
	if width <= 0 {
		return ""
	}

	normalized := level * 10
	if normalized > 1 {
		normalized = 1
	}
	filled := int(normalized * float64(width))

	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
