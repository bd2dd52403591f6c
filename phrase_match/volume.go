package phrase_match

import (
	"strconv"
	"strings"
)

var numberWords = map[string]int{
	"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
}

// ExtractLevel pulls a volume level 0–10 out of a hypothesis. Digit tokens
// are scanned first, then number words; the first recognisable level wins.
// Extraction is pure and total over the configured range: identical text
// always yields an identical level.
func ExtractLevel(text string) (int, bool) {
	tokens := strings.Fields(strings.ToLower(text))

	for _, tok := range tokens {
		n, err := strconv.Atoi(tok)
		if err != nil {
			continue
		}
		if n >= 0 && n <= 10 {
			return n, true
		}
	}

	for _, tok := range tokens {
		if n, ok := numberWords[tok]; ok {
			return n, true
		}
	}

	return 0, false
}
