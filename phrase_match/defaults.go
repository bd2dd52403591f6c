package phrase_match

import "strings"

// wakeVariants maps an assistant name to the phrase list the decoder should
// accept as that name. The small English model routinely mishears compound
// names, so the default assistant carries its observed confusions; other
// names fall back to the name itself plus its unspaced form.
func wakeVariants(assistant string) []string {
	if assistant == "winter fresh" {
		return []string{
			"winterfresh",
			"winter fresh",
			"when to fresh",
			"whent to fresh",
			"when a fresh",
			"when the fresh",
			"winner fresh",
			"winter fest",
		}
	}

	variants := []string{assistant}
	if compact := strings.ReplaceAll(assistant, " ", ""); compact != assistant {
		variants = append(variants, compact)
	}
	return variants
}

func shutdownPhrases(assistant string) []string {
	return []string{
		assistant + " stop",
		"hey " + assistant + " stop",
	}
}

func volumePhrases(assistant string) []string {
	levels := []string{
		"zero", "one", "two", "three", "four", "five",
		"six", "seven", "eight", "nine", "ten",
	}
	phrases := make([]string, len(levels))
	for i, level := range levels {
		phrases[i] = assistant + " volume " + level
	}
	return phrases
}

// fillerPhrases pad the decoder grammar so near-miss audio resolves to a
// harmless non-command phrase instead of being forced onto a command.
var fillerPhrases = []string{
	"the", "a", "and", "uh", "um", "huh", "hey", "okay", "yeah", "no",
	"what", "hello", "thanks", "thank you", "please", "stop", "go",
	"one", "two", "three", "music", "lights", "weather",
}

// DefaultSets builds the standard phrase sets for an assistant name:
// shutdown (exact), volume (exact), wake (substring, per the observed
// behaviour of the listener this replaces), and filler (exact).
func DefaultSets(assistant string) []PhraseSet {
	assistant = normalize(assistant)

	return []PhraseSet{
		{
			Name:    "shutdown",
			Phrases: shutdownPhrases(assistant),
			Mode:    MatchExact,
			Action:  ActionShutdown,
		},
		{
			Name:    "volume",
			Phrases: volumePhrases(assistant),
			Mode:    MatchExact,
			Action:  ActionVolume,
		},
		{
			Name:    "wake",
			Phrases: wakeVariants(assistant),
			Mode:    MatchSubstring,
			Action:  ActionWake,
		},
		{
			Name:    "filler",
			Phrases: fillerPhrases,
			Mode:    MatchExact,
			Action:  ActionFiller,
		},
	}
}
