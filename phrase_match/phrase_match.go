package phrase_match

import (
	"fmt"
	"sort"
	"strings"

	"winterfresh-listener/speech_decoder"
)

// MatchMode selects how a canonical phrase is compared against a hypothesis.
type MatchMode string

const (
	// MatchExact requires full-string equality after normalisation.
	MatchExact MatchMode = "exact"

	// MatchSubstring requires the canonical phrase to occur anywhere in the
	// hypothesis.
	MatchSubstring MatchMode = "substring"
)

// Action tags a phrase set with the command it triggers.
type Action string

const (
	ActionWake     Action = "wake"
	ActionShutdown Action = "shutdown"
	ActionVolume   Action = "volume"
	ActionFiller   Action = "filler"
)

// actionRank orders set evaluation: shutdown and volume before wake before
// filler. Shutdown outranks wake so overlapping phrase lists can never
// starve shutdown semantics.
func actionRank(a Action) int {
	switch a {
	case ActionShutdown:
		return 0
	case ActionVolume:
		return 1
	case ActionWake:
		return 2
	case ActionFiller:
		return 3
	default:
		return 4
	}
}

// PhraseSet is a named group of canonical phrases sharing a match mode and
// an action. Sets are immutable once handed to New.
type PhraseSet struct {
	Name    string
	Phrases []string
	Mode    MatchMode
	Action  Action
}

// EventKind classifies a command event.
type EventKind int

const (
	// EventNone means the hypothesis was empty; nothing to act on.
	EventNone EventKind = iota

	EventWake
	EventShutdown
	EventVolume

	// EventUnmatched is a normal, frequent outcome, not an error.
	EventUnmatched
)

func (k EventKind) String() string {
	switch k {
	case EventNone:
		return "none"
	case EventWake:
		return "wake"
	case EventShutdown:
		return "shutdown"
	case EventVolume:
		return "volume"
	case EventUnmatched:
		return "unmatched"
	default:
		return "unknown"
	}
}

// CommandEvent is the classified outcome of one final hypothesis. Level is
// only meaningful for EventVolume.
type CommandEvent struct {
	Kind  EventKind
	Level int
	Text  string
}

// Config configures the classifier.
type Config struct {
	Sets []PhraseSet

	// OpenVocabulary enables the free-form filters below. Leave false when
	// the decoder is grammar-constrained.
	OpenVocabulary bool

	// MaxWords rejects hypotheses with more words than this, guarding
	// against long unrelated sentences triggering a short command.
	// 0 disables the filter.
	MaxWords int

	// MinConfidence rejects hypotheses whose mean per-word confidence falls
	// below this threshold. 0 disables the filter.
	MinConfidence float64
}

// Interface classifies final hypotheses into command events.
type Interface interface {
	// Classify matches one final hypothesis against the registered phrase
	// sets. It is pure: identical input always yields identical output.
	Classify(final speech_decoder.Final) CommandEvent

	// Grammar returns the union of all registered canonical phrases, in
	// evaluation order and deduplicated, for grammar-constrained decoding.
	Grammar() []string
}

type classifierImpl struct {
	sets          []PhraseSet
	openVocab     bool
	maxWords      int
	minConfidence float64
}

func New(cfg *Config) (Interface, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	if len(cfg.Sets) == 0 {
		return nil, fmt.Errorf("at least one phrase set is required")
	}

	if cfg.MinConfidence < 0 || cfg.MinConfidence > 1 {
		return nil, fmt.Errorf("min confidence %v out of range [0,1]", cfg.MinConfidence)
	}

	sets := make([]PhraseSet, 0, len(cfg.Sets))
	for _, set := range cfg.Sets {
		if len(set.Phrases) == 0 {
			return nil, fmt.Errorf("phrase set %q is empty", set.Name)
		}
		if set.Mode != MatchExact && set.Mode != MatchSubstring {
			return nil, fmt.Errorf("phrase set %q has unknown mode %q", set.Name, set.Mode)
		}
		if actionRank(set.Action) > 3 {
			return nil, fmt.Errorf("phrase set %q has unknown action %q", set.Name, set.Action)
		}

		normalized := make([]string, len(set.Phrases))
		for i, p := range set.Phrases {
			normalized[i] = normalize(p)
		}
		set.Phrases = normalized
		sets = append(sets, set)
	}

	sort.SliceStable(sets, func(i, j int) bool {
		return actionRank(sets[i].Action) < actionRank(sets[j].Action)
	})

	return &classifierImpl{
		sets:          sets,
		openVocab:     cfg.OpenVocabulary,
		maxWords:      cfg.MaxWords,
		minConfidence: cfg.MinConfidence,
	}, nil
}

func (c *classifierImpl) Classify(final speech_decoder.Final) CommandEvent {
	text := normalize(final.Text)
	if text == "" {
		return CommandEvent{Kind: EventNone}
	}

	// Closed command sets (shutdown, volume) are evaluated before the
	// open-vocabulary filters: a command phrase must never be starved by a
	// length or confidence cutoff meant for wake eligibility.
	rest := c.sets
	for len(rest) > 0 && actionRank(rest[0].Action) <= actionRank(ActionVolume) {
		set := rest[0]
		rest = rest[1:]

		if !matches(set, text) {
			continue
		}

		switch set.Action {
		case ActionShutdown:
			return CommandEvent{Kind: EventShutdown, Text: text}
		case ActionVolume:
			level, ok := ExtractLevel(text)
			if !ok {
				// Structurally a volume phrase, but no recognisable level.
				return CommandEvent{Kind: EventUnmatched, Text: text}
			}
			return CommandEvent{Kind: EventVolume, Level: level, Text: text}
		}
	}

	if c.openVocab {
		if c.maxWords > 0 && len(strings.Fields(text)) > c.maxWords {
			return CommandEvent{Kind: EventUnmatched, Text: text}
		}
		if c.minConfidence > 0 && len(final.Words) > 0 &&
			meanConfidence(final.Words) < c.minConfidence {
			return CommandEvent{Kind: EventUnmatched, Text: text}
		}
	}

	for _, set := range rest {
		if !matches(set, text) {
			continue
		}

		switch set.Action {
		case ActionWake:
			return CommandEvent{Kind: EventWake, Text: text}
		case ActionFiller:
			return CommandEvent{Kind: EventUnmatched, Text: text}
		}
	}

	return CommandEvent{Kind: EventUnmatched, Text: text}
}

func (c *classifierImpl) Grammar() []string {
	seen := make(map[string]bool)
	var grammar []string
	for _, set := range c.sets {
		for _, p := range set.Phrases {
			if seen[p] {
				continue
			}
			seen[p] = true
			grammar = append(grammar, p)
		}
	}
	return grammar
}

func matches(set PhraseSet, text string) bool {
	for _, phrase := range set.Phrases {
		if set.Mode == MatchExact {
			if text == phrase {
				return true
			}
		} else if strings.Contains(text, phrase) {
			return true
		}
	}
	return false
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func meanConfidence(words []speech_decoder.WordConfidence) float64 {
	var sum float64
	for _, w := range words {
		sum += w.Confidence
	}
	return sum / float64(len(words))
}
