package usecase

import (
	"strings"
	"unicode"

	"github.com/antzucaro/matchr"
)

// DefaultPronunciationThreshold is the similarity a transcript must exceed to count as correct
const DefaultPronunciationThreshold = 0.6

// ScorerConfig holds configuration for the pronunciation scorer
type ScorerConfig struct {
	Threshold float64
}

// PronunciationScorer compares a recognized transcript against a target phrase
type PronunciationScorer struct {
	threshold float64
}

// NewPronunciationScorer creates a scorer; a threshold outside (0,1) falls back to the default
func NewPronunciationScorer(config ScorerConfig) *PronunciationScorer {
	threshold := config.Threshold
	if threshold <= 0 || threshold >= 1 {
		threshold = DefaultPronunciationThreshold
	}
	return &PronunciationScorer{threshold: threshold}
}

// Threshold returns the pass threshold in use
func (s *PronunciationScorer) Threshold() float64 {
	return s.threshold
}

// IsCorrect reports whether score passes. The comparison is strict.
func (s *PronunciationScorer) IsCorrect(score float64) bool {
	return score > s.threshold
}

// Similarity returns the positional character match ratio of transcript and phrase.
//
// Both inputs are lower-cased and stripped of whitespace. Identical strings score 1.
// Otherwise the runes at each index of the shorter string are compared with the
// rune at the same index of the longer one, and the match count is divided by
// the longer length. Result is always in [0, 1].
func Similarity(transcript, phrase string) float64 {
	s1 := normalizeUtterance(transcript)
	s2 := normalizeUtterance(phrase)

	if string(s1) == string(s2) {
		return 1
	}

	shorter, longer := len(s1), len(s2)
	if shorter > longer {
		shorter, longer = longer, shorter
	}

	matches := 0
	for i := 0; i < shorter; i++ {
		if s1[i] == s2[i] {
			matches++
		}
	}

	return float64(matches) / float64(longer)
}

// EditSimilarity returns 1 - levenshtein/maxLen over the normalized strings.
// It is an alignment-aware comparison reported next to Similarity.
func EditSimilarity(transcript, phrase string) float64 {
	s1 := normalizeUtterance(transcript)
	s2 := normalizeUtterance(phrase)

	longer := max(len(s1), len(s2))
	if longer == 0 {
		return 1
	}

	dist := matchr.Levenshtein(string(s1), string(s2))
	score := 1 - float64(dist)/float64(longer)
	if score < 0 {
		return 0
	}
	return score
}

// normalizeUtterance lower-cases s and drops all whitespace, including U+3000
func normalizeUtterance(s string) []rune {
	lowered := strings.ToLower(s)
	out := make([]rune, 0, len(lowered))
	for _, r := range lowered {
		if unicode.IsSpace(r) {
			continue
		}
		out = append(out, r)
	}
	return out
}
