// Package match scores how well a free-form progress report matches a plan
// task. The scorer sits behind an interface so the reconciler's control flow
// survives a swap for a stronger matcher later.
package match

import (
	"strings"
	"unicode"
)

// DefaultThreshold is the acceptance score below which no match is taken.
// Tunable, not load-bearing for correctness.
const DefaultThreshold = 0.3

// subsetBonus is added when every keyword of the task itself appears,
// possibly via synonym, in what the agent reported doing.
const subsetBonus = 0.5

// Scorer rates the similarity of a reported signal against a task
// description. Higher is more similar; scoring is symmetric in its inputs.
type Scorer interface {
	Score(signal, task string) float64
}

// KeywordScorer implements keyword-overlap scoring with synonym expansion:
// Jaccard index over expanded keyword sets, plus a bonus when the task's own
// keywords are covered by the signal.
type KeywordScorer struct {
	groups map[string]int
}

// NewKeywordScorer builds a scorer over the curated synonym table.
func NewKeywordScorer() *KeywordScorer {
	groups := make(map[string]int)
	for i, group := range synonymGroups {
		for _, word := range group {
			groups[word] = i
		}
	}
	return &KeywordScorer{groups: groups}
}

// Score returns the similarity of signal and task in [0, 1+bonus].
func (s *KeywordScorer) Score(signal, task string) float64 {
	signalKeywords := Keywords(signal)
	taskKeywords := Keywords(task)
	if len(signalKeywords) == 0 || len(taskKeywords) == 0 {
		return 0
	}

	expandedSignal := s.expand(signalKeywords)
	expandedTask := s.expand(taskKeywords)

	intersection := 0
	for word := range expandedSignal {
		if expandedTask[word] {
			intersection++
		}
	}
	union := len(expandedSignal) + len(expandedTask) - intersection
	if union == 0 {
		return 0
	}
	score := float64(intersection) / float64(union)

	// All of the task's own words appeared (possibly via synonym) in the
	// report: treat as a strong completion signal.
	covered := true
	for word := range taskKeywords {
		if !expandedSignal[word] {
			covered = false
			break
		}
	}
	if covered {
		score += subsetBonus
	}

	return score
}

// expand unions each keyword with its whole synonym group.
func (s *KeywordScorer) expand(keywords map[string]bool) map[string]bool {
	out := make(map[string]bool, len(keywords))
	for word := range keywords {
		out[word] = true
		if idx, ok := s.groups[word]; ok {
			for _, syn := range synonymGroups[idx] {
				out[syn] = true
			}
		}
	}
	return out
}

// Keywords tokenizes text into its meaningful words: lowercased, punctuation
// stripped, stop words and tokens of length <= 2 dropped.
func Keywords(text string) map[string]bool {
	out := make(map[string]bool)
	for _, word := range strings.Fields(normalize(text)) {
		if len(word) <= 2 || stopWords[word] {
			continue
		}
		out[word] = true
	}
	return out
}

// normalize lowercases and replaces every non-alphanumeric rune with a space.
func normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return b.String()
}
