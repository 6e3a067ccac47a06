package suggest

import (
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	maxEditDistance = 2
	baseScore       = 100
	distancePenalty = 25
	maxFreqBonus    = 30
)

// FuzzyMatcher proposes known headwords for misspelled input.
type FuzzyMatcher struct {
	words    []string
	wordFreq map[string]int
}

// NewFuzzyMatcher creates a matcher over headword counts.
func NewFuzzyMatcher(words map[string]int) *FuzzyMatcher {
	list := make([]string, 0, len(words))
	for w := range words {
		list = append(list, w)
	}
	sort.Strings(list)
	return &FuzzyMatcher{words: list, wordFreq: words}
}

// Match represents a matched string with score
type Match struct {
	Str   string
	Score int
}

// SuggestCorrection returns the most likely intended headword for input and
// whether it differs from input.
func (fm *FuzzyMatcher) SuggestCorrection(input string) (string, bool) {
	if utf8.RuneCountInString(input) < 2 {
		return input, false
	}
	if _, ok := fm.wordFreq[input]; ok {
		return input, false
	}

	matches := fm.findMatches(input)
	if len(matches) == 0 {
		return input, false
	}
	return matches[0].Str, true
}

// findMatches scores every candidate within maxEditDistance of input,
// best first.
func (fm *FuzzyMatcher) findMatches(input string) []Match {
	lower := strings.ToLower(input)
	inputLen := utf8.RuneCountInString(input)

	var matches []Match
	for _, w := range fm.words {
		lw := strings.ToLower(w)
		// first letters rarely go wrong
		if lw == "" || lw[0] != lower[0] {
			continue
		}
		d := levenshtein(lower, lw)
		if d > maxEditDistance {
			continue
		}
		score := baseScore - d*distancePenalty
		score += min(fm.wordFreq[w]/10, maxFreqBonus)
		score -= abs(utf8.RuneCountInString(w)-inputLen) * 2
		matches = append(matches, Match{Str: w, Score: score})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return fm.wordFreq[matches[i].Str] > fm.wordFreq[matches[j].Str]
	})
	return matches
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
