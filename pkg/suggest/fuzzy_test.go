package suggest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFuzzyMatcher(t *testing.T) {
	fm := NewFuzzyMatcher(map[string]int{
		"nation":     50,
		"notion":     2,
		"dedicate":   40,
		"dedicated":  10,
		"consecrate": 5,
		"the":        300,
		"they":       20,
	})

	tests := []struct {
		input     string
		want      string
		corrected bool
	}{
		{"nation", "nation", false},
		{"natoin", "nation", true},
		{"nxtion", "nation", true},
		{"dedicat", "dedicate", true},
		{"consecrat", "consecrate", true},
		{"teh", "the", true},
		{"a", "a", false},
		{"zzzzzz", "zzzzzz", false},
		{"xation", "xation", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, corrected := fm.SuggestCorrection(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.corrected, corrected)
		})
	}
}

func TestLevenshtein(t *testing.T) {
	assert.Equal(t, 0, levenshtein("", ""))
	assert.Equal(t, 3, levenshtein("", "abc"))
	assert.Equal(t, 3, levenshtein("kitten", "sitting"))
	assert.Equal(t, 2, levenshtein("teh", "the"))
	assert.Equal(t, 1, levenshtein("naïve", "naive"))
}
