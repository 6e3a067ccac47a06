package model

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bastiangx/ngramserve/pkg/corpus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cannot = "we cannot dedicate we cannot consecrate we cannot hallow this ground"

func text(s string) corpus.TextSource { return corpus.TextSource{Text: s} }

func trained(t *testing.T, order int, s string) *Model {
	t.Helper()
	m, err := New(order)
	require.NoError(t, err)
	require.NoError(t, m.Train(text(s)))
	return m
}

// sizedSource overrides the token estimate so tests can start from the
// smallest table.
type sizedSource struct {
	corpus.TextSource
	estimate int
}

func (s sizedSource) EstimateTokens() (int, error) { return s.estimate, nil }

// brokenStream fails after yielding its tokens.
type brokenStream struct {
	tokens []string
	pos    int
}

func (b *brokenStream) Scan() bool {
	if b.pos >= len(b.tokens) {
		return false
	}
	b.pos++
	return true
}
func (b *brokenStream) Text() string { return b.tokens[b.pos-1] }
func (b *brokenStream) Err() error   { return errors.New("disk went away") }
func (b *brokenStream) Close() error { return nil }

type brokenSource struct{ tokens []string }

func (b brokenSource) Name() string                 { return "broken" }
func (b brokenSource) EstimateTokens() (int, error) { return 10, nil }
func (b brokenSource) Open() (corpus.TokenStream, error) {
	return &brokenStream{tokens: b.tokens}, nil
}

// extractNGrams counts n-grams the slow way.
func extractNGrams(s string, n int) map[string]int {
	var tokens []string
	for _, f := range strings.Fields(s) {
		tokens = append(tokens, corpus.StripPunctuation(f))
	}
	counts := map[string]int{}
	for i := 0; i+n <= len(tokens); i++ {
		counts[strings.Join(tokens[i:i+n], " ")]++
	}
	return counts
}

// checkCounters verifies the counters against the live entries.
func checkCounters(t *testing.T, m *Model) {
	t.Helper()
	ngrams := m.NGrams()
	sum := 0
	for _, c := range ngrams {
		assert.GreaterOrEqual(t, c, 1)
		sum += c
	}
	assert.Equal(t, len(ngrams), m.UniqueNGrams(), "unique n-grams")
	assert.Equal(t, sum, m.TotalNGrams(), "n-gram total")
	if m.ix == nil || m.order == 1 {
		return
	}
	m.ix.heads.Each(func(h *Headword) {
		assert.Greater(t, h.collocates.Len(), 0, "headword %q without collocates", h.Text)
		assert.Len(t, h.frequencies, h.collocates.Len(), "frequency refs of %q", h.Text)
		for _, c := range h.frequencies {
			live, ok := h.collocates.Find(c.Text)
			assert.True(t, ok && live == c, "dangling reference %q", c.Text)
		}
		for i := 1; i < len(h.frequencies); i++ {
			assert.GreaterOrEqual(t, h.frequencies[i-1].Count, h.frequencies[i].Count)
		}
	})
}

func TestNew(t *testing.T) {
	_, err := New(0)
	assert.ErrorIs(t, err, ErrInvalidOrder)

	m, err := New(3)
	require.NoError(t, err)
	assert.Equal(t, 3, m.Order())
	assert.False(t, m.Trained())
	assert.Equal(t, Stats{Order: 3}, m.Stats())
}

func TestModel_Train(t *testing.T) {
	t.Run("bigram counts", func(t *testing.T) {
		// Execute
		m := trained(t, 2, cannot)

		// Check
		assert.True(t, m.Trained())
		assert.Equal(t, 8, m.UniqueNGrams())
		assert.Equal(t, 10, m.TotalNGrams())
		assert.Equal(t, 11, m.TotalTokens())
		assert.Equal(t, 7, m.UniqueUnigrams())
		checkCounters(t, m)
	})

	t.Run("frequencies", func(t *testing.T) {
		m := trained(t, 2, cannot)

		assert.InDelta(t, 3.0/10, m.Frequency("we cannot"), 1e-12)
		assert.InDelta(t, 1.0/10, m.Frequency("cannot hallow"), 1e-12)
		assert.InDelta(t, 3.0/11, m.Frequency("cannot"), 1e-12)
		assert.Zero(t, m.Frequency("we dedicate"))
		assert.Zero(t, m.Frequency("nation"))
		assert.Zero(t, m.Frequency(""))
		assert.Equal(t, m.Frequency("we cannot"), m.Frequency("we cannot"))
	})

	t.Run("top collocates keep encounter order on ties", func(t *testing.T) {
		m := trained(t, 2, cannot)

		assert.Equal(t, []string{"dedicate", "consecrate", "hallow"}, m.TopCollocates("cannot", 5))
		assert.Equal(t, []string{"dedicate"}, m.TopCollocates("cannot", 1))
		assert.Equal(t, []string{"cannot"}, m.TopCollocates("we", 1))
		assert.Empty(t, m.TopCollocates("cannot", 0))
		assert.Empty(t, m.TopCollocates("nation", 3))
	})

	t.Run("top collocates ordered by count", func(t *testing.T) {
		m := trained(t, 2, "the cat the dog the cat the end the cat the dog")

		assert.Equal(t, []string{"cat", "dog", "end"}, m.TopCollocates("the", 3))
		assert.Equal(t, map[string]int{"cat": 3, "dog": 2, "end": 1}, m.CollocateCounts("the"))
		assert.Empty(t, m.CollocateCounts("nation"))
	})

	t.Run("punctuation is stripped except hyphens", func(t *testing.T) {
		m := trained(t, 2, "Four score, and seven well-known years ago.")

		assert.InDelta(t, 1.0/6, m.Frequency("Four score"), 1e-12)
		assert.InDelta(t, 1.0/6, m.Frequency("seven well-known"), 1e-12)
		assert.InDelta(t, 1.0/6, m.Frequency("years ago"), 1e-12)
	})

	t.Run("n-grams match a naive count", func(t *testing.T) {
		doc := `It is rather for us to be here dedicated to the great task remaining
			before us -- that from these honored dead we take increased devotion to that
			cause for which they gave the last full measure of devotion -- that we here
			highly resolve that these dead shall not have died in vain.`
		for _, n := range []int{1, 2, 3, 4} {
			t.Run(fmt.Sprintf("order %d", n), func(t *testing.T) {
				m := trained(t, n, doc)
				want := extractNGrams(doc, n)

				assert.Equal(t, want, m.NGrams())
				assert.Equal(t, len(want), m.UniqueNGrams())
				assert.Equal(t, len(strings.Fields(doc)), m.TotalTokens())
				checkCounters(t, m)
			})
		}
	})

	t.Run("training again replaces counts", func(t *testing.T) {
		m := trained(t, 2, cannot)

		require.NoError(t, m.Train(text("one bigram")))

		assert.Equal(t, map[string]int{"one bigram": 1}, m.NGrams())
		assert.Equal(t, 2, m.TotalTokens())
	})

	t.Run("empty document", func(t *testing.T) {
		m := trained(t, 2, "")

		assert.True(t, m.Trained())
		assert.Equal(t, 0, m.UniqueNGrams())
		assert.Equal(t, 1, m.TotalTokens())
		assert.Empty(t, m.NGrams())
	})

	t.Run("missing file keeps previous state", func(t *testing.T) {
		// Prepare
		m := trained(t, 2, cannot)
		before := m.Stats()

		// Execute
		err := m.Train(corpus.FileSource{Path: filepath.Join(t.TempDir(), "nope.txt")})

		// Check
		assert.ErrorIs(t, err, ErrSourceUnavailable)
		assert.Equal(t, before, m.Stats())
	})

	t.Run("read error keeps previous state", func(t *testing.T) {
		m := trained(t, 2, cannot)
		before := m.Stats()

		err := m.Train(brokenSource{tokens: []string{"a", "b", "c"}})

		assert.ErrorIs(t, err, ErrSourceUnavailable)
		assert.Equal(t, before, m.Stats())
		assert.Zero(t, m.Frequency("a b"))
	})

	t.Run("tables grow from the minimum", func(t *testing.T) {
		// Prepare
		words := make([]string, 200)
		for i := range words {
			words[i] = fmt.Sprintf("w%d", i)
		}
		m, err := New(2)
		require.NoError(t, err)

		// Execute
		err = m.Train(sizedSource{TextSource: text(strings.Join(words, " ")), estimate: 0})

		// Check
		require.NoError(t, err)
		assert.Equal(t, 199, m.Stats().Headwords)
		assert.Equal(t, 521, m.Stats().Capacity)
		for i := 0; i < 199; i++ {
			assert.InDelta(t, 1.0/199, m.Frequency(words[i]+" "+words[i+1]), 1e-12)
		}
		checkCounters(t, m)
	})
}

func TestModel_Unigram(t *testing.T) {
	// Prepare
	m := trained(t, 1, "a b a c a")

	// Check
	assert.Equal(t, 3, m.UniqueNGrams())
	assert.Equal(t, 5, m.TotalNGrams())
	assert.Equal(t, 5, m.TotalTokens())
	assert.Equal(t, 3, m.UniqueUnigrams())
	assert.InDelta(t, 0.6, m.Frequency("a"), 1e-12)
	assert.Zero(t, m.Frequency("a b"))
	assert.Empty(t, m.TopCollocates("a", 3))
	assert.Empty(t, m.CollocateCounts("a"))
	assert.Equal(t, map[string]int{"a": 3, "b": 1, "c": 1}, m.NGrams())
	assert.Equal(t, m.NGrams(), m.HeadwordCounts())

	// Execute
	require.NoError(t, m.Remove("a"))

	// Check
	assert.Equal(t, 2, m.UniqueNGrams())
	assert.Equal(t, 2, m.TotalNGrams())
	assert.Equal(t, 2, m.TotalTokens())
	checkCounters(t, m)

	require.NoError(t, m.Remove("b"))
	require.NoError(t, m.Remove("c"))
	assert.False(t, m.Trained())
}

func TestModel_Trigram(t *testing.T) {
	m := trained(t, 3, "the best of times the worst of times")

	assert.Equal(t, 6, m.UniqueNGrams())
	assert.Equal(t, 6, m.TotalNGrams())
	assert.Equal(t, 8, m.TotalTokens())
	assert.Equal(t, []string{"best of", "worst of"}, m.TopCollocates("the", 2))
	assert.InDelta(t, 1.0/6, m.Frequency("the best of"), 1e-12)
	assert.InDelta(t, 2.0/8, m.Frequency("the"), 1e-12)
	assert.Zero(t, m.Frequency("the best"))

	require.NoError(t, m.Remove("the best of"))
	assert.Equal(t, []string{"worst of"}, m.TopCollocates("the", 2))
	assert.ErrorIs(t, m.Remove("the best"), ErrArityMismatch)
	checkCounters(t, m)
}

func TestModel_Grow(t *testing.T) {
	t.Run("same source doubles totals", func(t *testing.T) {
		// Prepare
		m := trained(t, 2, cannot)
		weCannot, cannotFreq := m.Frequency("we cannot"), m.Frequency("cannot")

		// Execute
		err := m.Grow(text(cannot))

		// Check
		require.NoError(t, err)
		assert.Equal(t, 8, m.UniqueNGrams())
		assert.Equal(t, 20, m.TotalNGrams())
		assert.Equal(t, 22, m.TotalTokens())
		assert.InDelta(t, weCannot, m.Frequency("we cannot"), 1e-12)
		assert.InDelta(t, cannotFreq, m.Frequency("cannot"), 1e-12)
		checkCounters(t, m)
	})

	t.Run("new n-grams are added and sorted", func(t *testing.T) {
		m := trained(t, 2, cannot)

		require.NoError(t, m.Grow(text("cannot hallow cannot hallow this nation")))

		assert.Equal(t, []string{"hallow", "dedicate", "consecrate"}, m.TopCollocates("cannot", 3))
		assert.Equal(t, 3, m.CollocateCounts("cannot")["hallow"])
		assert.InDelta(t, 1.0/15, m.Frequency("this nation"), 1e-12)
		checkCounters(t, m)
	})

	t.Run("untrained", func(t *testing.T) {
		m, _ := New(2)
		assert.ErrorIs(t, m.Grow(text(cannot)), ErrUntrained)
	})

	t.Run("missing source changes nothing", func(t *testing.T) {
		m := trained(t, 2, cannot)
		before := m.Stats()

		err := m.Grow(corpus.FileSource{Path: filepath.Join(t.TempDir(), "nope.txt")})

		assert.ErrorIs(t, err, ErrSourceUnavailable)
		assert.Equal(t, before, m.Stats())
	})
}

func TestModel_Remove(t *testing.T) {
	t.Run("one bigram round trip", func(t *testing.T) {
		// Prepare
		m := trained(t, 2, "one bigram")
		require.Equal(t, 1, m.UniqueNGrams())
		require.Equal(t, 1, m.TotalNGrams())
		require.Equal(t, 2, m.TotalTokens())

		// Execute
		err := m.Remove("one bigram")

		// Check
		require.NoError(t, err)
		assert.False(t, m.Trained())
		assert.Equal(t, 0, m.UniqueNGrams())
		assert.Equal(t, 0, m.TotalNGrams())
		assert.Equal(t, 0, m.TotalTokens())
		assert.Empty(t, m.NGrams())
		assert.ErrorIs(t, m.Remove("one bigram"), ErrUntrained)
	})

	t.Run("collocate with siblings", func(t *testing.T) {
		// Prepare
		m := trained(t, 2, cannot)

		// Execute
		err := m.Remove("cannot dedicate")

		// Check
		require.NoError(t, err)
		assert.Equal(t, 7, m.UniqueNGrams())
		assert.Equal(t, 9, m.TotalNGrams())
		assert.Equal(t, 9, m.TotalTokens())
		assert.Equal(t, []string{"consecrate", "hallow"}, m.TopCollocates("cannot", 5))
		assert.Zero(t, m.Frequency("cannot dedicate"))
		assert.InDelta(t, 2.0/9, m.Frequency("cannot"), 1e-12)
		checkCounters(t, m)
	})

	t.Run("last collocate takes the headword", func(t *testing.T) {
		// Prepare
		m := trained(t, 2, cannot)

		// Execute
		err := m.Remove("we cannot")

		// Check
		require.NoError(t, err)
		assert.Equal(t, 7, m.UniqueNGrams())
		assert.Equal(t, 7, m.TotalNGrams())
		assert.Equal(t, 5, m.TotalTokens())
		assert.Zero(t, m.Frequency("we"))
		assert.NotContains(t, m.HeadwordCounts(), "we")
		assert.Empty(t, m.TopCollocates("we", 1))
		checkCounters(t, m)
	})

	t.Run("grow then remove restores counters", func(t *testing.T) {
		m := trained(t, 2, "a b c")
		before := m.Stats()

		require.NoError(t, m.Grow(text("x y")))
		require.NoError(t, m.Remove("x y"))

		after := m.Stats()
		assert.Equal(t, before.UniqueNGrams, after.UniqueNGrams)
		assert.Equal(t, before.TotalNGrams, after.TotalNGrams)
		assert.Equal(t, before.TotalTokens, after.TotalTokens)
	})

	t.Run("errors", func(t *testing.T) {
		m := trained(t, 2, cannot)
		before := m.Stats()

		assert.ErrorIs(t, m.Remove("this"), ErrArityMismatch)
		assert.ErrorIs(t, m.Remove("this ground now"), ErrArityMismatch)
		assert.ErrorIs(t, m.Remove("this grounds"), ErrNotFound)
		assert.ErrorIs(t, m.Remove("nation ground"), ErrNotFound)
		assert.Equal(t, before, m.Stats())
	})

	t.Run("tables shrink as entries go", func(t *testing.T) {
		// Prepare
		words := make([]string, 200)
		for i := range words {
			words[i] = fmt.Sprintf("w%d", i)
		}
		m, _ := New(2)
		require.NoError(t, m.Train(sizedSource{TextSource: text(strings.Join(words, " "))}))

		// Execute
		for i := 0; i < 190; i++ {
			require.NoError(t, m.Remove(words[i]+" "+words[i+1]))
		}

		// Check
		s := m.Stats()
		assert.Equal(t, 9, s.Headwords)
		assert.Equal(t, 67, s.Capacity)
		for i := 190; i < 199; i++ {
			assert.NotZero(t, m.Frequency(words[i]+" "+words[i+1]))
		}
		checkCounters(t, m)
	})

	t.Run("token total never underflows", func(t *testing.T) {
		m := trained(t, 2, "x a x b x c")

		require.NoError(t, m.Remove("x a"))
		require.NoError(t, m.Remove("x b"))
		require.NoError(t, m.Remove("x c"))

		assert.GreaterOrEqual(t, m.TotalTokens(), 0)
		assert.Equal(t, map[string]int{"a x": 1, "b x": 1}, m.NGrams())
		checkCounters(t, m)
	})
}

func TestModel_Reset(t *testing.T) {
	m := trained(t, 2, cannot)
	m.Reset()
	assert.False(t, m.Trained())
	assert.Zero(t, m.Frequency("we cannot"))
	assert.Equal(t, 0, m.UniqueUnigrams())
}
