package model

import (
	"strings"
)

// Frequency returns the relative frequency of ngram, or 0 when it is unknown.
//
// On a unigram model the count is divided by the n-gram total. On higher
// orders a single word is looked up as a headword and divided by the token
// total; a full n-gram is divided by the n-gram total.
func (m *Model) Frequency(ngram string) float64 {
	if m.ix == nil {
		return 0
	}
	words := strings.Fields(ngram)
	if len(words) == 0 {
		return 0
	}
	h, ok := m.ix.heads.Find(words[0])
	if !ok {
		return 0
	}
	if m.order == 1 {
		if len(words) != 1 {
			return 0
		}
		return ratio(h.Count, m.ix.total)
	}
	if len(words) == 1 {
		return ratio(h.Count, m.ix.tokens)
	}
	c, ok := h.findCollocate(strings.Join(words[1:], " "))
	if !ok {
		return 0
	}
	return ratio(c.Count, m.ix.total)
}

func ratio(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) / float64(total)
}

// TopCollocates returns up to x collocates of headword, most frequent first.
func (m *Model) TopCollocates(headword string, x int) []string {
	h, ok := m.headword(headword)
	if !ok || m.order == 1 {
		return []string{}
	}
	return h.frequencies.top(x)
}

// CollocateCounts maps every live collocate of headword to its count.
func (m *Model) CollocateCounts(headword string) map[string]int {
	out := map[string]int{}
	h, ok := m.headword(headword)
	if !ok || h.collocates == nil {
		return out
	}
	h.collocates.Each(func(c *Collocate) { out[c.Text] = c.Count })
	return out
}

// NGrams maps every live n-gram to its count.
func (m *Model) NGrams() map[string]int {
	out := map[string]int{}
	if m.ix == nil {
		return out
	}
	m.ix.heads.Each(func(h *Headword) {
		if m.order == 1 {
			out[h.Text] = h.Count
			return
		}
		h.collocates.Each(func(c *Collocate) {
			out[h.Text+" "+c.Text] = c.Count
		})
	})
	return out
}

// HeadwordCounts maps every live headword to its count.
func (m *Model) HeadwordCounts() map[string]int {
	out := map[string]int{}
	if m.ix == nil {
		return out
	}
	m.ix.heads.Each(func(h *Headword) { out[h.Text] = h.Count })
	return out
}

func (m *Model) headword(text string) (*Headword, bool) {
	if m.ix == nil {
		return nil, false
	}
	return m.ix.heads.Find(strings.TrimSpace(text))
}

func (m *Model) UniqueNGrams() int {
	if m.ix == nil {
		return 0
	}
	return m.ix.unique
}

func (m *Model) TotalNGrams() int {
	if m.ix == nil {
		return 0
	}
	return m.ix.total
}

func (m *Model) TotalTokens() int {
	if m.ix == nil {
		return 0
	}
	return m.ix.tokens
}

// UniqueUnigrams approximates the vocabulary size: distinct headwords plus
// the n-1 trailing words of the last window that never lead an n-gram.
func (m *Model) UniqueUnigrams() int {
	if m.ix == nil {
		return 0
	}
	return m.ix.heads.Len() + m.order - 1
}

// Stats is a snapshot of a model's counters and headword table shape.
type Stats struct {
	Order          int
	Trained        bool
	UniqueNGrams   int
	TotalNGrams    int
	TotalTokens    int
	UniqueUnigrams int
	Headwords      int
	Capacity       int
	Tombstones     int
	Load           float64
}

func (m *Model) Stats() Stats {
	s := Stats{Order: m.order, Trained: m.ix != nil}
	if m.ix == nil {
		return s
	}
	s.UniqueNGrams = m.ix.unique
	s.TotalNGrams = m.ix.total
	s.TotalTokens = m.ix.tokens
	s.UniqueUnigrams = m.UniqueUnigrams()
	s.Headwords = m.ix.heads.Len()
	s.Capacity = m.ix.heads.Capacity()
	s.Tombstones = m.ix.heads.Tombstones()
	s.Load = m.ix.heads.Load()
	return s
}
