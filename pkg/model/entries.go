package model

import (
	"sort"

	"github.com/bastiangx/ngramserve/internal/probing"
)

// Collocate counts one continuation of a headword.
type Collocate struct {
	Text  string
	Count int
}

func (c *Collocate) Key() string { return c.Text }

// frequencyIndex orders a headword's live collocates by count, highest first.
// Only resort establishes the order; appends land at the end.
type frequencyIndex []*Collocate

func (f *frequencyIndex) append(c *Collocate) {
	*f = append(*f, c)
}

func (f *frequencyIndex) remove(c *Collocate) bool {
	s := *f
	for i := range s {
		if s[i] == c {
			copy(s[i:], s[i+1:])
			s[len(s)-1] = nil
			*f = s[:len(s)-1]
			return true
		}
	}
	return false
}

// resort orders by count descending; equal counts keep encounter order.
func (f frequencyIndex) resort() {
	sort.SliceStable(f, func(i, j int) bool { return f[i].Count > f[j].Count })
}

func (f frequencyIndex) top(x int) []string {
	if x > len(f) {
		x = len(f)
	}
	if x <= 0 {
		return []string{}
	}
	out := make([]string, x)
	for i := 0; i < x; i++ {
		out[i] = f[i].Text
	}
	return out
}

// Headword is a first token together with everything that followed it.
// collocates is nil on unigram models.
type Headword struct {
	Text        string
	Count       int
	collocates  *probing.Table[*Collocate]
	frequencies frequencyIndex
}

func (h *Headword) Key() string { return h.Text }

func newHeadword(text string, order int) *Headword {
	h := &Headword{Text: text, Count: 1}
	if order > 1 {
		h.collocates = probing.New[*Collocate](probing.MinCapacity)
	}
	return h
}

// addCollocate counts one occurrence of text after h and reports whether it
// was new.
func (h *Headword) addCollocate(text string) (bool, error) {
	if _, err := h.collocates.GrowIfNeeded(); err != nil {
		return false, err
	}
	var fresh *Collocate
	_, created, err := h.collocates.InsertOrBump(text,
		func() *Collocate {
			fresh = &Collocate{Text: text, Count: 1}
			return fresh
		},
		func(c *Collocate) { c.Count++ })
	if err != nil {
		return false, err
	}
	if created {
		h.frequencies.append(fresh)
	}
	return created, nil
}

// dropCollocate tombstones text in the collocate table and removes its
// frequency reference in one step.
func (h *Headword) dropCollocate(text string) (*Collocate, bool) {
	c, ok := h.collocates.Remove(text)
	if !ok {
		return nil, false
	}
	h.frequencies.remove(c)
	// a shrink target always holds more than twice the live entries
	_, _ = h.collocates.ShrinkIfNeeded()
	return c, true
}

func (h *Headword) findCollocate(text string) (*Collocate, bool) {
	if h.collocates == nil {
		return nil, false
	}
	return h.collocates.Find(text)
}

func (h *Headword) liveCollocates() int {
	if h.collocates == nil {
		return 0
	}
	return h.collocates.Len()
}
