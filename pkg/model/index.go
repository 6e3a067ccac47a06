package model

import (
	"strings"

	"github.com/bastiangx/ngramserve/internal/probing"
)

// index is the state of a trained model: the headword table and the global
// counters kept consistent with it.
type index struct {
	order  int
	heads  *probing.Table[*Headword]
	unique int
	total  int
	tokens int
}

func newIndex(order, capacity int) *index {
	return &index{order: order, heads: probing.New[*Headword](capacity)}
}

// insert counts one n-gram split into its headword and collocate.
func (ix *index) insert(headword, collocate string) error {
	if _, err := ix.heads.GrowIfNeeded(); err != nil {
		return err
	}
	var h *Headword
	_, created, err := ix.heads.InsertOrBump(headword,
		func() *Headword {
			h = newHeadword(headword, ix.order)
			return h
		},
		func(existing *Headword) {
			existing.Count++
			h = existing
		})
	if err != nil {
		return err
	}
	ix.total++
	ix.tokens++
	if ix.order == 1 {
		if created {
			ix.unique++
		}
		return nil
	}
	fresh, err := h.addCollocate(collocate)
	if err != nil {
		return err
	}
	if fresh {
		ix.unique++
	}
	return nil
}

// remove deletes the n-gram given as exactly order words. It reports whether
// the last headword went with it, leaving nothing worth keeping.
func (ix *index) remove(words []string) (bool, error) {
	h, ok := ix.heads.Find(words[0])
	if !ok {
		return false, ErrNotFound
	}
	if ix.order == 1 {
		ix.unique = sub(ix.unique, 1)
		ix.total = sub(ix.total, h.Count)
		ix.tokens = sub(ix.tokens, h.Count)
		return ix.dropHeadword(h), nil
	}

	c, ok := h.dropCollocate(strings.Join(words[1:], " "))
	if !ok {
		return false, ErrNotFound
	}
	ix.unique = sub(ix.unique, 1)
	ix.total = sub(ix.total, c.Count)
	// tokens fall by twice the n-gram count: once for the headword
	// occurrences, once for the collocate
	ix.tokens = sub(ix.tokens, 2*c.Count)
	h.Count = sub(h.Count, c.Count)
	if h.liveCollocates() > 0 {
		return false, nil
	}
	return ix.dropHeadword(h), nil
}

// dropHeadword tombstones h unless it is the only headword left, in which
// case it reports true and leaves the table alone.
func (ix *index) dropHeadword(h *Headword) bool {
	if ix.heads.Len() <= 1 {
		return true
	}
	ix.heads.Remove(h.Text)
	_, _ = ix.heads.ShrinkIfNeeded()
	return false
}

func (ix *index) resortAll() {
	ix.heads.Each(func(h *Headword) { h.frequencies.resort() })
}

// sub subtracts and clamps at zero.
func sub(a, b int) int {
	if b >= a {
		return 0
	}
	return a - b
}
