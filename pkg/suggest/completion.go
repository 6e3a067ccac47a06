package suggest

import (
	"sort"

	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

type Suggestion struct {
	NGram string `msgpack:"g"`
	Count int    `msgpack:"c"`
}

// Completer indexes n-gram counts in a patricia trie.
type Completer struct {
	trie     *patricia.Trie
	total    int
	maxCount int
}

func NewCompleter() *Completer {
	return &Completer{trie: patricia.NewTrie()}
}

// Rebuild drops the current trie and indexes ngrams from scratch.
func (c *Completer) Rebuild(ngrams map[string]int) {
	c.trie = patricia.NewTrie()
	c.total, c.maxCount = 0, 0
	for g, n := range ngrams {
		c.add(g, n)
	}
}

func (c *Completer) add(ngram string, count int) {
	c.trie.Set(patricia.Prefix(ngram), count)
	c.total++
	if count > c.maxCount {
		c.maxCount = count
	}
}

// Complete returns n-grams beginning with prefix, most frequent first.
// Equal counts are ordered alphabetically. A non-positive limit returns all.
func (c *Completer) Complete(prefix string, limit int) []Suggestion {
	var out []Suggestion
	err := c.trie.VisitSubtree(patricia.Prefix(prefix), func(p patricia.Prefix, item patricia.Item) error {
		count, ok := item.(int)
		if !ok {
			log.Errorf("Unknown item type: %T for n-gram %s", item, p)
			return nil
		}
		out = append(out, Suggestion{NGram: string(p), Count: count})
		return nil
	})
	if err != nil {
		log.Errorf("Error visiting trie subtree: %v", err)
		return nil
	}

	return rank(out, limit)
}

// Rank orders a count map the way Complete orders its results.
func Rank(counts map[string]int, limit int) []Suggestion {
	out := make([]Suggestion, 0, len(counts))
	for g, n := range counts {
		out = append(out, Suggestion{NGram: g, Count: n})
	}
	return rank(out, limit)
}

func rank(out []Suggestion, limit int) []Suggestion {
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].NGram < out[j].NGram
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (c *Completer) Stats() map[string]int {
	return map[string]int{
		"totalNGrams": c.total,
		"maxCount":    c.maxCount,
	}
}
