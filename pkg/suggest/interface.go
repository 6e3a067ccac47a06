// Package suggest answers prefix completion and correction queries over the
// n-grams and headwords of a trained model.
package suggest

// ICompleter defines the interface for n-gram completion engines
type ICompleter interface {
	// Complete returns up to limit n-grams starting with prefix
	Complete(prefix string, limit int) []Suggestion

	// Rebuild replaces the indexed n-grams
	Rebuild(ngrams map[string]int)

	// Stats returns statistics about the indexed n-grams
	Stats() map[string]int
}
