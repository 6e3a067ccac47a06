// Package model counts n-grams in text and answers frequency queries.
//
// A Model keys a table of headwords (the first word of each n-gram); every
// headword owns a table of collocates (the remaining words) and a list of
// those collocates ordered by count. Both levels are open addressing tables
// from internal/probing.
package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/bastiangx/ngramserve/internal/logger"
	"github.com/bastiangx/ngramserve/pkg/corpus"
	"github.com/charmbracelet/log"
)

// Model is an n-gram index of a fixed order. It is not safe for concurrent use.
type Model struct {
	order     int
	ix        *index
	log       *log.Logger
	normalize func(string) string
}

type Option func(*Model)

func WithLogger(l *log.Logger) Option {
	return func(m *Model) { m.log = l }
}

// WithNormalizer replaces corpus.StripPunctuation as the per-token cleanup.
func WithNormalizer(fn func(string) string) Option {
	return func(m *Model) { m.normalize = fn }
}

// New returns an untrained model counting n-grams of the given order.
func New(order int, opts ...Option) (*Model, error) {
	if order < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidOrder, order)
	}
	m := &Model{
		order:     order,
		log:       logger.Discard(),
		normalize: corpus.StripPunctuation,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

func (m *Model) Order() int { return m.order }

func (m *Model) Trained() bool { return m.ix != nil }

// Reset drops all counts and returns the model to the untrained state.
func (m *Model) Reset() {
	m.ix = nil
}

func openSource(src corpus.Source) (int, corpus.TokenStream, error) {
	estimate, err := src.EstimateTokens()
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %s: %w", ErrSourceUnavailable, src.Name(), err)
	}
	stream, err := src.Open()
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %s: %w", ErrSourceUnavailable, src.Name(), err)
	}
	return estimate, stream, nil
}

// Train replaces the model's contents with the n-grams of src. The headword
// table starts at twice the source's token estimate. When training fails the
// model keeps whatever it held before.
func (m *Model) Train(src corpus.Source) error {
	estimate, stream, err := openSource(src)
	if err != nil {
		return err
	}
	defer stream.Close()

	start := time.Now()
	ix := newIndex(m.order, 2*estimate)
	if err := ix.ingest(stream, m.normalize); err != nil {
		return err
	}
	if m.ix != nil {
		m.log.Debug("discarding previous counts", "unique", m.ix.unique)
	}
	m.ix = ix
	m.log.Info("trained",
		"source", src.Name(),
		"order", m.order,
		"unique", ix.unique,
		"total", ix.total,
		"tokens", ix.tokens,
		"capacity", ix.heads.Capacity(),
		"took", time.Since(start))
	return nil
}

// Grow adds the n-grams of src to an already trained model. Existing
// headwords move into a table sized for both the current capacity and the
// new source before ingestion starts.
//
// Sizing and opening src happen before anything changes; a read error midway
// through src leaves the n-grams counted so far in place.
func (m *Model) Grow(src corpus.Source) error {
	if m.ix == nil {
		return ErrUntrained
	}
	estimate, stream, err := openSource(src)
	if err != nil {
		return err
	}
	defer stream.Close()

	start := time.Now()
	if err := m.ix.heads.Resize(2*estimate + m.ix.heads.Capacity()); err != nil {
		return fmt.Errorf("%w: %w", ErrInsertExhausted, err)
	}
	if err := m.ix.ingest(stream, m.normalize); err != nil {
		return err
	}
	m.log.Info("grown",
		"source", src.Name(),
		"unique", m.ix.unique,
		"total", m.ix.total,
		"tokens", m.ix.tokens,
		"capacity", m.ix.heads.Capacity(),
		"took", time.Since(start))
	return nil
}

// Remove deletes every occurrence of ngram, which must have exactly Order()
// words. Removing the last n-gram resets the model.
func (m *Model) Remove(ngram string) error {
	if m.ix == nil {
		return ErrUntrained
	}
	words := strings.Fields(ngram)
	if len(words) != m.order {
		return fmt.Errorf("%w: %q has %d words, want %d", ErrArityMismatch, ngram, len(words), m.order)
	}
	last, err := m.ix.remove(words)
	if err != nil {
		return fmt.Errorf("%q: %w", ngram, err)
	}
	if last {
		m.log.Debug("removed last n-gram, resetting", "ngram", ngram)
		m.Reset()
	}
	return nil
}
