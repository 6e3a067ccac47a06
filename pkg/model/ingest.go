package model

import (
	"fmt"
	"strings"

	"github.com/bastiangx/ngramserve/pkg/corpus"
)

// ingest slides an order-sized window over the stream and counts every
// complete window as one n-gram.
func (ix *index) ingest(stream corpus.TokenStream, normalize func(string) string) error {
	ix.tokens += ix.order - 1

	window := make([]string, 0, ix.order)
	for stream.Scan() {
		window = append(window, normalize(stream.Text()))
		if len(window) < ix.order {
			continue
		}
		if err := ix.insert(window[0], strings.Join(window[1:], " ")); err != nil {
			return fmt.Errorf("%w: %q: %w", ErrInsertExhausted, strings.Join(window, " "), err)
		}
		copy(window, window[1:])
		window = window[:len(window)-1]
	}
	if err := stream.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}

	if ix.order > 1 {
		ix.resortAll()
	}
	return nil
}
