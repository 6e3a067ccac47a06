// Package export writes n-gram counts as CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/bastiangx/ngramserve/internal/utils"
)

// Header is the first row of every export.
var Header = []string{"ngram", "count"}

// WriteCSV writes one row per n-gram, sorted by n-gram.
func WriteCSV(w io.Writer, ngrams map[string]int) error {
	keys := make([]string, 0, len(ngrams))
	for k := range ngrams {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, k := range keys {
		if err := cw.Write([]string{k, strconv.Itoa(ngrams[k])}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile exports to path, creating parent directories as needed.
func WriteFile(path string, ngrams map[string]int) error {
	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteCSV(f, ngrams); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
