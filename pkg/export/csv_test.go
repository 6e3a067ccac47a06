package export

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSV(t *testing.T) {
	t.Run("sorted rows under a header", func(t *testing.T) {
		// Prepare
		var buf bytes.Buffer
		ngrams := map[string]int{"we cannot": 3, "cannot hallow": 1, "this ground": 1}

		// Execute
		err := WriteCSV(&buf, ngrams)

		// Check
		require.NoError(t, err)
		assert.Equal(t, "ngram,count\ncannot hallow,1\nthis ground,1\nwe cannot,3\n", buf.String())
	})

	t.Run("empty model", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteCSV(&buf, nil))
		assert.Equal(t, "ngram,count\n", buf.String())
	})

	t.Run("commas are quoted", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteCSV(&buf, map[string]int{"a,b": 2}))
		assert.Equal(t, "ngram,count\n\"a,b\",2\n", buf.String())
	})
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results", "bigrams.csv")

	require.NoError(t, WriteFile(path, map[string]int{"one bigram": 1}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ngram,count\none bigram,1\n", string(data))
}
