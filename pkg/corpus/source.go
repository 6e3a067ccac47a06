// Package corpus supplies token streams and size estimates for the model.
package corpus

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bastiangx/ngramserve/internal/utils"
)

// BytesToTokens is the average number of whitespace separated tokens per
// byte of English text.
const BytesToTokens = 0.175

const maxTokenSize = 1024 * 1024

// TokenStream yields whitespace separated tokens in reading order.
// *bufio.Scanner satisfies everything except Close.
type TokenStream interface {
	Scan() bool
	Text() string
	Err() error
	Close() error
}

// Source is a text document the model can ingest.
type Source interface {
	Name() string
	// EstimateTokens guesses the token count, used to size the headword table.
	EstimateTokens() (int, error)
	Open() (TokenStream, error)
}

// EstimateFromSize converts a byte count into a token estimate.
func EstimateFromSize(size int64) int {
	return int(BytesToTokens * float64(size))
}

type scannerStream struct {
	*bufio.Scanner
	closer func() error
}

func (s *scannerStream) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}

func newWordScanner(r *bufio.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxTokenSize)
	sc.Split(bufio.ScanWords)
	return sc
}

// FileSource reads a document from disk.
type FileSource struct {
	Path string
}

func (f FileSource) Name() string { return f.Path }

func (f FileSource) EstimateTokens() (int, error) {
	info, err := os.Stat(f.Path)
	if err != nil {
		return 0, err
	}
	if info.IsDir() {
		return 0, fmt.Errorf("%s is a directory", f.Path)
	}
	return EstimateFromSize(info.Size()), nil
}

func (f FileSource) Open() (TokenStream, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, err
	}
	return &scannerStream{Scanner: newWordScanner(bufio.NewReader(file)), closer: file.Close}, nil
}

// TextSource serves an in-memory document.
type TextSource struct {
	Label string
	Text  string
}

func (t TextSource) Name() string {
	if t.Label == "" {
		return "text"
	}
	return t.Label
}

func (t TextSource) EstimateTokens() (int, error) {
	return EstimateFromSize(int64(len(t.Text))), nil
}

func (t TextSource) Open() (TokenStream, error) {
	return &scannerStream{Scanner: newWordScanner(bufio.NewReader(strings.NewReader(t.Text)))}, nil
}

// Dir resolves document names against a corpus directory.
type Dir struct {
	Root string
}

// Resolve returns a FileSource for name. Absolute paths and paths that exist
// relative to the working directory are used as given; anything else is
// looked up under Root.
func (d Dir) Resolve(name string) Source {
	if filepath.IsAbs(name) || d.Root == "" || utils.FileExists(name) {
		return FileSource{Path: name}
	}
	return FileSource{Path: filepath.Join(d.Root, name)}
}
