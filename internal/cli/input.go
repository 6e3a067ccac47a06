// Package cli is an interactive shell over the n-gram model for testing and debugging.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bastiangx/ngramserve/internal/logger"
	"github.com/bastiangx/ngramserve/internal/utils"
	"github.com/bastiangx/ngramserve/pkg/corpus"
	"github.com/bastiangx/ngramserve/pkg/export"
	"github.com/bastiangx/ngramserve/pkg/model"
	"github.com/bastiangx/ngramserve/pkg/suggest"
	"github.com/charmbracelet/log"
)

var errQuit = errors.New("quit")

const usage = `commands:
  train <file>       build the model from a corpus file
  grow <file>        add a corpus file to the model
  freq <ngram>       relative frequency
  top <head> [n]     most frequent collocates
  counts <head>      collocates with counts
  remove <ngram>     delete one n-gram
  complete <prefix>  n-grams starting with prefix
  stats              model counters
  export [path]      write n-grams as CSV
  reset              drop every count
  quit`

// InputHandler reads commands line by line and prints results to its logger.
type InputHandler struct {
	model      *model.Model
	corpus     corpus.Dir
	resultsDir string
	limit      int

	completer suggest.ICompleter
	fuzzy     *suggest.FuzzyMatcher
	stale     bool

	in           io.Reader
	log          *log.Logger
	requestCount int
}

// NewInputHandler creates a handler reading from stdin and writing to stderr.
func NewInputHandler(m *model.Model, dir corpus.Dir, resultsDir string, limit int) *InputHandler {
	if limit < 1 {
		limit = 1
	}
	return &InputHandler{
		model:      m,
		corpus:     dir,
		resultsDir: resultsDir,
		limit:      limit,
		completer:  suggest.NewCompleter(),
		stale:      true,
		in:         os.Stdin,
		log:        logger.New(""),
	}
}

// Start runs the prompt loop until quit or end of input.
func (h *InputHandler) Start() error {
	h.log.Print("ngramserve CLI")
	h.log.Print("type help for commands (Ctrl+C to exit)")
	reader := bufio.NewReader(h.in)

	for {
		h.log.Print("> ")
		line, err := reader.ReadString('\n')
		if line = strings.TrimSpace(line); line != "" {
			if herr := h.handleInput(line); herr != nil {
				if errors.Is(herr, errQuit) {
					return nil
				}
				h.log.Error(herr)
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

// handleInput runs one command line.
func (h *InputHandler) handleInput(line string) error {
	h.requestCount++
	cmd, arg, _ := strings.Cut(line, " ")
	cmd, arg = strings.ToLower(cmd), strings.TrimSpace(arg)
	start := time.Now()

	switch cmd {
	case "train", "grow":
		if arg == "" {
			return fmt.Errorf("usage: %s <file>", cmd)
		}
		src := h.corpus.Resolve(arg)
		var err error
		if cmd == "train" {
			err = h.model.Train(src)
		} else {
			err = h.model.Grow(src)
		}
		if err != nil {
			return err
		}
		h.stale = true
		h.log.Printf("%s %s: %s unique / %s total n-grams in %v",
			cmd, src.Name(),
			utils.FormatWithCommas(h.model.UniqueNGrams()),
			utils.FormatWithCommas(h.model.TotalNGrams()),
			time.Since(start))
	case "freq":
		if arg == "" {
			return errors.New("usage: freq <ngram>")
		}
		h.log.Printf("%q: %.6f", arg, h.model.Frequency(arg))
	case "top":
		return h.top(arg)
	case "counts":
		counts := h.model.CollocateCounts(arg)
		if len(counts) == 0 {
			h.log.Printf("no collocates for %q", arg)
			return nil
		}
		for i, s := range suggest.Rank(counts, 0) {
			h.log.Printf("%d. %s (%s)", i+1, s.NGram, utils.FormatWithCommas(s.Count))
		}
	case "remove":
		if arg == "" {
			return errors.New("usage: remove <ngram>")
		}
		if err := h.model.Remove(arg); err != nil {
			return err
		}
		h.stale = true
		h.log.Printf("removed %q, %s unique n-grams left", arg, utils.FormatWithCommas(h.model.UniqueNGrams()))
	case "complete":
		return h.complete(arg, start)
	case "stats":
		h.printStats()
	case "export":
		return h.export(arg)
	case "reset":
		h.model.Reset()
		h.stale = true
		h.log.Print("model reset")
	case "help", "?":
		h.log.Print(usage)
	case "quit", "exit", "q":
		return errQuit
	default:
		return fmt.Errorf("unknown command %q, type help", cmd)
	}
	return nil
}

func (h *InputHandler) top(arg string) error {
	head, n := arg, h.limit
	if i := strings.LastIndexByte(arg, ' '); i > 0 {
		if v, err := strconv.Atoi(arg[i+1:]); err == nil {
			head, n = strings.TrimSpace(arg[:i]), v
		}
	}
	if head == "" {
		return errors.New("usage: top <head> [n]")
	}
	top := h.model.TopCollocates(head, n)
	if len(top) == 0 && h.model.Order() > 1 {
		h.refresh()
		if fixed, ok := h.fuzzy.SuggestCorrection(head); ok {
			h.log.Printf("no headword %q, showing %q", head, fixed)
			top = h.model.TopCollocates(fixed, n)
		}
	}
	if len(top) == 0 {
		h.log.Printf("no collocates for %q", head)
		return nil
	}
	for i, c := range top {
		h.log.Printf("%d. %s", i+1, c)
	}
	return nil
}

func (h *InputHandler) complete(prefix string, start time.Time) error {
	if !utils.IsValidInput(prefix) {
		return fmt.Errorf("invalid prefix %q", prefix)
	}
	h.refresh()
	suggestions := h.completer.Complete(prefix, h.limit)
	if len(suggestions) == 0 {
		h.log.Printf("no n-grams start with %q", prefix)
		return nil
	}
	h.log.Printf("%d suggestions in %v:", len(suggestions), time.Since(start))
	for i, s := range suggestions {
		h.log.Printf("%d. %s (%s)", i+1, s.NGram, utils.FormatWithCommas(s.Count))
	}
	return nil
}

func (h *InputHandler) export(path string) error {
	if !h.model.Trained() {
		return model.ErrUntrained
	}
	if path == "" {
		path = filepath.Join(h.resultsDir, fmt.Sprintf("%dgrams.csv", h.model.Order()))
	}
	if err := export.WriteFile(path, h.model.NGrams()); err != nil {
		return err
	}
	h.log.Printf("wrote %s", path)
	return nil
}

func (h *InputHandler) printStats() {
	st := h.model.Stats()
	h.log.Print("model",
		"order", st.Order,
		"trained", st.Trained,
		"unique", utils.FormatWithCommas(st.UniqueNGrams),
		"total", utils.FormatWithCommas(st.TotalNGrams),
		"tokens", utils.FormatWithCommas(st.TotalTokens),
		"unigrams", utils.FormatWithCommas(st.UniqueUnigrams))
	h.log.Print("table",
		"headwords", st.Headwords,
		"capacity", st.Capacity,
		"tombstones", st.Tombstones,
		"load", fmt.Sprintf("%.3f", st.Load))
}

func (h *InputHandler) refresh() {
	if !h.stale {
		return
	}
	h.completer.Rebuild(h.model.NGrams())
	h.fuzzy = suggest.NewFuzzyMatcher(h.model.HeadwordCounts())
	h.stale = false
}
