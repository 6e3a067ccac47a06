package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bastiangx/ngramserve/internal/logger"
	"github.com/bastiangx/ngramserve/internal/metrics"
	"github.com/bastiangx/ngramserve/pkg/config"
	"github.com/bastiangx/ngramserve/pkg/corpus"
	"github.com/bastiangx/ngramserve/pkg/export"
	"github.com/bastiangx/ngramserve/pkg/model"
	"github.com/bastiangx/ngramserve/pkg/suggest"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

var errBadRequest = errors.New("bad request")

// Server answers msgpack requests against one model.
type Server struct {
	model     *model.Model
	config    *config.Config
	corpus    corpus.Dir
	metrics   *metrics.Metrics
	completer *suggest.Completer
	fuzzy     *suggest.FuzzyMatcher
	// stale is set whenever the model changes; completion indexes are
	// rebuilt on the next query that needs them
	stale bool

	dec *msgpack.Decoder
	enc *msgpack.Encoder
	log *log.Logger

	requestCount int
}

type Option func(*Server)

// WithIO replaces stdin/stdout.
func WithIO(r io.Reader, w io.Writer) Option {
	return func(s *Server) {
		s.dec = msgpack.NewDecoder(r)
		s.enc = msgpack.NewEncoder(w)
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.log = l }
}

// NewServer creates a server reading requests from stdin and writing
// responses to stdout.
func NewServer(m *model.Model, cfg *config.Config, opts ...Option) *Server {
	s := &Server{
		model:     m,
		config:    cfg,
		corpus:    corpus.Dir{Root: cfg.Model.CorpusDir},
		completer: suggest.NewCompleter(),
		stale:     true,
		dec:       msgpack.NewDecoder(os.Stdin),
		enc:       msgpack.NewEncoder(os.Stdout),
		log:       logger.New("ipc"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.recordModel()
	return s
}

// Start serves requests until the input ends or ctx is cancelled. A
// cancelled context is noticed between requests, or when the caller closes
// the input to unblock a pending read.
func (s *Server) Start(ctx context.Context) error {
	s.log.Debug("Starting server")
	if err := s.send(StatusResponse{Status: "ready"}); err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		var raw msgpack.RawMessage
		if err := s.dec.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				s.log.Debug("input closed", "requests", s.requestCount)
				return nil
			}
			return fmt.Errorf("read request: %w", err)
		}
		s.requestCount++

		var req Request
		if err := msgpack.Unmarshal(raw, &req); err != nil {
			s.log.Errorf("Unmarshaling request: %v", err)
			if err := s.send(ErrorResponse{Error: "invalid request", Code: 400}); err != nil {
				return err
			}
			continue
		}
		if req.ID == "" {
			req.ID = uuid.NewString()
		}

		start := time.Now()
		resp, err := s.handle(req)
		took := time.Since(start)

		status := "ok"
		if err != nil {
			code := codeFor(err)
			status = strconv.Itoa(code)
			s.log.Debug("request failed", "id", req.ID, "op", req.Op, "err", err)
			resp = ErrorResponse{ID: req.ID, Error: err.Error(), Code: code}
		}
		if s.metrics != nil {
			s.metrics.ObserveRequest(req.Op, status, took)
		}
		if err := s.send(resp); err != nil {
			return err
		}
	}
}

func (s *Server) send(resp any) error {
	if err := s.enc.Encode(resp); err != nil {
		s.log.Errorf("Encoding response: %v", err)
		return err
	}
	return nil
}

func codeFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest), errors.Is(err, model.ErrArityMismatch):
		return 400
	case errors.Is(err, model.ErrNotFound):
		return 404
	case errors.Is(err, model.ErrUntrained):
		return 409
	case errors.Is(err, model.ErrSourceUnavailable):
		return 503
	default:
		return 500
	}
}

func micros(start time.Time) int64 {
	return time.Since(start).Microseconds()
}

func (s *Server) handle(req Request) (any, error) {
	start := time.Now()
	switch req.Op {
	case "train", "grow":
		return s.handleIngest(req, start)
	case "remove":
		if strings.TrimSpace(req.NGram) == "" {
			return nil, fmt.Errorf("%w: missing 'g'", errBadRequest)
		}
		if err := s.model.Remove(req.NGram); err != nil {
			return nil, err
		}
		s.changed()
		return s.statsResponse(req.ID, "removed", start), nil
	case "reset":
		s.model.Reset()
		s.changed()
		return s.statsResponse(req.ID, "reset", start), nil
	case "freq":
		if strings.TrimSpace(req.NGram) == "" {
			return nil, fmt.Errorf("%w: missing 'g'", errBadRequest)
		}
		f := s.model.Frequency(req.NGram)
		return FrequencyResponse{ID: req.ID, NGram: req.NGram, Frequency: f, TimeTaken: micros(start)}, nil
	case "top":
		return s.handleTop(req, start)
	case "counts":
		if strings.TrimSpace(req.Head) == "" {
			return nil, fmt.Errorf("%w: missing 'h'", errBadRequest)
		}
		counts := s.model.CollocateCounts(req.Head)
		return CountsResponse{ID: req.ID, Counts: counts, Count: len(counts), TimeTaken: micros(start)}, nil
	case "ngrams":
		ngrams := s.model.NGrams()
		return CountsResponse{ID: req.ID, Counts: ngrams, Count: len(ngrams), TimeTaken: micros(start)}, nil
	case "complete":
		if req.Prefix == "" {
			return nil, fmt.Errorf("%w: missing 'p'", errBadRequest)
		}
		s.refresh()
		suggestions := s.completer.Complete(req.Prefix, s.limit(req.Limit))
		return CompletionResponse{ID: req.ID, Suggestions: suggestions, Count: len(suggestions), TimeTaken: micros(start)}, nil
	case "stats":
		return s.statsResponse(req.ID, "ok", start), nil
	case "export":
		return s.handleExport(req, start)
	case "health":
		return StatusResponse{ID: req.ID, Status: "ok", TimeTaken: micros(start)}, nil
	default:
		return nil, fmt.Errorf("%w: unknown op %q", errBadRequest, req.Op)
	}
}

func (s *Server) handleIngest(req Request, start time.Time) (any, error) {
	if req.Source == "" {
		return nil, fmt.Errorf("%w: missing 'src'", errBadRequest)
	}
	src := s.corpus.Resolve(req.Source)

	var err error
	if req.Op == "train" {
		err = s.model.Train(src)
	} else {
		err = s.model.Grow(src)
	}
	if s.metrics != nil {
		s.metrics.ObserveIngest(req.Op, err)
	}
	// a grow that fails midway keeps what it counted
	if err == nil || req.Op == "grow" {
		s.changed()
	}
	if err != nil {
		return nil, err
	}
	status := "trained"
	if req.Op == "grow" {
		status = "grown"
	}
	return s.statsResponse(req.ID, status, start), nil
}

func (s *Server) handleTop(req Request, start time.Time) (any, error) {
	head := strings.TrimSpace(req.Head)
	if head == "" {
		return nil, fmt.Errorf("%w: missing 'h'", errBadRequest)
	}
	resp := CollocatesResponse{ID: req.ID, Headword: head}
	resp.Collocates = s.model.TopCollocates(head, s.limit(req.Limit))
	if len(resp.Collocates) == 0 && s.model.Order() > 1 {
		s.refresh()
		if fixed, ok := s.fuzzy.SuggestCorrection(head); ok {
			resp.Corrected = fixed
			resp.Collocates = s.model.TopCollocates(fixed, s.limit(req.Limit))
		}
	}
	resp.Count = len(resp.Collocates)
	resp.TimeTaken = micros(start)
	return resp, nil
}

func (s *Server) handleExport(req Request, start time.Time) (any, error) {
	if !s.model.Trained() {
		return nil, model.ErrUntrained
	}
	path := req.Path
	if path == "" {
		path = filepath.Join(s.config.Export.ResultsDir, fmt.Sprintf("%dgrams.csv", s.model.Order()))
	}
	if err := export.WriteFile(path, s.model.NGrams()); err != nil {
		return nil, err
	}
	return StatusResponse{ID: req.ID, Status: "exported", Path: path, TimeTaken: micros(start)}, nil
}

// limit applies the configured default and ceiling to a requested limit.
func (s *Server) limit(requested int) int {
	if requested < 1 {
		return s.config.Server.DefaultLimit
	}
	return min(requested, s.config.Server.MaxLimit)
}

func (s *Server) changed() {
	s.stale = true
	s.recordModel()
}

func (s *Server) recordModel() {
	if s.metrics != nil {
		s.metrics.SetModel(s.model.Stats())
	}
}

// refresh rebuilds the completion trie and correction list after changes.
func (s *Server) refresh() {
	if !s.stale {
		return
	}
	s.completer.Rebuild(s.model.NGrams())
	s.fuzzy = suggest.NewFuzzyMatcher(s.model.HeadwordCounts())
	s.stale = false
	s.log.Debug("rebuilt completion index", "ngrams", s.completer.Stats()["totalNGrams"])
}

func (s *Server) statsResponse(id, status string, start time.Time) StatsResponse {
	st := s.model.Stats()
	return StatsResponse{
		ID:     id,
		Status: status,
		Stats: ModelStats{
			Order:          st.Order,
			Trained:        st.Trained,
			UniqueNGrams:   st.UniqueNGrams,
			TotalNGrams:    st.TotalNGrams,
			TotalTokens:    st.TotalTokens,
			UniqueUnigrams: st.UniqueUnigrams,
			Headwords:      st.Headwords,
			Capacity:       st.Capacity,
			Tombstones:     st.Tombstones,
			Load:           st.Load,
		},
		TimeTaken: micros(start),
	}
}
