/*
Package server implements msgpack IPC for the n-gram model.

Clients write msgpack encoded requests to stdin and read one msgpack encoded
response per request from stdout. Requests are handled in order on a single
goroutine, so the model never sees concurrent calls.

# IPC

Every request carries an operation and the fields that operation needs:

	{"id": "r1", "op": "train", "src": "gettysburg.txt"}
	{"id": "r2", "op": "freq", "g": "we cannot"}
	{"id": "r3", "op": "top", "h": "that", "l": 5}
	{"id": "r4", "op": "complete", "p": "we ", "l": 3}

Responses echo the id and include the time taken in microseconds:

	{"id": "r2", "g": "we cannot", "f": 0.011, "t": 3}
	{"id": "r3", "h": "that", "s": ["nation", "we", "this"], "c": 3, "t": 5}

Failures are reported as {"id": ..., "e": message, "c": code} where code is
400 for malformed or mis-sized n-grams, 404 for unknown n-grams, 409 when the
model is not trained, 503 when a corpus cannot be read and 500 otherwise.

Requests without an id are assigned a random one.

# Operations

	train     src        replace the model with the n-grams of a corpus file
	grow      src        add a corpus file to the trained model
	remove    g          delete one n-gram
	reset                drop every count
	freq      g          relative frequency of an n-gram or headword
	top       h, l       most frequent collocates of a headword
	counts    h          every collocate of a headword with its count
	ngrams               every n-gram with its count
	complete  p, l       n-grams starting with a prefix
	stats                model counters
	export    path       write all n-grams as CSV
	health               liveness check
*/
package server

import "github.com/bastiangx/ngramserve/pkg/suggest"

// Request is the single request envelope; unused fields stay empty.
type Request struct {
	ID     string `msgpack:"id"`
	Op     string `msgpack:"op"`
	Source string `msgpack:"src,omitempty"`
	NGram  string `msgpack:"g,omitempty"`
	Head   string `msgpack:"h,omitempty"`
	Prefix string `msgpack:"p,omitempty"`
	Limit  int    `msgpack:"l,omitempty"`
	Path   string `msgpack:"path,omitempty"`
}

// StatusResponse acknowledges operations without a payload.
type StatusResponse struct {
	ID        string `msgpack:"id"`
	Status    string `msgpack:"status"`
	Path      string `msgpack:"path,omitempty"`
	TimeTaken int64  `msgpack:"t"`
}

// ModelStats mirrors model.Stats on the wire.
type ModelStats struct {
	Order          int     `msgpack:"order"`
	Trained        bool    `msgpack:"trained"`
	UniqueNGrams   int     `msgpack:"unique"`
	TotalNGrams    int     `msgpack:"total"`
	TotalTokens    int     `msgpack:"tokens"`
	UniqueUnigrams int     `msgpack:"unigrams"`
	Headwords      int     `msgpack:"headwords"`
	Capacity       int     `msgpack:"capacity"`
	Tombstones     int     `msgpack:"tombstones"`
	Load           float64 `msgpack:"load"`
}

// StatsResponse answers stats and every mutating operation.
type StatsResponse struct {
	ID        string     `msgpack:"id"`
	Status    string     `msgpack:"status"`
	Stats     ModelStats `msgpack:"stats"`
	TimeTaken int64      `msgpack:"t"`
}

type FrequencyResponse struct {
	ID        string  `msgpack:"id"`
	NGram     string  `msgpack:"g"`
	Frequency float64 `msgpack:"f"`
	TimeTaken int64   `msgpack:"t"`
}

// CollocatesResponse lists top collocates. Corrected is set when the
// requested headword was unknown and a close one was used instead.
type CollocatesResponse struct {
	ID         string   `msgpack:"id"`
	Headword   string   `msgpack:"h"`
	Collocates []string `msgpack:"s"`
	Count      int      `msgpack:"c"`
	Corrected  string   `msgpack:"fix,omitempty"`
	TimeTaken  int64    `msgpack:"t"`
}

type CountsResponse struct {
	ID        string         `msgpack:"id"`
	Counts    map[string]int `msgpack:"m"`
	Count     int            `msgpack:"c"`
	TimeTaken int64          `msgpack:"t"`
}

type CompletionResponse struct {
	ID          string               `msgpack:"id"`
	Suggestions []suggest.Suggestion `msgpack:"s"`
	Count       int                  `msgpack:"c"`
	TimeTaken   int64                `msgpack:"t"`
}

// ErrorResponse holds basic error information for a failed request
type ErrorResponse struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}
