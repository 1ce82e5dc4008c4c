package model

import (
	"sync"
	"time"

	"github.com/nyatla/slsk-go/lib/protocol"
)

// SearchKind distinguishes how a search's results get routed once
// finalized, spec.md §4.5.1.
type SearchKind int

const (
	SearchInteractive SearchKind = iota
	SearchTrackMatch
	SearchRetry
)

// AggregationWindow is how long the coordinator collects results after the
// first one arrives before finalizing a search, spec.md §4.5.1 step 5.
// There is no second constant for the original's 8s Spotify-track variant,
// and NewSearchTxn takes no deadline: a caller wanting a different window
// arms its own timer around a SearchTxn.
const AggregationWindow = 5 * time.Second

// SearchTxn tracks one in-flight FileSearch/WishlistSearch by token.
type SearchTxn struct {
	Token   uint32
	Query   string
	Kind    SearchKind
	Context string

	mu      sync.Mutex
	results []AccumulatedResult
	armed   bool
	timer   *time.Timer
}

// NewSearchTxn starts an empty transaction for the given token.
func NewSearchTxn(token uint32, query string, kind SearchKind, context string) *SearchTxn {
	return &SearchTxn{Token: token, Query: query, Kind: kind, Context: context}
}

// AddResults appends a batch of results from one peer's FileSearchResponse.
// It reports whether this call armed the aggregation timer (i.e. this was
// the first batch received), so the caller can schedule the finalize
// callback exactly once.
func (t *SearchTxn) AddResults(username string, files []protocol.SearchResultFile) (firstBatch bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	firstBatch = !t.armed
	t.armed = true
	for _, f := range files {
		t.results = append(t.results, AccumulatedResult{Username: username, File: f})
	}
	return firstBatch
}

// Results returns a snapshot of the accumulated results so far.
func (t *SearchTxn) Results() []AccumulatedResult {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]AccumulatedResult, len(t.results))
	copy(out, t.results)
	return out
}

// SearchRegistry is the coordinator's token -> SearchTxn map, guarded by a
// single mutex per spec.md §5 ("the coordinator owns a single mutable
// state object... All mutations occur under a single mutex acquired
// briefly, never across socket I/O").
type SearchRegistry struct {
	mu      sync.Mutex
	byToken map[uint32]*SearchTxn
	nextTok uint32
}

func NewSearchRegistry() *SearchRegistry {
	return &SearchRegistry{byToken: make(map[uint32]*SearchTxn)}
}

// NextToken returns a fresh monotonic token, spec.md §4.5.1 step 1.
func (r *SearchRegistry) NextToken() uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextTok++
	return r.nextTok
}

func (r *SearchRegistry) Register(txn *SearchTxn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byToken[txn.Token] = txn
}

func (r *SearchRegistry) Get(token uint32) (*SearchTxn, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	txn, ok := r.byToken[token]
	return txn, ok
}

func (r *SearchRegistry) Remove(token uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byToken, token)
}
