// Package search serves typeahead product suggestions. Queries are debounced
// and responses are sequence-checked so a slow response for an old query can
// never overwrite the suggestions for what the customer is typing now.
package search

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dstrand/vitrine/internal/commerce"
	"github.com/dstrand/vitrine/internal/domain"
	"github.com/dstrand/vitrine/internal/telemetry"
)

const (
	// DefaultDebounce is how long typing must pause before a query fires.
	DefaultDebounce = 300 * time.Millisecond

	// DefaultLimit caps the suggestion list.
	DefaultLimit = 8

	// MinQueryLength avoids firing queries for one-character input.
	MinQueryLength = 2
)

// Config wires a Suggester. Client is required.
type Config struct {
	Client   commerce.Client
	Debounce time.Duration
	Limit    int
	Logger   *slog.Logger
	Metrics  *telemetry.BusinessMetrics

	// OnResults receives the suggestions for the latest query. Stale
	// results are discarded and never delivered.
	OnResults func(query string, products []domain.Product)
}

// Suggester debounces typeahead input and keeps only the latest results.
type Suggester struct {
	client   commerce.Client
	debounce time.Duration
	limit    int
	logger   *slog.Logger
	metrics  *telemetry.BusinessMetrics
	onResult func(query string, products []domain.Product)

	mu     sync.Mutex
	seq    uint64
	timer  *time.Timer
	query  string
	wg     sync.WaitGroup
	closed bool
}

func New(cfg Config) *Suggester {
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	limit := cfg.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	onResult := cfg.OnResults
	if onResult == nil {
		onResult = func(string, []domain.Product) {}
	}
	return &Suggester{
		client:   cfg.Client,
		debounce: debounce,
		limit:    limit,
		logger:   logger,
		metrics:  cfg.Metrics,
		onResult: onResult,
	}
}

// Update feeds the current input text. Each call restarts the debounce
// window; the query fires only after typing pauses. Input shorter than
// MinQueryLength clears the suggestions immediately.
func (s *Suggester) Update(text string) {
	query := strings.TrimSpace(text)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	// Invalidate any in-flight response.
	s.seq++
	s.query = query

	if s.timer != nil {
		if s.timer.Stop() {
			s.wg.Done()
		}
		s.timer = nil
	}

	if len(query) < MinQueryLength {
		s.onResult(query, nil)
		return
	}

	seq := s.seq
	s.wg.Add(1)
	s.timer = time.AfterFunc(s.debounce, func() {
		defer s.wg.Done()
		s.run(seq, query)
	})
}

// run executes the query and delivers results only if no newer input
// arrived while it was in flight.
func (s *Suggester) run(seq uint64, query string) {
	ctx, cancel := context.WithTimeout(context.Background(), commerce.DefaultTimeout)
	defer cancel()

	if s.metrics != nil {
		s.metrics.SearchQueries.Inc()
	}

	products, err := s.client.SearchProducts(ctx, query, s.limit)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || seq != s.seq {
		if s.metrics != nil {
			s.metrics.SearchDiscarded.Inc()
		}
		s.logger.Debug("discarding stale search response", "query", query)
		return
	}

	if err != nil {
		// A failed suggestion lookup is not worth surfacing; keep whatever
		// is on screen.
		s.logger.Warn("search suggestions failed", "query", query, "error", err)
		return
	}

	s.onResult(query, products)
}

// Flush fires any pending query immediately. Test hook.
func (s *Suggester) Flush() {
	s.mu.Lock()
	timer := s.timer
	s.timer = nil
	seq, query := s.seq, s.query
	s.mu.Unlock()

	if timer != nil && timer.Stop() {
		s.run(seq, query)
		s.wg.Done()
	}
	s.wg.Wait()
}

// Close stops the suggester. Pending timers are cancelled; in-flight
// queries are discarded on return.
func (s *Suggester) Close() {
	s.mu.Lock()
	s.closed = true
	if s.timer != nil {
		if s.timer.Stop() {
			s.wg.Done()
		}
		s.timer = nil
	}
	s.mu.Unlock()
	s.wg.Wait()
}
