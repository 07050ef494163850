package search_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dstrand/vitrine/internal/commerce"
	"github.com/dstrand/vitrine/internal/domain"
	"github.com/dstrand/vitrine/internal/search"
)

const testDebounce = 20 * time.Millisecond

type resultSink struct {
	mu      sync.Mutex
	queries []string
	last    []domain.Product
}

func (r *resultSink) deliver(query string, products []domain.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries = append(r.queries, query)
	r.last = products
}

func (r *resultSink) lastQuery() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.queries) == 0 {
		return ""
	}
	return r.queries[len(r.queries)-1]
}

func (r *resultSink) lastResults() []domain.Product {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

func namedProducts(names ...string) []domain.Product {
	out := make([]domain.Product, len(names))
	for i, name := range names {
		out[i] = domain.Product{ID: int64(i + 1), Name: name}
	}
	return out
}

func TestTypingCoalescesIntoOneQuery(t *testing.T) {
	client := commerce.NewMockClient()
	client.SearchProductsFunc = func(ctx context.Context, query string, limit int) ([]domain.Product, error) {
		return namedProducts(query + " shirt"), nil
	}

	sink := &resultSink{}
	s := search.New(search.Config{
		Client:    client,
		Debounce:  testDebounce,
		OnResults: sink.deliver,
	})
	defer s.Close()

	for _, text := range []string{"b", "bl", "blu", "blue"} {
		s.Update(text)
	}
	s.Flush()

	// Only the settled input hits the network. Single-character input
	// clears suggestions locally without a query.
	assert.Equal(t, 1, client.Calls("SearchProducts"))
	assert.Equal(t, "blue", sink.lastQuery())
	require.Len(t, sink.lastResults(), 1)
	assert.Equal(t, "blue shirt", sink.lastResults()[0].Name)
}

func TestShortInputClearsWithoutQuery(t *testing.T) {
	client := commerce.NewMockClient()
	client.SearchProductsFunc = func(ctx context.Context, query string, limit int) ([]domain.Product, error) {
		return namedProducts(query), nil
	}
	sink := &resultSink{}
	s := search.New(search.Config{
		Client:    client,
		Debounce:  testDebounce,
		OnResults: sink.deliver,
	})
	defer s.Close()

	s.Update("blue")
	s.Flush()
	require.NotEmpty(t, sink.lastResults())

	s.Update("b")
	assert.Nil(t, sink.lastResults())
	assert.Equal(t, 1, client.Calls("SearchProducts"))
}

func TestSlowOldResponseNeverClobbersNewQuery(t *testing.T) {
	release := make(chan struct{})
	client := commerce.NewMockClient()
	client.SearchProductsFunc = func(ctx context.Context, query string, limit int) ([]domain.Product, error) {
		if query == "shoes" {
			<-release
		}
		return namedProducts(query), nil
	}

	sink := &resultSink{}
	s := search.New(search.Config{
		Client:    client,
		Debounce:  testDebounce,
		OnResults: sink.deliver,
	})
	defer s.Close()

	s.Update("shoes")
	time.Sleep(2 * testDebounce) // let the slow query fire

	s.Update("shirts")
	time.Sleep(2 * testDebounce)
	close(release)
	s.Flush()

	// The shoes response arrives last but is stale; shirts wins.
	assert.Equal(t, "shirts", sink.lastQuery())
	require.NotEmpty(t, sink.lastResults())
	assert.Equal(t, "shirts", sink.lastResults()[0].Name)
}

func TestQueryErrorKeepsExistingSuggestions(t *testing.T) {
	failing := false
	client := commerce.NewMockClient()
	client.SearchProductsFunc = func(ctx context.Context, query string, limit int) ([]domain.Product, error) {
		if failing {
			return nil, &commerce.APIError{StatusCode: 503, Message: "search unavailable"}
		}
		return namedProducts(query), nil
	}

	sink := &resultSink{}
	s := search.New(search.Config{
		Client:    client,
		Debounce:  testDebounce,
		OnResults: sink.deliver,
	})
	defer s.Close()

	s.Update("jacket")
	s.Flush()
	require.NotEmpty(t, sink.lastResults())

	failing = true
	s.Update("jumper")
	s.Flush()

	// Failure keeps the last good suggestions on screen.
	assert.Equal(t, "jacket", sink.lastResults()[0].Name)
}

func TestCloseCancelsPendingQuery(t *testing.T) {
	client := commerce.NewMockClient()
	sink := &resultSink{}
	s := search.New(search.Config{
		Client:    client,
		Debounce:  time.Minute,
		OnResults: sink.deliver,
	})

	s.Update("never fires")
	s.Close()

	assert.Equal(t, 0, client.Calls("SearchProducts"))
}
