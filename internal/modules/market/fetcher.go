package market

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/folio/internal/domain"
)

// FetchPolicy controls how per-symbol lookups are issued within a single
// request. Concurrency bounds parallel outstanding calls; MinInterval > 0
// spaces call starts out to respect provider rate limits. The policy comes
// from configuration, not from the valuation engine.
type FetchPolicy struct {
	Concurrency int
	MinInterval time.Duration
}

// QuoteResult is the outcome of one symbol's quote lookup.
type QuoteResult struct {
	Quote domain.Quote
	Err   error
}

// HistoryResult is the outcome of one symbol's history lookup.
type HistoryResult struct {
	Points []domain.HistoricalPoint
	Err    error
}

// Fetcher fans per-symbol gateway lookups out concurrently. Each unique
// symbol is looked up exactly once per call regardless of how often it
// appears in the input.
type Fetcher struct {
	gateway Gateway
	policy  FetchPolicy
	log     zerolog.Logger
}

// NewFetcher creates a new fetcher
func NewFetcher(gateway Gateway, policy FetchPolicy, log zerolog.Logger) *Fetcher {
	if policy.Concurrency < 1 {
		policy.Concurrency = 1
	}
	return &Fetcher{
		gateway: gateway,
		policy:  policy,
		log:     log.With().Str("component", "fetcher").Logger(),
	}
}

// Quotes looks up current quotes for the unique symbols in symbols. The
// returned map has an entry per unique symbol; failed lookups carry their
// error so the caller can apply its own fail-soft policy.
func (f *Fetcher) Quotes(ctx context.Context, symbols []string) map[string]QuoteResult {
	results := make(map[string]QuoteResult)
	var mu sync.Mutex

	f.forEachSymbol(ctx, symbols, func(symbol string) {
		quote, err := f.gateway.GetQuote(ctx, symbol)
		mu.Lock()
		results[symbol] = QuoteResult{Quote: quote, Err: err}
		mu.Unlock()
	})

	return results
}

// Histories looks up historical series for the unique symbols in symbols,
// bounded to dates on or after from.
func (f *Fetcher) Histories(ctx context.Context, symbols []string, from time.Time) map[string]HistoryResult {
	results := make(map[string]HistoryResult)
	var mu sync.Mutex

	f.forEachSymbol(ctx, symbols, func(symbol string) {
		points, err := f.gateway.GetHistory(ctx, symbol, from)
		mu.Lock()
		results[symbol] = HistoryResult{Points: points, Err: err}
		mu.Unlock()
	})

	return results
}

// forEachSymbol runs fn once per unique symbol, bounded by the fetch policy.
// Cancellation stops launching new lookups; in-flight lookups finish and
// their results are kept (they are read-only and side-effect-free).
func (f *Fetcher) forEachSymbol(ctx context.Context, symbols []string, fn func(symbol string)) {
	unique := UniqueSymbols(symbols)
	if len(unique) == 0 {
		return
	}

	var throttle <-chan time.Time
	if f.policy.MinInterval > 0 {
		ticker := time.NewTicker(f.policy.MinInterval)
		defer ticker.Stop()
		throttle = ticker.C
	}

	sem := make(chan struct{}, f.policy.Concurrency)
	var wg sync.WaitGroup

	for i, symbol := range unique {
		if ctx.Err() != nil {
			f.log.Debug().Msg("Fetch cancelled")
			break
		}

		// The throttle spaces out call starts; the first lookup goes
		// immediately.
		if throttle != nil && i > 0 {
			select {
			case <-throttle:
			case <-ctx.Done():
				f.log.Debug().Msg("Fetch cancelled while throttled")
				wg.Wait()
				return
			}
		}

		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			f.log.Debug().Msg("Fetch cancelled")
			wg.Wait()
			return
		}

		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			defer func() { <-sem }()
			fn(symbol)
		}(symbol)
	}

	wg.Wait()
}

// UniqueSymbols returns the unique, uppercased symbols in order of first
// appearance.
func UniqueSymbols(symbols []string) []string {
	seen := make(map[string]bool, len(symbols))
	unique := make([]string, 0, len(symbols))
	for _, s := range symbols {
		symbol := strings.ToUpper(strings.TrimSpace(s))
		if symbol == "" || seen[symbol] {
			continue
		}
		seen[symbol] = true
		unique = append(unique, symbol)
	}
	return unique
}
