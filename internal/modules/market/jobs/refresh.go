package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/folio/internal/events"
	"github.com/aristath/folio/internal/modules/market"
)

// SymbolSource lists the symbols whose history should stay warm in the
// cache. The lot repository implements it.
type SymbolSource interface {
	Symbols() ([]string, error)
}

// HistoryRefreshJob re-fetches the historical series for every held symbol
// outside the request path, so history requests mostly hit a warm cache.
type HistoryRefreshJob struct {
	source   SymbolSource
	gateway  market.Gateway
	cache    *market.HistoryCache
	events   *events.Manager
	lookback time.Duration
	timeout  time.Duration
	log      zerolog.Logger
}

// NewHistoryRefreshJob creates a new history refresh job
func NewHistoryRefreshJob(
	source SymbolSource,
	gateway market.Gateway,
	cache *market.HistoryCache,
	eventManager *events.Manager,
	log zerolog.Logger,
) *HistoryRefreshJob {
	return &HistoryRefreshJob{
		source:   source,
		gateway:  gateway,
		cache:    cache,
		events:   eventManager,
		lookback: 2 * 366 * 24 * time.Hour, // covers the longest supported period
		timeout:  5 * time.Minute,
		log:      log.With().Str("job", "history_refresh").Logger(),
	}
}

// Name returns the job name
func (j *HistoryRefreshJob) Name() string {
	return "history_refresh"
}

// Run refreshes the cached history for all held symbols. A failed symbol is
// logged and skipped; the job itself only fails on store errors.
func (j *HistoryRefreshJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	symbols, err := j.source.Symbols()
	if err != nil {
		return err
	}
	if len(symbols) == 0 {
		j.log.Debug().Msg("No symbols to refresh")
		return nil
	}

	from := time.Now().Add(-j.lookback)
	refreshed := 0
	for _, symbol := range symbols {
		points, err := j.gateway.GetHistory(ctx, symbol, from)
		if err != nil {
			j.log.Warn().Err(err).Str("symbol", symbol).Msg("History refresh failed for symbol")
			continue
		}
		if err := j.cache.Put(symbol, points, from, time.Now()); err != nil {
			return err
		}
		refreshed++
	}

	j.log.Info().Int("symbols", len(symbols)).Int("refreshed", refreshed).Msg("History cache refreshed")
	j.events.Emit(events.HistoryCacheRefreshed, "market", map[string]interface{}{
		"symbols":   len(symbols),
		"refreshed": refreshed,
	})
	return nil
}
