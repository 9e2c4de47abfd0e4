package jobs

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/folio/internal/domain"
	"github.com/aristath/folio/internal/events"
	"github.com/aristath/folio/internal/modules/market"
)

type staticSymbols []string

func (s staticSymbols) Symbols() ([]string, error) { return s, nil }

type stubGateway struct {
	history map[string][]domain.HistoricalPoint
	errs    map[string]error
}

func (g *stubGateway) GetQuote(ctx context.Context, symbol string) (domain.Quote, error) {
	return domain.Quote{}, domain.ErrUnavailable
}

func (g *stubGateway) GetHistory(ctx context.Context, symbol string, from time.Time) ([]domain.HistoricalPoint, error) {
	if err, ok := g.errs[symbol]; ok {
		return nil, err
	}
	return g.history[symbol], nil
}

func newTestJob(t *testing.T, source SymbolSource, gateway market.Gateway) (*HistoryRefreshJob, *market.HistoryCache, *events.Manager) {
	t.Helper()

	cache, err := market.NewHistoryCache(filepath.Join(t.TempDir(), "history.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })

	manager := events.NewManager(zerolog.Nop())
	return NewHistoryRefreshJob(source, gateway, cache, manager, zerolog.Nop()), cache, manager
}

func TestHistoryRefreshJob(t *testing.T) {
	gateway := &stubGateway{history: map[string][]domain.HistoricalPoint{
		"AAPL": {{Date: "2024-03-12", Open: 100, High: 112, Low: 99, Close: 110, Volume: 1000}},
	}}
	job, cache, manager := newTestJob(t, staticSymbols{"AAPL"}, gateway)

	require.NoError(t, job.Run())

	points, err := cache.Get("AAPL", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, points, 1)

	recent := manager.Recent()
	require.Len(t, recent, 1)
	assert.Equal(t, events.HistoryCacheRefreshed, recent[0].Type)
}

func TestHistoryRefreshJob_SkipsFailedSymbols(t *testing.T) {
	gateway := &stubGateway{
		history: map[string][]domain.HistoricalPoint{
			"AAPL": {{Date: "2024-03-12", Open: 100, High: 112, Low: 99, Close: 110, Volume: 1000}},
		},
		errs: map[string]error{"TSLA": domain.ErrRateLimited},
	}
	job, cache, _ := newTestJob(t, staticSymbols{"AAPL", "TSLA"}, gateway)

	require.NoError(t, job.Run())

	symbols, err := cache.Symbols()
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL"}, symbols)
}

func TestHistoryRefreshJob_NoSymbols(t *testing.T) {
	job, _, manager := newTestJob(t, staticSymbols{}, &stubGateway{})

	require.NoError(t, job.Run())
	assert.Empty(t, manager.Recent())
}

func TestHistoryRefreshJob_Name(t *testing.T) {
	job, _, _ := newTestJob(t, staticSymbols{}, &stubGateway{})
	assert.Equal(t, "history_refresh", job.Name())
}
