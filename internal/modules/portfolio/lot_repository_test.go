package portfolio

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/folio/internal/database"
	"github.com/aristath/folio/internal/domain"
)

func newTestRepo(t *testing.T) *LotRepository {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate())

	return NewLotRepository(db.Conn(), zerolog.Nop())
}

func TestLotRepository_CreateAndGet(t *testing.T) {
	repo := newTestRepo(t)

	created, err := repo.Create(Lot{Symbol: "AAPL", Quantity: 10, BuyPrice: 150.5, PurchaseDate: "2024-01-15"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.NotEmpty(t, created.CreatedAt)

	got, err := repo.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestLotRepository_GetMissing(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Get("no-such-id")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLotRepository_List(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.Create(Lot{Symbol: "AAPL", Quantity: 1, BuyPrice: 100, PurchaseDate: "2024-01-01"})
	require.NoError(t, err)
	_, err = repo.Create(Lot{Symbol: "MSFT", Quantity: 2, BuyPrice: 200, PurchaseDate: "2024-02-01"})
	require.NoError(t, err)

	lots, err := repo.List()
	require.NoError(t, err)
	assert.Len(t, lots, 2)
}

func TestLotRepository_PartialUpdate(t *testing.T) {
	repo := newTestRepo(t)

	created, err := repo.Create(Lot{Symbol: "AAPL", Quantity: 10, BuyPrice: 150, PurchaseDate: "2024-01-15"})
	require.NoError(t, err)

	quantity := 20.0
	updated, err := repo.Update(created.ID, LotUpdate{Quantity: &quantity})
	require.NoError(t, err)

	assert.Equal(t, 20.0, updated.Quantity)
	// Untouched fields survive the partial update.
	assert.Equal(t, 150.0, updated.BuyPrice)
	assert.Equal(t, "2024-01-15", updated.PurchaseDate)
	assert.Equal(t, "AAPL", updated.Symbol)

	got, err := repo.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, got)
}

func TestLotRepository_UpdateMissing(t *testing.T) {
	repo := newTestRepo(t)

	quantity := 1.0
	_, err := repo.Update("no-such-id", LotUpdate{Quantity: &quantity})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLotRepository_Delete(t *testing.T) {
	repo := newTestRepo(t)

	created, err := repo.Create(Lot{Symbol: "AAPL", Quantity: 1, BuyPrice: 100, PurchaseDate: "2024-01-01"})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(created.ID))
	_, err = repo.Get(created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, repo.Delete(created.ID), domain.ErrNotFound)
}

func TestLotRepository_Symbols(t *testing.T) {
	repo := newTestRepo(t)

	for _, symbol := range []string{"MSFT", "AAPL", "AAPL"} {
		_, err := repo.Create(Lot{Symbol: symbol, Quantity: 1, BuyPrice: 100, PurchaseDate: "2024-01-01"})
		require.NoError(t, err)
	}

	symbols, err := repo.Symbols()
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT"}, symbols)
}
