package market

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/rs/zerolog"

	"github.com/aristath/folio/internal/domain"
)

// HistoryCache stores fetched daily close series on disk. Caching lives on
// the gateway side of the contract; the valuation core always sees the
// Gateway interface and never caches anything itself.
type HistoryCache struct {
	db  *sql.DB
	log zerolog.Logger
}

const historyCacheSchema = `
CREATE TABLE IF NOT EXISTS daily_prices (
    symbol TEXT NOT NULL,
    date TEXT NOT NULL,
    open REAL NOT NULL,
    high REAL NOT NULL,
    low REAL NOT NULL,
    close REAL NOT NULL,
    volume INTEGER NOT NULL,
    PRIMARY KEY (symbol, date)
);

CREATE TABLE IF NOT EXISTS fetch_log (
    symbol TEXT PRIMARY KEY,
    fetched_at TEXT NOT NULL,
    covers_from TEXT NOT NULL
);
`

// NewHistoryCache opens (or creates) the cache database at path.
func NewHistoryCache(path string, log zerolog.Logger) (*HistoryCache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history cache: %w", err)
	}
	if _, err := db.Exec(historyCacheSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create cache schema: %w", err)
	}

	return &HistoryCache{
		db:  db,
		log: log.With().Str("component", "history_cache").Logger(),
	}, nil
}

// Close closes the cache database
func (c *HistoryCache) Close() error {
	return c.db.Close()
}

// Coverage reports when the symbol's series was last stored and the start
// of the date range that fetch covered. Zero times mean the symbol was
// never fetched. A fetch is only as wide as the request that triggered it,
// so freshness alone does not mean the cache can answer a wider range.
func (c *HistoryCache) Coverage(symbol string) (fetchedAt, coversFrom time.Time, err error) {
	var fetched, covers string
	err = c.db.QueryRow("SELECT fetched_at, covers_from FROM fetch_log WHERE symbol = ?", symbol).Scan(&fetched, &covers)
	if err == sql.ErrNoRows {
		return time.Time{}, time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("failed to query fetch log: %w", err)
	}

	fetchedAt, err = time.Parse(time.RFC3339, fetched)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("malformed fetched_at %q: %w", fetched, err)
	}
	coversFrom, err = time.Parse("2006-01-02", covers)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("malformed covers_from %q: %w", covers, err)
	}
	return fetchedAt, coversFrom, nil
}

// Get returns the cached series for symbol from the given date onward.
func (c *HistoryCache) Get(symbol string, from time.Time) ([]domain.HistoricalPoint, error) {
	rows, err := c.db.Query(`
		SELECT date, open, high, low, close, volume
		FROM daily_prices
		WHERE symbol = ? AND date >= ?
		ORDER BY date ASC
	`, symbol, from.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("failed to query cached prices: %w", err)
	}
	defer rows.Close()

	var points []domain.HistoricalPoint
	for rows.Next() {
		var p domain.HistoricalPoint
		if err := rows.Scan(&p.Date, &p.Open, &p.High, &p.Low, &p.Close, &p.Volume); err != nil {
			return nil, fmt.Errorf("failed to scan cached price: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cached prices: %w", err)
	}

	return points, nil
}

// Put stores a fetched series and records the fetch time along with the
// start of the range the fetch covered.
func (c *HistoryCache) Put(symbol string, points []domain.HistoricalPoint, coversFrom, fetchedAt time.Time) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin cache transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO daily_prices (symbol, date, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare cache insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range points {
		if _, err := stmt.Exec(symbol, p.Date, p.Open, p.High, p.Low, p.Close, p.Volume); err != nil {
			return fmt.Errorf("failed to insert cached price: %w", err)
		}
	}

	if _, err := tx.Exec(`
		INSERT OR REPLACE INTO fetch_log (symbol, fetched_at, covers_from) VALUES (?, ?, ?)
	`, symbol, fetchedAt.Format(time.RFC3339), coversFrom.Format("2006-01-02")); err != nil {
		return fmt.Errorf("failed to update fetch log: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit cache transaction: %w", err)
	}

	c.log.Debug().Str("symbol", symbol).Int("count", len(points)).Msg("Cached historical prices")
	return nil
}

// Symbols lists all symbols present in the cache.
func (c *HistoryCache) Symbols() ([]string, error) {
	rows, err := c.db.Query("SELECT symbol FROM fetch_log ORDER BY symbol")
	if err != nil {
		return nil, fmt.Errorf("failed to query cached symbols: %w", err)
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("failed to scan symbol: %w", err)
		}
		symbols = append(symbols, s)
	}
	return symbols, rows.Err()
}

// CachedGateway serves history from the on-disk cache when fresh, falling
// through to the live gateway otherwise. Quotes always pass through; a stale
// quote is worse than a slow one.
type CachedGateway struct {
	live  Gateway
	cache *HistoryCache
	ttl   time.Duration
	now   func() time.Time
	log   zerolog.Logger
}

// NewCachedGateway creates a new caching gateway wrapper
func NewCachedGateway(live Gateway, cache *HistoryCache, ttl time.Duration, log zerolog.Logger) *CachedGateway {
	return &CachedGateway{
		live:  live,
		cache: cache,
		ttl:   ttl,
		now:   time.Now,
		log:   log.With().Str("component", "cached_gateway").Logger(),
	}
}

// GetQuote passes through to the live gateway.
func (g *CachedGateway) GetQuote(ctx context.Context, symbol string) (domain.Quote, error) {
	return g.live.GetQuote(ctx, symbol)
}

// GetHistory serves from the cache when the symbol's series is fresher than
// the TTL and its stored coverage starts at or before the requested from;
// a fresh but narrower series falls through to live, so a 1M fetch never
// truncates a later 1Y request. On a live fetch failure a stale cached
// series is served in preference to failing, keeping the request path
// fail-soft.
func (g *CachedGateway) GetHistory(ctx context.Context, symbol string, from time.Time) ([]domain.HistoricalPoint, error) {
	fetchedAt, coversFrom, err := g.cache.Coverage(symbol)
	if err != nil {
		g.log.Warn().Err(err).Str("symbol", symbol).Msg("Cache lookup failed, going live")
	} else if !fetchedAt.IsZero() && g.now().Sub(fetchedAt) < g.ttl && covers(coversFrom, from) {
		points, err := g.cache.Get(symbol, from)
		if err == nil && len(points) > 0 {
			return points, nil
		}
	}

	points, liveErr := g.live.GetHistory(ctx, symbol, from)
	if liveErr != nil {
		if cached, err := g.cache.Get(symbol, from); err == nil && len(cached) > 0 {
			g.log.Warn().Err(liveErr).Str("symbol", symbol).Msg("Live fetch failed, serving stale cache")
			return cached, nil
		}
		return nil, liveErr
	}

	if err := g.cache.Put(symbol, points, from, g.now()); err != nil {
		g.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to cache fetched history")
	}
	return points, nil
}

// covers compares coverage at date granularity, the resolution the cache
// stores.
func covers(coversFrom, from time.Time) bool {
	if coversFrom.IsZero() {
		return false
	}
	return coversFrom.Format("2006-01-02") <= from.Format("2006-01-02")
}
