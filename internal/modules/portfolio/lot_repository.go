package portfolio

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/folio/internal/domain"
)

// LotRepository handles lot database operations. It owns the lots
// exclusively; valuation borrows read-only snapshots via List.
type LotRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewLotRepository creates a new lot repository
func NewLotRepository(db *sql.DB, log zerolog.Logger) *LotRepository {
	return &LotRepository{
		db:  db,
		log: log.With().Str("repo", "lots").Logger(),
	}
}

// Create inserts a new lot, assigning its id and creation time.
func (r *LotRepository) Create(lot Lot) (Lot, error) {
	lot.ID = uuid.New().String()
	lot.CreatedAt = time.Now().UTC().Format(time.RFC3339)

	_, err := r.db.Exec(`
		INSERT INTO lots (id, symbol, quantity, buy_price, purchase_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, lot.ID, lot.Symbol, lot.Quantity, lot.BuyPrice, lot.PurchaseDate, lot.CreatedAt)
	if err != nil {
		return Lot{}, fmt.Errorf("failed to insert lot: %w", err)
	}

	return lot, nil
}

// List returns all lots, newest first.
func (r *LotRepository) List() ([]Lot, error) {
	rows, err := r.db.Query(`
		SELECT id, symbol, quantity, buy_price, purchase_date, created_at
		FROM lots
		ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query lots: %w", err)
	}
	defer rows.Close()

	var lots []Lot
	for rows.Next() {
		var lot Lot
		if err := rows.Scan(&lot.ID, &lot.Symbol, &lot.Quantity, &lot.BuyPrice, &lot.PurchaseDate, &lot.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan lot: %w", err)
		}
		lots = append(lots, lot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lots: %w", err)
	}

	return lots, nil
}

// Get returns one lot by id.
func (r *LotRepository) Get(id string) (Lot, error) {
	var lot Lot
	err := r.db.QueryRow(`
		SELECT id, symbol, quantity, buy_price, purchase_date, created_at
		FROM lots
		WHERE id = ?
	`, id).Scan(&lot.ID, &lot.Symbol, &lot.Quantity, &lot.BuyPrice, &lot.PurchaseDate, &lot.CreatedAt)
	if err == sql.ErrNoRows {
		return Lot{}, fmt.Errorf("lot %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return Lot{}, fmt.Errorf("failed to query lot: %w", err)
	}
	return lot, nil
}

// Update applies a partial update to a lot's editable fields and returns
// the updated row.
func (r *LotRepository) Update(id string, upd LotUpdate) (Lot, error) {
	lot, err := r.Get(id)
	if err != nil {
		return Lot{}, err
	}

	if upd.Quantity != nil {
		lot.Quantity = *upd.Quantity
	}
	if upd.BuyPrice != nil {
		lot.BuyPrice = *upd.BuyPrice
	}
	if upd.PurchaseDate != nil {
		lot.PurchaseDate = *upd.PurchaseDate
	}

	_, err = r.db.Exec(`
		UPDATE lots SET quantity = ?, buy_price = ?, purchase_date = ? WHERE id = ?
	`, lot.Quantity, lot.BuyPrice, lot.PurchaseDate, id)
	if err != nil {
		return Lot{}, fmt.Errorf("failed to update lot: %w", err)
	}

	return lot, nil
}

// Delete removes a lot. It reports domain.ErrNotFound for an absent id.
func (r *LotRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM lots WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete lot: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deletion: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("lot %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// Symbols returns the distinct symbols across all lots.
func (r *LotRepository) Symbols() ([]string, error) {
	rows, err := r.db.Query("SELECT DISTINCT symbol FROM lots ORDER BY symbol")
	if err != nil {
		return nil, fmt.Errorf("failed to query symbols: %w", err)
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
