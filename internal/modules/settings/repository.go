package settings

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/folio/internal/database"
)

// Repository handles settings persistence. Multi-key updates are applied in
// a single transaction so a concurrent reader never observes a partial
// batch.
type Repository struct {
	db  *database.DB
	log zerolog.Logger
}

// NewRepository creates a new settings repository
func NewRepository(db *database.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "settings").Logger(),
	}
}

// All returns every stored setting.
func (r *Repository) All() (map[string]string, error) {
	rows, err := r.db.Query("SELECT setting_key, setting_value FROM user_settings")
	if err != nil {
		return nil, fmt.Errorf("failed to query settings: %w", err)
	}
	defer rows.Close()

	stored := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		stored[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating settings: %w", err)
	}

	return stored, nil
}

// SetMany upserts all given settings atomically.
func (r *Repository) SetMany(stored map[string]string) error {
	if len(stored) == 0 {
		return nil
	}

	return r.db.WithTx(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT OR REPLACE INTO user_settings (setting_key, setting_value, updated_at)
			VALUES (?, ?, datetime('now'))
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare settings upsert: %w", err)
		}
		defer stmt.Close()

		for key, value := range stored {
			if _, err := stmt.Exec(key, value); err != nil {
				return fmt.Errorf("failed to upsert setting %s: %w", key, err)
			}
		}
		return nil
	})
}

// Reset clears all settings and restores the defaults, atomically.
func (r *Repository) Reset() error {
	return r.db.WithTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM user_settings"); err != nil {
			return fmt.Errorf("failed to clear settings: %w", err)
		}
		for key, value := range Defaults {
			if _, err := tx.Exec(`
				INSERT INTO user_settings (setting_key, setting_value, updated_at)
				VALUES (?, ?, datetime('now'))
			`, key, value); err != nil {
				return fmt.Errorf("failed to insert default %s: %w", key, err)
			}
		}
		return nil
	})
}

// EnsureDefaults inserts any missing default settings without touching
// existing values.
func (r *Repository) EnsureDefaults() error {
	return r.db.WithTx(func(tx *sql.Tx) error {
		for key, value := range Defaults {
			if _, err := tx.Exec(`
				INSERT OR IGNORE INTO user_settings (setting_key, setting_value, updated_at)
				VALUES (?, ?, datetime('now'))
			`, key, value); err != nil {
				return fmt.Errorf("failed to seed default %s: %w", key, err)
			}
		}
		return nil
	})
}
