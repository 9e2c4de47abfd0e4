package database

// Schema creates the lots and user_settings tables.
const Schema = `
CREATE TABLE IF NOT EXISTS lots (
    id TEXT PRIMARY KEY,
    symbol TEXT NOT NULL,
    quantity REAL NOT NULL,
    buy_price REAL NOT NULL,
    purchase_date TEXT NOT NULL,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_lots_symbol ON lots(symbol);
CREATE INDEX IF NOT EXISTS idx_lots_purchase_date ON lots(purchase_date);

CREATE TABLE IF NOT EXISTS user_settings (
    setting_key TEXT PRIMARY KEY,
    setting_value TEXT NOT NULL,
    updated_at TEXT NOT NULL DEFAULT (datetime('now'))
);
`
