package domain

// Quote is a transient snapshot of a symbol's current market price. It is
// produced fresh per request by the quote gateway and never cached by the
// valuation core.
type Quote struct {
	Symbol        string   `json:"symbol"`
	Name          string   `json:"name,omitempty"`
	CurrentPrice  float64  `json:"current_price"`
	Change        *float64 `json:"change,omitempty"`
	ChangePercent *float64 `json:"change_percent,omitempty"`
	LastUpdated   string   `json:"last_updated"` // YYYY-MM-DD
}

// HistoricalPoint is one trading day of OHLCV data for a symbol, ordered
// ascending by date when returned in a series. The valuation core only
// consumes Close.
type HistoricalPoint struct {
	Date   string  `json:"date"` // YYYY-MM-DD
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}
