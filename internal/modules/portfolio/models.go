package portfolio

// Lot is one purchase record. Only quantity, buy price and purchase date
// are editable after creation; derived fields live on Holding and are never
// persisted.
type Lot struct {
	ID           string  `json:"id"`
	Symbol       string  `json:"symbol"`
	Quantity     float64 `json:"quantity"`
	BuyPrice     float64 `json:"buy_price"`
	PurchaseDate string  `json:"purchase_date"` // YYYY-MM-DD
	CreatedAt    string  `json:"created_at"`    // RFC3339
}

// LotUpdate carries the editable fields for a partial update. Nil fields
// are left unchanged.
type LotUpdate struct {
	Quantity     *float64 `json:"quantity,omitempty"`
	BuyPrice     *float64 `json:"buy_price,omitempty"`
	PurchaseDate *string  `json:"purchase_date,omitempty"`
}

// Holding is a lot enriched with current market data. A nil CurrentPrice
// means the gateway could not supply a price for the symbol; the derived
// fields are nil in that case rather than zero, so a failed lookup is never
// mistaken for a worthless position.
type Holding struct {
	Lot
	CurrentPrice    *float64 `json:"current_price"`
	Cost            float64  `json:"cost"`
	CurrentValue    *float64 `json:"current_value"`
	GainLoss        *float64 `json:"gain_loss"`
	GainLossPercent *float64 `json:"gain_loss_percent"`
}

// PortfolioSummary aggregates all holdings. TotalValue counts unpriced
// holdings as zero; PricedHoldingsCount lets a caller tell a genuinely
// worthless portfolio apart from one with unknown prices.
type PortfolioSummary struct {
	TotalValue           float64 `json:"total_value"`
	TotalCost            float64 `json:"total_cost"`
	TotalGainLoss        float64 `json:"total_gain_loss"`
	TotalGainLossPercent float64 `json:"total_gain_loss_percent"`
	HoldingsCount        int     `json:"holdings_count"`
	PricedHoldingsCount  int     `json:"priced_holdings_count"`
}

// Valuation is the full portfolio valuation response.
type Valuation struct {
	Holdings []Holding        `json:"holdings"`
	Summary  PortfolioSummary `json:"summary"`
}

// ValuePoint is the portfolio's reconstructed value on one date.
type ValuePoint struct {
	Date  string  `json:"date"` // YYYY-MM-DD
	Value float64 `json:"value"`
}

// HistoryStats summarizes a reconstructed value series.
type HistoryStats struct {
	Min           float64 `json:"min"`
	Max           float64 `json:"max"`
	Mean          float64 `json:"mean"`
	StdDev        float64 `json:"std_dev"`
	First         float64 `json:"first"`
	Last          float64 `json:"last"`
	ChangePercent float64 `json:"change_percent"`
}

// History is the portfolio history response.
type History struct {
	Period string        `json:"period"`
	Points []ValuePoint  `json:"points"`
	Stats  *HistoryStats `json:"stats,omitempty"`
}
