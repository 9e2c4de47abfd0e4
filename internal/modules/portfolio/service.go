package portfolio

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/folio/internal/domain"
	"github.com/aristath/folio/internal/events"
	"github.com/aristath/folio/internal/modules/market"
)

// QuoteSource supplies current quotes for a set of symbols, one lookup per
// unique symbol. market.Fetcher implements it.
type QuoteSource interface {
	Quotes(ctx context.Context, symbols []string) map[string]market.QuoteResult
}

// HistorySource supplies historical series for a set of symbols, one lookup
// per unique symbol. market.Fetcher implements it.
type HistorySource interface {
	Histories(ctx context.Context, symbols []string, from time.Time) map[string]market.HistoryResult
}

// Service orchestrates lot management and portfolio valuation.
type Service struct {
	repo    *LotRepository
	quotes  QuoteSource
	history HistorySource
	events  *events.Manager
	now     func() time.Time
	log     zerolog.Logger
}

// NewService creates a new portfolio service
func NewService(
	repo *LotRepository,
	quotes QuoteSource,
	history HistorySource,
	eventManager *events.Manager,
	log zerolog.Logger,
) *Service {
	return &Service{
		repo:    repo,
		quotes:  quotes,
		history: history,
		events:  eventManager,
		now:     time.Now,
		log:     log.With().Str("service", "portfolio").Logger(),
	}
}

// CreateLot validates and stores a new purchase lot.
func (s *Service) CreateLot(symbol string, quantity, buyPrice float64, purchaseDate string) (Lot, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if err := s.validateLot(symbol, quantity, buyPrice, purchaseDate); err != nil {
		return Lot{}, err
	}

	lot, err := s.repo.Create(Lot{
		Symbol:       symbol,
		Quantity:     quantity,
		BuyPrice:     buyPrice,
		PurchaseDate: purchaseDate,
	})
	if err != nil {
		return Lot{}, err
	}

	s.events.Emit(events.LotCreated, "portfolio", map[string]interface{}{
		"id":     lot.ID,
		"symbol": lot.Symbol,
	})
	return lot, nil
}

// UpdateLot applies a partial update to a lot's editable fields.
func (s *Service) UpdateLot(id string, upd LotUpdate) (Lot, error) {
	if upd.Quantity != nil && *upd.Quantity <= 0 {
		return Lot{}, &domain.ValidationError{Field: "quantity", Reason: "must be positive"}
	}
	if upd.BuyPrice != nil && *upd.BuyPrice <= 0 {
		return Lot{}, &domain.ValidationError{Field: "buy_price", Reason: "must be positive"}
	}
	if upd.PurchaseDate != nil {
		if err := s.validatePurchaseDate(*upd.PurchaseDate); err != nil {
			return Lot{}, err
		}
	}

	lot, err := s.repo.Update(id, upd)
	if err != nil {
		return Lot{}, err
	}

	s.events.Emit(events.LotUpdated, "portfolio", map[string]interface{}{"id": id})
	return lot, nil
}

// DeleteLot removes a lot by id.
func (s *Service) DeleteLot(id string) error {
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	s.events.Emit(events.LotDeleted, "portfolio", map[string]interface{}{"id": id})
	return nil
}

// Valuate computes per-holding and aggregate metrics for the current lots.
// Quote lookups happen once per unique symbol; a failed lookup nulls the
// price for every lot of that symbol and valuation continues. The summary
// fields are always finite, even when every quote fails.
func (s *Service) Valuate(ctx context.Context) (Valuation, error) {
	lots, err := s.repo.List()
	if err != nil {
		return Valuation{}, err
	}
	return s.valuateLots(ctx, lots), nil
}

func (s *Service) valuateLots(ctx context.Context, lots []Lot) Valuation {
	if len(lots) == 0 {
		return Valuation{Holdings: []Holding{}}
	}

	symbols := make([]string, 0, len(lots))
	for _, lot := range lots {
		symbols = append(symbols, lot.Symbol)
	}
	quotes := s.quotes.Quotes(ctx, market.UniqueSymbols(symbols))

	prices := make(map[string]*float64, len(quotes))
	for symbol, result := range quotes {
		if result.Err != nil {
			s.log.Warn().Err(result.Err).Str("symbol", symbol).Msg("Quote lookup failed, price unknown")
			prices[symbol] = nil
			continue
		}
		price := result.Quote.CurrentPrice
		prices[symbol] = &price
	}

	holdings := make([]Holding, 0, len(lots))
	var summary PortfolioSummary
	for _, lot := range lots {
		holding := buildHolding(lot, prices[lot.Symbol])
		holdings = append(holdings, holding)

		summary.TotalCost += holding.Cost
		if holding.CurrentValue != nil {
			// Unpriced holdings contribute zero to TotalValue. This is the
			// documented degradation policy, surfaced via PricedHoldingsCount.
			summary.TotalValue += *holding.CurrentValue
			summary.PricedHoldingsCount++
		}
	}

	summary.HoldingsCount = len(lots)
	summary.TotalGainLoss = summary.TotalValue - summary.TotalCost
	if summary.TotalCost > 0 {
		summary.TotalGainLossPercent = (summary.TotalGainLoss / summary.TotalCost) * 100
	}

	return Valuation{Holdings: holdings, Summary: summary}
}

// buildHolding derives the per-lot metrics. currentPrice == nil marks a
// failed lookup and propagates as nil derived fields, never as zero.
func buildHolding(lot Lot, currentPrice *float64) Holding {
	holding := Holding{
		Lot:  lot,
		Cost: lot.Quantity * lot.BuyPrice,
	}

	if currentPrice == nil {
		return holding
	}

	value := lot.Quantity * *currentPrice
	gainLoss := value - holding.Cost

	holding.CurrentPrice = currentPrice
	holding.CurrentValue = &value
	holding.GainLoss = &gainLoss

	// A zero-cost lot has no meaningful percentage; nil, never Inf or NaN.
	if holding.Cost > 0 {
		pct := (gainLoss / holding.Cost) * 100
		holding.GainLossPercent = &pct
	}

	return holding
}

func (s *Service) validateLot(symbol string, quantity, buyPrice float64, purchaseDate string) error {
	if symbol == "" {
		return &domain.ValidationError{Field: "symbol", Reason: "must not be empty"}
	}
	if len(symbol) > 10 {
		return &domain.ValidationError{Field: "symbol", Reason: "must be at most 10 characters"}
	}
	if quantity <= 0 {
		return &domain.ValidationError{Field: "quantity", Reason: "must be positive"}
	}
	if buyPrice <= 0 {
		return &domain.ValidationError{Field: "buy_price", Reason: "must be positive"}
	}
	return s.validatePurchaseDate(purchaseDate)
}

func (s *Service) validatePurchaseDate(purchaseDate string) error {
	date, err := time.Parse("2006-01-02", purchaseDate)
	if err != nil {
		return &domain.ValidationError{Field: "purchase_date", Reason: "must be a YYYY-MM-DD date"}
	}
	today := s.now().Format("2006-01-02")
	if date.Format("2006-01-02") > today {
		return &domain.ValidationError{Field: "purchase_date", Reason: "must not be in the future"}
	}
	return nil
}
