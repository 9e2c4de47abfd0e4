package portfolio

import (
	"context"
	"sort"
	"strings"

	"github.com/aristath/folio/internal/domain"
	"github.com/aristath/folio/pkg/formulas"
)

// History reconstructs the portfolio's value at each historical date inside
// the period. Value at a date only counts lots already purchased by that
// date, priced at that date's close; a lot/date pair with no close for that
// exact date is skipped (no forward or backward fill). A symbol whose
// history fetch fails contributes no data points, and the reconstruction
// as a whole still succeeds.
func (s *Service) History(ctx context.Context, period string) (History, error) {
	p, err := domain.ParsePeriod(period)
	if err != nil {
		return History{}, err
	}

	lots, err := s.repo.List()
	if err != nil {
		return History{}, err
	}
	if len(lots) == 0 {
		return History{Period: string(p), Points: []ValuePoint{}}, nil
	}

	symbols := make([]string, 0, len(lots))
	for _, lot := range lots {
		symbols = append(symbols, lot.Symbol)
	}

	from := p.Start(s.now())
	series := s.history.Histories(ctx, symbols, from)

	// closes[symbol][date] = close price
	closes := make(map[string]map[string]float64, len(series))
	dateSet := make(map[string]bool)
	for symbol, result := range series {
		if result.Err != nil {
			s.log.Warn().Err(result.Err).Str("symbol", symbol).Msg("History fetch failed, omitting symbol")
			continue
		}
		bySymbol := make(map[string]float64, len(result.Points))
		for _, point := range result.Points {
			bySymbol[point.Date] = point.Close
			dateSet[point.Date] = true
		}
		closes[symbol] = bySymbol
	}

	dates := make([]string, 0, len(dateSet))
	for date := range dateSet {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	points := make([]ValuePoint, 0, len(dates))
	for _, date := range dates {
		var value float64
		for _, lot := range lots {
			if lot.PurchaseDate > date {
				continue
			}
			closePrice, ok := closes[lot.Symbol][date]
			if !ok {
				continue
			}
			value += lot.Quantity * closePrice
		}
		// Dates before any holding existed produce zero and are dropped.
		if value > 0 {
			points = append(points, ValuePoint{Date: date, Value: value})
		}
	}

	return History{
		Period: string(p),
		Points: points,
		Stats:  seriesStats(points),
	}, nil
}

// seriesStats summarizes a non-empty value series.
func seriesStats(points []ValuePoint) *HistoryStats {
	if len(points) == 0 {
		return nil
	}

	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Value
	}

	min, max := formulas.MinMax(values)
	first, last := values[0], values[len(values)-1]

	stats := &HistoryStats{
		Min:    min,
		Max:    max,
		Mean:   formulas.Mean(values),
		StdDev: formulas.StdDev(values),
		First:  first,
		Last:   last,
	}
	if first > 0 {
		stats.ChangePercent = ((last - first) / first) * 100
	}
	return stats
}

// SymbolIndicators carries close-price indicators for one symbol's series.
type SymbolIndicators struct {
	RSI14 *float64 `json:"rsi_14,omitempty"`
	SMA20 *float64 `json:"sma_20,omitempty"`
}

// SymbolHistory is one symbol's raw series plus indicators.
type SymbolHistory struct {
	Symbol     string                   `json:"symbol"`
	Period     string                   `json:"period"`
	Points     []domain.HistoricalPoint `json:"points"`
	Indicators SymbolIndicators         `json:"indicators"`
}

// SymbolHistoryFor returns the raw OHLC series for one symbol over the
// period, with RSI and SMA computed over the closes. Unlike portfolio
// history this propagates fetch errors; there is nothing to degrade to.
func (s *Service) SymbolHistoryFor(ctx context.Context, symbol, period string) (SymbolHistory, error) {
	p, err := domain.ParsePeriod(period)
	if err != nil {
		return SymbolHistory{}, err
	}

	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return SymbolHistory{}, &domain.ValidationError{Field: "symbol", Reason: "must not be empty"}
	}

	results := s.history.Histories(ctx, []string{symbol}, p.Start(s.now()))

	result, ok := results[symbol]
	if !ok {
		return SymbolHistory{}, domain.ErrNotFound
	}
	if result.Err != nil {
		return SymbolHistory{}, result.Err
	}

	closes := make([]float64, len(result.Points))
	for i, point := range result.Points {
		closes[i] = point.Close
	}

	return SymbolHistory{
		Symbol: symbol,
		Period: string(p),
		Points: result.Points,
		Indicators: SymbolIndicators{
			RSI14: formulas.RSI(closes, 14),
			SMA20: formulas.SMA(closes, 20),
		},
	}, nil
}
