package alphavantage

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aristath/folio/internal/domain"
)

// globalQuoteResponse is the GLOBAL_QUOTE payload. The provider reports
// rate limiting as a 200 response carrying a "Note" (or "Information")
// field instead of data.
type globalQuoteResponse struct {
	GlobalQuote  globalQuote `json:"Global Quote"`
	Note         string      `json:"Note"`
	Information  string      `json:"Information"`
	ErrorMessage string      `json:"Error Message"`
}

// globalQuote uses the provider's numbered field names.
type globalQuote map[string]string

func (q globalQuote) toQuote() (domain.Quote, error) {
	symbol := q["01. symbol"]
	if symbol == "" {
		return domain.Quote{}, fmt.Errorf("missing symbol field")
	}

	price, err := parseFloat(q["05. price"])
	if err != nil {
		return domain.Quote{}, fmt.Errorf("bad price %q: %w", q["05. price"], err)
	}

	quote := domain.Quote{
		Symbol:       symbol,
		CurrentPrice: price,
		LastUpdated:  q["07. latest trading day"],
	}

	if change, err := parseFloat(q["09. change"]); err == nil {
		quote.Change = &change
	}
	// Change percent arrives as "1.2345%".
	pctText := strings.TrimSuffix(q["10. change percent"], "%")
	if pct, err := parseFloat(pctText); err == nil {
		quote.ChangePercent = &pct
	}

	return quote, nil
}

// dailySeriesResponse is the TIME_SERIES_DAILY payload.
type dailySeriesResponse struct {
	TimeSeries   map[string]dailyBar `json:"Time Series (Daily)"`
	Note         string              `json:"Note"`
	Information  string              `json:"Information"`
	ErrorMessage string              `json:"Error Message"`
}

type dailyBar struct {
	Open   string `json:"1. open"`
	High   string `json:"2. high"`
	Low    string `json:"3. low"`
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}

func (b dailyBar) toPoint(date string) (domain.HistoricalPoint, error) {
	open, err := parseFloat(b.Open)
	if err != nil {
		return domain.HistoricalPoint{}, fmt.Errorf("bad open %q: %w", b.Open, err)
	}
	high, err := parseFloat(b.High)
	if err != nil {
		return domain.HistoricalPoint{}, fmt.Errorf("bad high %q: %w", b.High, err)
	}
	low, err := parseFloat(b.Low)
	if err != nil {
		return domain.HistoricalPoint{}, fmt.Errorf("bad low %q: %w", b.Low, err)
	}
	closePrice, err := parseFloat(b.Close)
	if err != nil {
		return domain.HistoricalPoint{}, fmt.Errorf("bad close %q: %w", b.Close, err)
	}
	volume, err := strconv.ParseInt(strings.TrimSpace(b.Volume), 10, 64)
	if err != nil {
		volume = 0
	}

	return domain.HistoricalPoint{
		Date:   date,
		Open:   open,
		High:   high,
		Low:    low,
		Close:  closePrice,
		Volume: volume,
	}, nil
}
