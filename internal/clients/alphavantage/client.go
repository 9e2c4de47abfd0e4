package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/folio/internal/domain"
)

// Client is an Alpha Vantage API client. It translates provider failures
// into the domain error taxonomy and never substitutes placeholder data.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	log     zerolog.Logger
}

// Config holds client configuration
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// NewClient creates a new Alpha Vantage client
func NewClient(cfg Config, log zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: timeout},
		log:     log.With().Str("client", "alphavantage").Logger(),
	}
}

// GetQuote fetches the current quote for a symbol via GLOBAL_QUOTE.
func (c *Client) GetQuote(ctx context.Context, symbol string) (domain.Quote, error) {
	params := url.Values{}
	params.Set("function", "GLOBAL_QUOTE")
	params.Set("symbol", strings.ToUpper(symbol))
	params.Set("apikey", c.apiKey)

	body, err := c.get(ctx, params)
	if err != nil {
		return domain.Quote{}, err
	}

	var payload globalQuoteResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return domain.Quote{}, fmt.Errorf("failed to parse quote response: %w", err)
	}

	if payload.Note != "" || payload.Information != "" {
		return domain.Quote{}, fmt.Errorf("provider throttled %s: %w", symbol, domain.ErrRateLimited)
	}
	if payload.ErrorMessage != "" {
		return domain.Quote{}, fmt.Errorf("%s: %s: %w", symbol, payload.ErrorMessage, domain.ErrNotFound)
	}
	if len(payload.GlobalQuote) == 0 {
		return domain.Quote{}, fmt.Errorf("no quote data for %s: %w", symbol, domain.ErrNotFound)
	}

	quote, err := payload.GlobalQuote.toQuote()
	if err != nil {
		return domain.Quote{}, fmt.Errorf("malformed quote for %s: %w", symbol, err)
	}
	return quote, nil
}

// GetHistory fetches the daily OHLCV series for a symbol via
// TIME_SERIES_DAILY, filtered to dates on or after from and sorted ascending.
func (c *Client) GetHistory(ctx context.Context, symbol string, from time.Time) ([]domain.HistoricalPoint, error) {
	params := url.Values{}
	params.Set("function", "TIME_SERIES_DAILY")
	params.Set("symbol", strings.ToUpper(symbol))
	params.Set("outputsize", outputSize(from))
	params.Set("apikey", c.apiKey)

	body, err := c.get(ctx, params)
	if err != nil {
		return nil, err
	}

	var payload dailySeriesResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse history response: %w", err)
	}

	if payload.Note != "" || payload.Information != "" {
		return nil, fmt.Errorf("provider throttled %s: %w", symbol, domain.ErrRateLimited)
	}
	if payload.ErrorMessage != "" {
		return nil, fmt.Errorf("%s: %s: %w", symbol, payload.ErrorMessage, domain.ErrNotFound)
	}
	if len(payload.TimeSeries) == 0 {
		return nil, fmt.Errorf("no historical data for %s: %w", symbol, domain.ErrNotFound)
	}

	cutoff := from.Format("2006-01-02")
	points := make([]domain.HistoricalPoint, 0, len(payload.TimeSeries))
	for date, bar := range payload.TimeSeries {
		if date < cutoff {
			continue
		}
		point, err := bar.toPoint(date)
		if err != nil {
			c.log.Warn().Err(err).Str("symbol", symbol).Str("date", date).Msg("Skipping malformed bar")
			continue
		}
		points = append(points, point)
	}

	sort.Slice(points, func(i, j int) bool {
		return points[i].Date < points[j].Date
	})

	c.log.Debug().
		Str("symbol", symbol).
		Int("count", len(points)).
		Msg("Fetched historical prices")

	return points, nil
}

// get performs the HTTP request and maps transport-level failures.
func (c *Client) get(ctx context.Context, params url.Values) ([]byte, error) {
	reqURL := c.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %v: %w", err, domain.ErrUnavailable)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("provider returned 429: %w", domain.ErrRateLimited)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("provider returned status %d: %w", resp.StatusCode, domain.ErrUnavailable)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %v: %w", err, domain.ErrUnavailable)
	}
	return body, nil
}

// outputSize picks compact (last 100 days) or full depending on the window.
func outputSize(from time.Time) string {
	if time.Since(from) > 100*24*time.Hour {
		return "full"
	}
	return "compact"
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}
