package alphavantage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/folio/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(Config{BaseURL: server.URL, APIKey: "test-key"}, zerolog.Nop())
}

func serveJSON(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}

const quoteFixture = `{
	"Global Quote": {
		"01. symbol": "AAPL",
		"02. open": "149.00",
		"03. high": "151.00",
		"04. low": "148.50",
		"05. price": "150.25",
		"06. volume": "52000000",
		"07. latest trading day": "2024-03-15",
		"08. previous close": "148.75",
		"09. change": "1.50",
		"10. change percent": "1.0084%"
	}
}`

func TestGetQuote(t *testing.T) {
	var gotQuery map[string]string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"function": r.URL.Query().Get("function"),
			"symbol":   r.URL.Query().Get("symbol"),
			"apikey":   r.URL.Query().Get("apikey"),
		}
		serveJSON(quoteFixture)(w, r)
	})

	quote, err := client.GetQuote(context.Background(), "aapl")
	require.NoError(t, err)

	assert.Equal(t, "GLOBAL_QUOTE", gotQuery["function"])
	assert.Equal(t, "AAPL", gotQuery["symbol"])
	assert.Equal(t, "test-key", gotQuery["apikey"])

	assert.Equal(t, "AAPL", quote.Symbol)
	assert.Equal(t, 150.25, quote.CurrentPrice)
	assert.Equal(t, "2024-03-15", quote.LastUpdated)
	require.NotNil(t, quote.Change)
	assert.Equal(t, 1.50, *quote.Change)
	require.NotNil(t, quote.ChangePercent)
	assert.Equal(t, 1.0084, *quote.ChangePercent)
}

func TestGetQuote_RateLimitNote(t *testing.T) {
	// The provider signals throttling with a 200 response carrying a Note.
	client := newTestClient(t, serveJSON(`{"Note": "Thank you for using Alpha Vantage! Our standard API rate limit is 25 requests per day."}`))

	_, err := client.GetQuote(context.Background(), "AAPL")
	assert.ErrorIs(t, err, domain.ErrRateLimited)
}

func TestGetQuote_UnknownSymbol(t *testing.T) {
	client := newTestClient(t, serveJSON(`{"Global Quote": {}}`))

	_, err := client.GetQuote(context.Background(), "NOPE")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetQuote_ErrorMessage(t *testing.T) {
	client := newTestClient(t, serveJSON(`{"Error Message": "Invalid API call."}`))

	_, err := client.GetQuote(context.Background(), "???")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetQuote_HTTPFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"429", http.StatusTooManyRequests, domain.ErrRateLimited},
		{"500", http.StatusInternalServerError, domain.ErrUnavailable},
		{"503", http.StatusServiceUnavailable, domain.ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})

			_, err := client.GetQuote(context.Background(), "AAPL")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestGetQuote_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(serveJSON("{}"))
	server.Close()

	client := NewClient(Config{BaseURL: server.URL, APIKey: "test-key"}, zerolog.Nop())
	_, err := client.GetQuote(context.Background(), "AAPL")
	assert.ErrorIs(t, err, domain.ErrUnavailable)
}

const historyFixture = `{
	"Meta Data": {"2. Symbol": "AAPL"},
	"Time Series (Daily)": {
		"2024-03-13": {"1. open": "171.00", "2. high": "173.00", "3. low": "170.50", "4. close": "172.40", "5. volume": "48000000"},
		"2024-03-12": {"1. open": "169.00", "2. high": "171.50", "3. low": "168.00", "4. close": "171.00", "5. volume": "51000000"},
		"2024-02-01": {"1. open": "150.00", "2. high": "152.00", "3. low": "149.00", "4. close": "151.00", "5. volume": "44000000"}
	}
}`

func TestGetHistory(t *testing.T) {
	client := newTestClient(t, serveJSON(historyFixture))

	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	points, err := client.GetHistory(context.Background(), "AAPL", from)
	require.NoError(t, err)

	// Pre-window dates are filtered out and the rest sorted ascending.
	require.Len(t, points, 2)
	assert.Equal(t, "2024-03-12", points[0].Date)
	assert.Equal(t, "2024-03-13", points[1].Date)
	assert.Equal(t, 172.40, points[1].Close)
	assert.Equal(t, int64(48000000), points[1].Volume)
}

func TestGetHistory_OutputSize(t *testing.T) {
	var gotSize string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotSize = r.URL.Query().Get("outputsize")
		serveJSON(historyFixture)(w, r)
	})

	_, err := client.GetHistory(context.Background(), "AAPL", time.Now().AddDate(0, -1, 0))
	require.NoError(t, err)
	assert.Equal(t, "compact", gotSize)

	_, err = client.GetHistory(context.Background(), "AAPL", time.Now().AddDate(-2, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, "full", gotSize)
}

func TestGetHistory_EmptySeries(t *testing.T) {
	client := newTestClient(t, serveJSON(`{"Time Series (Daily)": {}}`))

	_, err := client.GetHistory(context.Background(), "NOPE", time.Now())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetHistory_RateLimitInformation(t *testing.T) {
	client := newTestClient(t, serveJSON(`{"Information": "API rate limit reached."}`))

	_, err := client.GetHistory(context.Background(), "AAPL", time.Now())
	assert.ErrorIs(t, err, domain.ErrRateLimited)
}

func TestGetHistory_SkipsMalformedBars(t *testing.T) {
	client := newTestClient(t, serveJSON(`{
		"Time Series (Daily)": {
			"2024-03-13": {"1. open": "171.00", "2. high": "173.00", "3. low": "170.50", "4. close": "172.40", "5. volume": "48000000"},
			"2024-03-12": {"1. open": "oops", "2. high": "171.50", "3. low": "168.00", "4. close": "171.00", "5. volume": "51000000"}
		}
	}`))

	points, err := client.GetHistory(context.Background(), "AAPL", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, "2024-03-13", points[0].Date)
}

func TestToQuote_MissingPrice(t *testing.T) {
	q := globalQuote{"01. symbol": "AAPL"}

	_, err := q.toQuote()
	assert.Error(t, err)
}
