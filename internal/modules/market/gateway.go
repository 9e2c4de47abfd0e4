package market

import (
	"context"
	"time"

	"github.com/aristath/folio/internal/domain"
)

// Gateway supplies current and historical prices for a symbol. A call may
// fail with domain.ErrNotFound, domain.ErrRateLimited or
// domain.ErrUnavailable; each call's latency is bounded by the
// implementation so one slow symbol cannot stall a whole request.
type Gateway interface {
	GetQuote(ctx context.Context, symbol string) (domain.Quote, error)
	GetHistory(ctx context.Context, symbol string, from time.Time) ([]domain.HistoricalPoint, error)
}
