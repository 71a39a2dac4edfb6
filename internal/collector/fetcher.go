package collector

import (
	"context"

	"MetalBoard/internal/model"
)

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.PricePoint, error)
	Name() string
}
