package collector

import (
	"context"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"MetalBoard/internal/logger"
	"MetalBoard/internal/model"
	"MetalBoard/internal/series"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price     float64
	DailyData []model.PricePoint
	Err       error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(_ context.Context, _ string, days int) ([]model.PricePoint, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.DailyData != nil {
		return m.DailyData, nil
	}
	return generateMockBars(m.Price, days), nil
}

func generateMockBars(basePrice float64, count int) []model.PricePoint {
	bars := make([]model.PricePoint, count)
	start := time.Now().UTC().Truncate(24*time.Hour).AddDate(0, 0, -count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.PricePoint{
			Time:   start.AddDate(0, 0, i),
			Open:   model.Some(p * 0.999),
			High:   model.Some(p * 1.005),
			Low:    model.Some(p * 0.995),
			Close:  model.Some(p),
			Volume: model.Some(1000000),
		}
	}
	return bars
}

// Collector loads price files and refreshes them from a Fetcher.
type Collector struct {
	Fetcher     Fetcher
	DataDir     string
	HistoryDays int
}

// NewCollector creates a new Collector. fetcher may be nil when only local
// files are read.
func NewCollector(fetcher Fetcher, dataDir string, historyDays int) *Collector {
	return &Collector{Fetcher: fetcher, DataDir: dataDir, HistoryDays: historyDays}
}

// Load finds the symbol's CSV, parses it and normalizes it into a series.
func (c *Collector) Load(symbol string) (*model.PriceSeries, error) {
	path, err := Locate(c.DataDir, symbol)
	if err != nil {
		return nil, err
	}
	pts, cols, err := ReadCSVFile(path)
	if err != nil {
		var mce *series.MissingColumnError
		if errors.As(err, &mce) {
			mce.Symbol = symbol
		}
		return nil, err
	}
	s, err := series.Normalize(symbol, pts, cols)
	if err != nil {
		return nil, err
	}
	s.Source = path
	logger.Debug("loaded %s: %d bars from %s", symbol, s.Len(), path)
	return s, nil
}

// Update fetches the symbol's daily history and rewrites its CSV in the
// data directory. It returns the written path.
func (c *Collector) Update(ctx context.Context, symbol string) (string, error) {
	if c.Fetcher == nil {
		return "", errors.New("no fetcher configured")
	}
	bars, err := c.Fetcher.FetchDailyBars(ctx, symbol, c.HistoryDays)
	if err != nil {
		return "", errors.Wrapf(err, "fetch %s from %s", symbol, c.Fetcher.Name())
	}
	if len(bars) == 0 {
		return "", errors.Errorf("%s: %s returned no bars", symbol, c.Fetcher.Name())
	}
	path := filepath.Join(c.DataDir, FileName(symbol))
	if err := WriteCSVFile(path, bars); err != nil {
		return "", err
	}
	logger.Info("saved %s: %d bars to %s", symbol, len(bars), path)
	return path, nil
}
