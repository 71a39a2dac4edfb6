package calculator

import (
	"errors"

	"MetalBoard/internal/model"
)

// CalculateSMA computes the simple moving average of the given prices over the specified period.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// RollingSMA returns the trailing simple moving average at every index.
// A point is undefined while fewer than period values are available or when
// any value inside its window is undefined. Each window is summed afresh so
// equal inputs always give equal means.
func RollingSMA(values []model.Num, period int) []model.Num {
	out := make([]model.Num, len(values))
	if period <= 0 {
		return out
	}
	buf := make([]float64, 0, period)
	for i := range values {
		if i+1 < period {
			continue
		}
		buf = buf[:0]
		for j := i + 1 - period; j <= i; j++ {
			if !values[j].Valid {
				break
			}
			buf = append(buf, values[j].Val)
		}
		if len(buf) < period {
			continue
		}
		if ma, err := CalculateSMA(buf, period); err == nil {
			out[i] = model.Some(ma)
		}
	}
	return out
}

// Closes extracts the close column.
func Closes(points []model.PricePoint) []model.Num {
	closes := make([]model.Num, len(points))
	for i, p := range points {
		closes[i] = p.Close
	}
	return closes
}
