// Package series turns loader output into a validated PriceSeries.
package series

import (
	"fmt"
	"sort"

	"MetalBoard/internal/model"
)

// Normalize copies points into a PriceSeries sorted by time. Duplicate
// timestamps reject the whole series. A High or Low column with no usable
// data is backfilled from Close and stays flagged absent, so strategies
// that need real ranges can refuse the series.
func Normalize(symbol string, points []model.PricePoint, cols model.Columns) (*model.PriceSeries, error) {
	pts := make([]model.PricePoint, len(points))
	copy(pts, points)
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].Time.Before(pts[j].Time) })

	for i := 1; i < len(pts); i++ {
		if pts[i].Time.Equal(pts[i-1].Time) {
			return nil, fmt.Errorf("%s at %s: %w", symbol, pts[i].Time.Format("2006-01-02"), ErrDuplicateTimestamp)
		}
	}

	cols.High = cols.High && anyDefined(pts, func(p model.PricePoint) model.Num { return p.High })
	cols.Low = cols.Low && anyDefined(pts, func(p model.PricePoint) model.Num { return p.Low })
	for i := range pts {
		if !cols.High {
			pts[i].High = pts[i].Close
		}
		if !cols.Low {
			pts[i].Low = pts[i].Close
		}
	}

	return &model.PriceSeries{Symbol: symbol, Points: pts, Columns: cols}, nil
}

// RequireHighLow fails with *MissingColumnError unless the series carried
// real High and Low data.
func RequireHighLow(s *model.PriceSeries) error {
	if !s.Columns.High {
		return &MissingColumnError{Symbol: s.Symbol, Column: "High"}
	}
	if !s.Columns.Low {
		return &MissingColumnError{Symbol: s.Symbol, Column: "Low"}
	}
	return nil
}

func anyDefined(pts []model.PricePoint, field func(model.PricePoint) model.Num) bool {
	for _, p := range pts {
		if field(p).Valid {
			return true
		}
	}
	return false
}
