// Package strategy computes indicator frames for the supported strategies.
package strategy

import (
	"errors"
	"fmt"

	"MetalBoard/internal/calculator"
	"MetalBoard/internal/model"
	"MetalBoard/internal/series"
)

var (
	ErrInvalidWindow   = errors.New("window must be positive")
	ErrInvalidLag      = errors.New("base lag must not be negative")
	ErrUnknownStrategy = errors.New("unknown strategy")
)

// Compute annotates the series for one strategy configuration. The result
// depends only on its inputs. A strategy that needs High/Low fails with
// *series.MissingColumnError before any indicator is computed; an empty
// series yields an empty frame.
func Compute(s *model.PriceSeries, st model.Strategy) (*model.IndicatorFrame, error) {
	if err := validate(st); err != nil {
		return nil, err
	}
	if s == nil || s.Len() == 0 {
		f := &model.IndicatorFrame{Strategy: st, Rows: []model.FrameRow{}}
		if s != nil {
			f.Symbol = s.Symbol
		}
		return f, nil
	}

	frame := &model.IndicatorFrame{
		Symbol:   s.Symbol,
		Strategy: st,
		Rows:     make([]model.FrameRow, len(s.Points)),
	}
	for i, p := range s.Points {
		frame.Rows[i].PricePoint = p
	}
	closes := calculator.Closes(s.Points)

	switch v := st.(type) {
	case model.CrossoverStrategy:
		computeCrossover(frame.Rows, closes, v)
	case model.BreakoutStrategy:
		if err := series.RequireHighLow(s); err != nil {
			return nil, err
		}
		computeBreakout(frame.Rows, s.Points, closes, v)
	case model.ChannelStrategy:
		computeChannel(frame.Rows, closes, v)
	}

	derivePositions(frame.Rows)
	return frame, nil
}

func validate(st model.Strategy) error {
	switch v := st.(type) {
	case model.CrossoverStrategy:
		if v.FastWindow <= 0 || v.SlowWindow <= 0 {
			return fmt.Errorf("crossover %d/%d: %w", v.FastWindow, v.SlowWindow, ErrInvalidWindow)
		}
	case model.BreakoutStrategy:
		if v.FastWindow <= 0 || v.SlowWindow <= 0 {
			return fmt.Errorf("breakout %d/%d: %w", v.FastWindow, v.SlowWindow, ErrInvalidWindow)
		}
		if v.BaseLag < 0 {
			return fmt.Errorf("breakout lag %d: %w", v.BaseLag, ErrInvalidLag)
		}
	case model.ChannelStrategy:
		if v.Window <= 0 {
			return fmt.Errorf("channel %d: %w", v.Window, ErrInvalidWindow)
		}
	default:
		return fmt.Errorf("%T: %w", st, ErrUnknownStrategy)
	}
	return nil
}

// derivePositions sets Change[t] = Signal[t] - Signal[t-1]; the first bar
// never changes.
func derivePositions(rows []model.FrameRow) {
	for i := range rows {
		if i == 0 {
			rows[i].Change = model.NoChange
			continue
		}
		rows[i].Change = model.PositionChange(rows[i].Signal - rows[i-1].Signal)
	}
}
