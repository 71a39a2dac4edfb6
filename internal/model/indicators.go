package model

import "time"

// FrameRow is one bar of an IndicatorFrame.
type FrameRow struct {
	PricePoint

	FastLine Num
	SlowLine Num
	Signal   Signal
	Change   PositionChange

	// breakout and channel only
	UpperBand    Num
	LowerBand    Num
	RatioCurrent Num
	RatioPrior   Num
}

// IndicatorFrame is a PriceSeries annotated for one strategy configuration.
// It is never mutated after the engine returns it.
type IndicatorFrame struct {
	Symbol   string
	Strategy Strategy
	Rows     []FrameRow
}

// Len returns the number of rows.
func (f *IndicatorFrame) Len() int { return len(f.Rows) }

// Last returns the last row, or false for an empty frame.
func (f *IndicatorFrame) Last() (FrameRow, bool) {
	if len(f.Rows) == 0 {
		return FrameRow{}, false
	}
	return f.Rows[len(f.Rows)-1], true
}

// Events returns the rows where the position changed, oldest first.
func (f *IndicatorFrame) Events() []FrameRow {
	var out []FrameRow
	for _, r := range f.Rows {
		if r.Change != NoChange {
			out = append(out, r)
		}
	}
	return out
}

// Trade is an entry with its matching exit, if any. ExitPrice is undefined
// while the trade is open or when the exit bar has no close.
type Trade struct {
	EntryTime  time.Time
	EntryPrice float64
	ExitTime   time.Time
	ExitPrice  Num
	Closed     bool
}

// Priced reports whether the trade is closed at a defined price.
func (t Trade) Priced() bool { return t.Closed && t.ExitPrice.Valid }

// Profitable reports whether a priced trade exited at or above its entry.
func (t Trade) Profitable() bool { return t.Priced() && t.ExitPrice.Val >= t.EntryPrice }

// PnL returns the realized price change, undefined unless the trade is priced.
func (t Trade) PnL() Num {
	if !t.Priced() {
		return Undefined
	}
	return Some(t.ExitPrice.Val - t.EntryPrice)
}

// OpenTrade is the live position valued at the last bar's close.
type OpenTrade struct {
	Trade
	MarkTime      time.Time
	MarkPrice     float64
	Unrealized    float64
	UnrealizedPct float64
}
