package trade

import "github.com/shopspring/decimal"

// Summary aggregates the closed trades of a Book.
type Summary struct {
	Trades int
	Wins   int
	Losses int
	// Unpriced counts closed trades whose exit bar had no close. They are
	// left out of wins, losses and the realized sum.
	Unpriced    int
	RealizedPnL decimal.Decimal
	// WinRate is a percentage of priced trades rounded to one decimal.
	WinRate decimal.Decimal
}

// Summary sums realized price changes without float drift.
func (b Book) Summary() Summary {
	s := Summary{RealizedPnL: decimal.Zero, WinRate: decimal.Zero}
	for _, t := range b.Closed {
		s.Trades++
		if !t.Priced() {
			s.Unpriced++
			continue
		}
		if t.Profitable() {
			s.Wins++
		} else {
			s.Losses++
		}
		s.RealizedPnL = s.RealizedPnL.Add(decimal.NewFromFloat(t.ExitPrice.Val).Sub(decimal.NewFromFloat(t.EntryPrice)))
	}
	if priced := s.Wins + s.Losses; priced > 0 {
		s.WinRate = decimal.NewFromInt(int64(s.Wins)).
			Mul(decimal.NewFromInt(100)).
			Div(decimal.NewFromInt(int64(priced))).
			Round(1)
	}
	return s
}
