package model

import (
	"fmt"
	"time"
)

// Num is an optional number. The zero value is undefined.
type Num struct {
	Val   float64
	Valid bool
}

// Some wraps a defined value.
func Some(v float64) Num { return Num{Val: v, Valid: true} }

// Undefined is the missing value.
var Undefined = Num{}

// Gt reports n > o. False when either side is undefined.
func (n Num) Gt(o Num) bool { return n.Valid && o.Valid && n.Val > o.Val }

// Lt reports n < o. False when either side is undefined.
func (n Num) Lt(o Num) bool { return n.Valid && o.Valid && n.Val < o.Val }

// GtF reports n > v for a constant threshold.
func (n Num) GtF(v float64) bool { return n.Valid && n.Val > v }

// GeF reports n >= v for a constant threshold.
func (n Num) GeF(v float64) bool { return n.Valid && n.Val >= v }

// LtF reports n < v for a constant threshold.
func (n Num) LtF(v float64) bool { return n.Valid && n.Val < v }

// LeF reports n <= v for a constant threshold.
func (n Num) LeF(v float64) bool { return n.Valid && n.Val <= v }

func (n Num) String() string {
	if !n.Valid {
		return "-"
	}
	return fmt.Sprintf("%.2f", n.Val)
}

// PricePoint is a single daily bar. Any field but Time may be undefined.
type PricePoint struct {
	Time   time.Time
	Open   Num
	High   Num
	Low    Num
	Close  Num
	Volume Num
}

// Columns records which optional columns the source actually carried.
// Close is mandatory and therefore not listed.
type Columns struct {
	Open   bool
	High   bool
	Low    bool
	Volume bool
}

// PriceSeries is an ordered series with strictly increasing timestamps.
type PriceSeries struct {
	Symbol  string
	Source  string
	Points  []PricePoint
	Columns Columns
}

// Len returns the number of bars.
func (s *PriceSeries) Len() int { return len(s.Points) }

// LastClose returns the last defined close and its bar time.
func (s *PriceSeries) LastClose() (time.Time, Num) {
	for i := len(s.Points) - 1; i >= 0; i-- {
		if s.Points[i].Close.Valid {
			return s.Points[i].Time, s.Points[i].Close
		}
	}
	return time.Time{}, Undefined
}
