// Package trade pairs entry and exit events of an indicator frame.
package trade

import "MetalBoard/internal/model"

// Book is the pairing result for one frame.
type Book struct {
	// Closed holds matched trades in entry order.
	Closed []model.Trade
	// Open is the most recent entry with no later exit, or nil.
	Open *model.OpenTrade
	// Stale holds older unmatched entries. A frame built by the engine never
	// produces any.
	Stale []model.Trade
}

// Pair walks the frame chronologically and closes every entry at the first
// strictly later exit that no earlier entry has claimed.
func Pair(f *model.IndicatorFrame) Book {
	var book Book
	if f == nil {
		return book
	}
	rows := f.Rows
	used := make([]bool, len(rows))
	var unmatched []model.Trade

	for i, r := range rows {
		if r.Change != model.Enter {
			continue
		}
		t := model.Trade{EntryTime: r.Time, EntryPrice: r.Close.Val}
		j := nextExit(rows, i, used)
		if j < 0 {
			unmatched = append(unmatched, t)
			continue
		}
		used[j] = true
		t.ExitTime = rows[j].Time
		t.ExitPrice = rows[j].Close
		t.Closed = true
		book.Closed = append(book.Closed, t)
	}

	if n := len(unmatched); n > 0 {
		book.Open = markOpen(unmatched[n-1], rows)
		book.Stale = unmatched[:n-1]
	}
	return book
}

func nextExit(rows []model.FrameRow, from int, used []bool) int {
	entry := rows[from].Time
	for j := from + 1; j < len(rows); j++ {
		if rows[j].Change == model.Exit && !used[j] && rows[j].Time.After(entry) {
			return j
		}
	}
	return -1
}

// markOpen values the live position at the last defined close.
func markOpen(t model.Trade, rows []model.FrameRow) *model.OpenTrade {
	open := &model.OpenTrade{Trade: t}
	for i := len(rows) - 1; i >= 0; i-- {
		if rows[i].Close.Valid {
			open.MarkTime = rows[i].Time
			open.MarkPrice = rows[i].Close.Val
			break
		}
	}
	open.Unrealized = open.MarkPrice - t.EntryPrice
	if t.EntryPrice != 0 {
		open.UnrealizedPct = open.Unrealized / t.EntryPrice * 100
	}
	return open
}
