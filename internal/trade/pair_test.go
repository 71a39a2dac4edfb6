package trade

import (
	"testing"
	"time"

	"MetalBoard/internal/model"
	"MetalBoard/internal/strategy"
)

func day(i int) time.Time {
	return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
}

// frameOf builds a frame with close = index+1 and the given changes.
func frameOf(changes ...model.PositionChange) *model.IndicatorFrame {
	f := &model.IndicatorFrame{Symbol: "TEST"}
	for i, c := range changes {
		f.Rows = append(f.Rows, model.FrameRow{
			PricePoint: model.PricePoint{Time: day(i), Close: model.Some(float64(i + 1))},
			Change:     c,
		})
	}
	return f
}

func TestPair_EntryMatchedAndTrailingOpen(t *testing.T) {
	// signals Flat, Long, Long, Flat, Long
	f := frameOf(model.NoChange, model.Enter, model.NoChange, model.Exit, model.Enter)
	b := Pair(f)
	if len(b.Closed) != 1 {
		t.Fatalf("expected 1 closed trade, got %d", len(b.Closed))
	}
	tr := b.Closed[0]
	if !tr.EntryTime.Equal(day(1)) || !tr.ExitTime.Equal(day(3)) {
		t.Errorf("expected idx1 -> idx3, got %v -> %v", tr.EntryTime, tr.ExitTime)
	}
	if tr.EntryPrice != 2 || tr.ExitPrice != model.Some(4) || !tr.Profitable() {
		t.Errorf("unexpected trade %+v", tr)
	}
	if b.Open == nil || !b.Open.EntryTime.Equal(day(4)) {
		t.Fatalf("expected open trade at idx4, got %+v", b.Open)
	}
	if b.Open.Closed {
		t.Error("open trade must not be closed")
	}
	if len(b.Stale) != 0 {
		t.Errorf("expected no stale entries, got %d", len(b.Stale))
	}
}

func TestPair_OpenTradeMarkedAtLastClose(t *testing.T) {
	f := frameOf(model.NoChange, model.Enter, model.NoChange, model.NoChange)
	f.Rows[3].Close = model.Undefined
	b := Pair(f)
	if b.Open == nil {
		t.Fatal("expected open trade")
	}
	if b.Open.MarkPrice != 3 || !b.Open.MarkTime.Equal(day(2)) {
		t.Errorf("expected mark at last defined close 3, got %v at %v", b.Open.MarkPrice, b.Open.MarkTime)
	}
	if b.Open.Unrealized != 1 || b.Open.UnrealizedPct != 50 {
		t.Errorf("expected +1 / +50%%, got %v / %v", b.Open.Unrealized, b.Open.UnrealizedPct)
	}
}

func TestPair_NoExitReusedInMalformedFrame(t *testing.T) {
	f := frameOf(model.Enter, model.Enter, model.Enter, model.Exit, model.NoChange, model.Exit)
	b := Pair(f)
	if len(b.Closed) != 2 {
		t.Fatalf("expected 2 closed trades, got %d", len(b.Closed))
	}
	if b.Closed[0].ExitTime.Equal(b.Closed[1].ExitTime) {
		t.Error("an exit was used by two entries")
	}
	if !b.Closed[0].ExitTime.Equal(day(3)) || !b.Closed[1].ExitTime.Equal(day(5)) {
		t.Errorf("unexpected exits %v, %v", b.Closed[0].ExitTime, b.Closed[1].ExitTime)
	}
	if b.Open == nil || !b.Open.EntryTime.Equal(day(2)) {
		t.Fatalf("expected idx2 open, got %+v", b.Open)
	}
}

func TestPair_StaleEntries(t *testing.T) {
	f := frameOf(model.Enter, model.Exit, model.Enter, model.Enter, model.Enter)
	b := Pair(f)
	if len(b.Closed) != 1 {
		t.Fatalf("expected 1 closed trade, got %d", len(b.Closed))
	}
	if b.Open == nil || !b.Open.EntryTime.Equal(day(4)) {
		t.Fatalf("expected most recent entry open, got %+v", b.Open)
	}
	if len(b.Stale) != 2 {
		t.Errorf("expected 2 stale entries, got %d", len(b.Stale))
	}
}

func TestPair_ExitBeforeEntryIgnored(t *testing.T) {
	f := frameOf(model.Exit, model.Enter)
	b := Pair(f)
	if len(b.Closed) != 0 || b.Open == nil {
		t.Errorf("expected only an open trade, got %+v", b)
	}
}

func TestPair_EveryEnterAccountedFor(t *testing.T) {
	closes := []float64{5, 4, 6, 7, 3, 2, 8, 9, 9, 1, 4, 6, 7, 2, 3, 8}
	pts := make([]model.PricePoint, len(closes))
	for i, c := range closes {
		pts[i] = model.PricePoint{Time: day(i), Close: model.Some(c)}
	}
	f, err := strategy.Compute(&model.PriceSeries{Symbol: "TEST", Points: pts}, model.CrossoverStrategy{FastWindow: 2, SlowWindow: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	enters := 0
	for _, r := range f.Rows {
		if r.Change == model.Enter {
			enters++
		}
	}
	b := Pair(f)
	got := len(b.Closed) + len(b.Stale)
	if b.Open != nil {
		got++
	}
	if got != enters {
		t.Errorf("expected %d entries accounted for, got %d", enters, got)
	}
	if len(b.Stale) != 0 {
		t.Errorf("engine frames must not leave stale entries, got %d", len(b.Stale))
	}
}

func TestPair_NoTrades(t *testing.T) {
	b := Pair(frameOf(model.NoChange, model.NoChange))
	if len(b.Closed) != 0 || b.Open != nil {
		t.Errorf("expected empty book, got %+v", b)
	}
	if Pair(nil).Open != nil {
		t.Error("nil frame must give an empty book")
	}
}

func TestSummary(t *testing.T) {
	b := Book{Closed: []model.Trade{
		{EntryPrice: 0.1, ExitPrice: model.Some(0.3), Closed: true},
		{EntryPrice: 0.3, ExitPrice: model.Some(0.2), Closed: true},
		{EntryPrice: 1, ExitPrice: model.Some(1), Closed: true},
	}}
	s := b.Summary()
	if s.Trades != 3 || s.Wins != 2 || s.Losses != 1 {
		t.Errorf("unexpected counts %+v", s)
	}
	if s.RealizedPnL.String() != "0.1" {
		t.Errorf("expected realized 0.1, got %s", s.RealizedPnL)
	}
	if s.WinRate.String() != "66.7" {
		t.Errorf("expected win rate 66.7, got %s", s.WinRate)
	}
	if !(Book{}).Summary().RealizedPnL.IsZero() {
		t.Error("empty book must sum to zero")
	}
}

func TestPair_UndefinedExitCloseStaysUndefined(t *testing.T) {
	closes := []model.Num{
		model.Some(1), model.Some(2), model.Some(3), model.Some(4),
		model.Some(5), model.Undefined, model.Some(7), model.Some(8),
	}
	pts := make([]model.PricePoint, len(closes))
	for i, c := range closes {
		pts[i] = model.PricePoint{Time: day(i), Close: c}
	}
	f, err := strategy.Compute(&model.PriceSeries{Symbol: "TEST", Points: pts}, model.CrossoverStrategy{FastWindow: 2, SlowWindow: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b := Pair(f)
	if len(b.Closed) == 0 {
		t.Fatal("expected a closed trade")
	}
	tr := b.Closed[0]
	if !tr.ExitTime.Equal(day(5)) {
		t.Fatalf("expected exit on the undefined bar, got %v", tr.ExitTime)
	}
	if tr.ExitPrice.Valid {
		t.Errorf("exit price must be undefined, got %v", tr.ExitPrice)
	}
	if tr.PnL().Valid || tr.Profitable() {
		t.Errorf("unpriced trade has pnl %v, profitable %v", tr.PnL(), tr.Profitable())
	}

	s := Book{Closed: []model.Trade{tr}}.Summary()
	if s.Trades != 1 || s.Unpriced != 1 || s.Wins != 0 || s.Losses != 0 {
		t.Errorf("unexpected counts %+v", s)
	}
	if !s.RealizedPnL.IsZero() || !s.WinRate.IsZero() {
		t.Errorf("unpriced trade leaked into sums: pnl %s win rate %s", s.RealizedPnL, s.WinRate)
	}
}
