package strategy

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"MetalBoard/internal/model"
	"MetalBoard/internal/series"
)

func day(i int) time.Time {
	return time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
}

func closeSeries(t *testing.T, closes ...float64) *model.PriceSeries {
	t.Helper()
	pts := make([]model.PricePoint, len(closes))
	for i, c := range closes {
		pts[i] = model.PricePoint{Time: day(i), Close: model.Some(c)}
	}
	s, err := series.Normalize("TEST", pts, model.Columns{})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	return s
}

// bar is close, high, low.
type bar [3]float64

func barSeries(t *testing.T, bars ...bar) *model.PriceSeries {
	t.Helper()
	pts := make([]model.PricePoint, len(bars))
	for i, b := range bars {
		pts[i] = model.PricePoint{
			Time:  day(i),
			Close: model.Some(b[0]),
			High:  model.Some(b[1]),
			Low:   model.Some(b[2]),
		}
	}
	s, err := series.Normalize("TEST", pts, model.Columns{High: true, Low: true})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	return s
}

func signals(f *model.IndicatorFrame) []model.Signal {
	out := make([]model.Signal, len(f.Rows))
	for i, r := range f.Rows {
		out[i] = r.Signal
	}
	return out
}

func changes(f *model.IndicatorFrame) []model.PositionChange {
	out := make([]model.PositionChange, len(f.Rows))
	for i, r := range f.Rows {
		out[i] = r.Change
	}
	return out
}

func TestCrossover_ConstantPriceStaysFlat(t *testing.T) {
	closes := make([]float64, 10)
	for i := range closes {
		closes[i] = 100
	}
	f, err := Compute(closeSeries(t, closes...), model.CrossoverStrategy{FastWindow: 2, SlowWindow: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, r := range f.Rows {
		if r.FastLine.Valid && r.SlowLine.Valid && (r.FastLine.Val != 100 || r.SlowLine.Val != 100) {
			t.Errorf("index %d: expected both lines at 100, got %v/%v", i, r.FastLine, r.SlowLine)
		}
		if r.Signal != model.Flat {
			t.Errorf("index %d: expected FLAT on a tie, got %v", i, r.Signal)
		}
		if r.Change != model.NoChange {
			t.Errorf("index %d: unexpected change %v", i, r.Change)
		}
	}
}

func TestCrossover_UptrendEntersOnce(t *testing.T) {
	f, err := Compute(closeSeries(t, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10), model.CrossoverStrategy{FastWindow: 2, SlowWindow: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, c := range changes(f) {
		want := model.NoChange
		if i == 2 {
			want = model.Enter
		}
		if c != want {
			t.Errorf("index %d: expected %v, got %v", i, want, c)
		}
	}
	if f.Rows[1].SlowLine.Valid {
		t.Error("slow line must be undefined before three bars")
	}
	if f.Rows[2].FastLine != model.Some(2.5) || f.Rows[2].SlowLine != model.Some(2) {
		t.Errorf("index 2: expected 2.5/2, got %v/%v", f.Rows[2].FastLine, f.Rows[2].SlowLine)
	}
}

func TestCrossover_SignalIsPureComparison(t *testing.T) {
	s := closeSeries(t, 5, 3, 6, 2, 8, 8, 1, 9, 4, 4, 7, 3)
	f, err := Compute(s, model.CrossoverStrategy{FastWindow: 2, SlowWindow: 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, r := range f.Rows {
		want := model.Flat
		if r.FastLine.Valid && r.SlowLine.Valid && r.FastLine.Val > r.SlowLine.Val {
			want = model.Long
		}
		if r.Signal != want {
			t.Errorf("index %d: fast=%v slow=%v expected %v, got %v", i, r.FastLine, r.SlowLine, want, r.Signal)
		}
	}
}

func TestPositionChangeIsSignalDiff(t *testing.T) {
	s := barSeries(t, breakoutBars()...)
	for _, st := range []model.Strategy{
		model.CrossoverStrategy{FastWindow: 2, SlowWindow: 3},
		model.BreakoutStrategy{FastWindow: 2, SlowWindow: 3, BaseLag: 1},
		model.ChannelStrategy{Window: 2},
	} {
		f, err := Compute(s, st)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", Describe(st), err)
		}
		if f.Rows[0].Change != model.NoChange {
			t.Errorf("%s: first change must be NONE", Describe(st))
		}
		for i := 1; i < len(f.Rows); i++ {
			want := model.PositionChange(f.Rows[i].Signal - f.Rows[i-1].Signal)
			if f.Rows[i].Change != want {
				t.Errorf("%s index %d: expected %v, got %v", Describe(st), i, want, f.Rows[i].Change)
			}
		}
	}
}

func TestCompute_Deterministic(t *testing.T) {
	s := barSeries(t, breakoutBars()...)
	for _, st := range []model.Strategy{
		model.CrossoverStrategy{FastWindow: 2, SlowWindow: 3},
		model.BreakoutStrategy{FastWindow: 2, SlowWindow: 3, BaseLag: 1},
		model.ChannelStrategy{Window: 3},
	} {
		a, err := Compute(s, st)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		b, err := Compute(s, st)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(a, b) {
			t.Errorf("%s: frames differ between identical calls", Describe(st))
		}
	}
}

// breakoutBars has one buy trigger at index 5 and one sell trigger at
// index 10 for fast=2, slow=3, lag=1.
func breakoutBars() []bar {
	return []bar{
		{10, 11, 9},
		{10, 11, 9},
		{10, 11, 9},
		{9.2, 11, 9},
		{11, 11, 9},
		{12, 13, 11},
		{12, 13, 11},
		{12, 13, 11},
		{12.9, 13, 11},
		{11.1, 13, 11},
		{10, 11, 9},
		{10, 11, 9},
	}
}

func TestBreakout_TriggersAndForwardFill(t *testing.T) {
	f, err := Compute(barSeries(t, breakoutBars()...), model.BreakoutStrategy{FastWindow: 2, SlowWindow: 3, BaseLag: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []model.Signal{0, 0, 0, 0, 0, 1, 1, 1, 1, 1, 0, 0}
	if got := signals(f); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected signals %v, got %v", want, got)
	}
	if f.Rows[5].Change != model.Enter || f.Rows[10].Change != model.Exit {
		t.Errorf("expected ENTER at 5 and EXIT at 10, got %v/%v", f.Rows[5].Change, f.Rows[10].Change)
	}
	r := f.Rows[5]
	if !r.RatioPrior.LeF(0.25) || !r.RatioCurrent.GtF(0.75) {
		t.Errorf("index 5: unexpected ratios prior=%v current=%v", r.RatioPrior, r.RatioCurrent)
	}
	if r.UpperBand != model.Some(11.5) {
		t.Errorf("index 5: expected upper band 11.5, got %v", r.UpperBand)
	}
}

func TestBreakout_SignalConstantBetweenTriggers(t *testing.T) {
	f, err := Compute(barSeries(t, breakoutBars()...), model.BreakoutStrategy{FastWindow: 2, SlowWindow: 3, BaseLag: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	last := model.Flat
	for i, r := range f.Rows {
		switch breakoutTrigger(r) {
		case BuyTrigger:
			last = model.Long
		case SellTrigger:
			last = model.Flat
		}
		if r.Signal != last {
			t.Errorf("index %d: expected %v carried from last trigger, got %v", i, last, r.Signal)
		}
	}
}

func TestBreakout_ZeroWidthBarsNeverTrigger(t *testing.T) {
	bars := make([]bar, 20)
	for i := range bars {
		c := float64(100 + i*i%7*5 - i)
		bars[i] = bar{c, c, c}
	}
	f, err := Compute(barSeries(t, bars...), model.BreakoutStrategy{FastWindow: 2, SlowWindow: 3, BaseLag: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, r := range f.Rows {
		if r.RatioCurrent.Valid || r.RatioPrior.Valid {
			t.Errorf("index %d: expected undefined ratios on flat bars", i)
		}
		if r.Signal != model.Flat {
			t.Errorf("index %d: expected FLAT, got %v", i, r.Signal)
		}
	}
}

func TestBreakout_BaseLagShiftsRatios(t *testing.T) {
	s := barSeries(t, breakoutBars()...)
	f, err := Compute(s, model.BreakoutStrategy{FastWindow: 2, SlowWindow: 3, BaseLag: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Rows[1].RatioCurrent.Valid || f.Rows[2].RatioPrior.Valid {
		t.Error("expected undefined ratios before enough history")
	}
	if f.Rows[6].RatioPrior != f.Rows[5].RatioCurrent {
		t.Errorf("prior at 6 and current at 5 both read bar 3: %v vs %v", f.Rows[6].RatioPrior, f.Rows[5].RatioCurrent)
	}
	if !f.Rows[6].RatioCurrent.GtF(0.75) {
		t.Errorf("current at 6 reads bar 4, expected ratio 1, got %v", f.Rows[6].RatioCurrent)
	}
}

func TestBreakout_MissingHighLow(t *testing.T) {
	f, err := Compute(closeSeries(t, 1, 2, 3), model.BreakoutStrategy{FastWindow: 2, SlowWindow: 3, BaseLag: 1})
	var mce *series.MissingColumnError
	if !errors.As(err, &mce) {
		t.Fatalf("expected MissingColumnError, got %v", err)
	}
	if f != nil {
		t.Error("no partial frame may be returned")
	}
}

func TestChannel_ClassicEscalator(t *testing.T) {
	f, err := Compute(closeSeries(t, 1, 2, 3, 2, 1, 0.5), model.ChannelStrategy{Window: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []model.Signal{0, 0, 1, 1, 0, 0}
	if got := signals(f); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if f.Rows[2].UpperBand != model.Some(2) || f.Rows[2].LowerBand != model.Some(1) {
		t.Errorf("index 2: expected band 2/1, got %v/%v", f.Rows[2].UpperBand, f.Rows[2].LowerBand)
	}
}

func TestCompute_EmptySeries(t *testing.T) {
	s := closeSeries(t)
	for _, st := range []model.Strategy{
		model.CrossoverStrategy{FastWindow: 2, SlowWindow: 3},
		model.BreakoutStrategy{FastWindow: 2, SlowWindow: 3, BaseLag: 1},
	} {
		f, err := Compute(s, st)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", Describe(st), err)
		}
		if f.Len() != 0 {
			t.Errorf("%s: expected empty frame, got %d rows", Describe(st), f.Len())
		}
	}
}

func TestCompute_InvalidParams(t *testing.T) {
	s := closeSeries(t, 1, 2, 3)
	tests := []struct {
		st   model.Strategy
		want error
	}{
		{model.CrossoverStrategy{FastWindow: 0, SlowWindow: 3}, ErrInvalidWindow},
		{model.BreakoutStrategy{FastWindow: 2, SlowWindow: 3, BaseLag: -1}, ErrInvalidLag},
		{model.ChannelStrategy{Window: -2}, ErrInvalidWindow},
		{nil, ErrUnknownStrategy},
	}
	for _, tt := range tests {
		if _, err := Compute(s, tt.st); !errors.Is(err, tt.want) {
			t.Errorf("%v: expected %v, got %v", tt.st, tt.want, err)
		}
	}
}

func TestEscalator_Automaton(t *testing.T) {
	var e Escalator
	steps := []struct {
		in   Trigger
		want model.Signal
	}{
		{NoTrigger, model.Flat},
		{SellTrigger, model.Flat},
		{BuyTrigger, model.Long},
		{NoTrigger, model.Long},
		{BuyTrigger, model.Long},
		{SellTrigger, model.Flat},
		{NoTrigger, model.Flat},
	}
	for i, s := range steps {
		if got := e.Step(s.in); got != s.want {
			t.Errorf("step %d: expected %v, got %v", i, s.want, got)
		}
	}
}

func TestFactory(t *testing.T) {
	kind, err := ParseKind("Escalator")
	if err != nil || kind != model.KindBreakout {
		t.Fatalf("expected breakout, got %v (%v)", kind, err)
	}
	st, err := New(kind, Params{Fast: 10, Slow: 30, BaseLag: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st != (model.BreakoutStrategy{FastWindow: 10, SlowWindow: 30, BaseLag: 1}) {
		t.Errorf("unexpected strategy %#v", st)
	}
	if _, err := New(model.KindChannel, Params{}); !errors.Is(err, ErrInvalidWindow) {
		t.Errorf("expected ErrInvalidWindow, got %v", err)
	}
	if _, err := ParseKind("rsi"); !errors.Is(err, ErrUnknownStrategy) {
		t.Errorf("expected ErrUnknownStrategy, got %v", err)
	}
}
