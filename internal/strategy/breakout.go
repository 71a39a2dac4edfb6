package strategy

import (
	"MetalBoard/internal/calculator"
	"MetalBoard/internal/model"
)

// K-line position ratio thresholds.
const (
	ratioLow  = 0.25
	ratioHigh = 0.75
)

func computeBreakout(rows []model.FrameRow, points []model.PricePoint, closes []model.Num, p model.BreakoutStrategy) {
	fast := calculator.RollingSMA(closes, p.FastWindow)
	slow := calculator.RollingSMA(closes, p.SlowWindow)
	for i := range rows {
		rows[i].FastLine = fast[i]
		rows[i].SlowLine = slow[i]
		if fast[i].Valid && slow[i].Valid {
			rows[i].UpperBand = model.Some(max(fast[i].Val, slow[i].Val))
			rows[i].LowerBand = model.Some(min(fast[i].Val, slow[i].Val))
		}
		rows[i].RatioCurrent = calculator.LaggedRatio(points, i, p.BaseLag)
		rows[i].RatioPrior = calculator.LaggedRatio(points, i, p.BaseLag+1)
	}
	runEscalator(rows, breakoutTrigger)
}

// breakoutTrigger buys a close above the band after a bar that closed near
// its low followed by one that closed near its high, and sells the mirror
// image. Undefined inputs never fire.
func breakoutTrigger(r model.FrameRow) Trigger {
	switch {
	case r.Close.Gt(r.UpperBand) && r.RatioPrior.LeF(ratioLow) && r.RatioCurrent.GtF(ratioHigh):
		return BuyTrigger
	case r.Close.Lt(r.LowerBand) && r.RatioPrior.GeF(ratioHigh) && r.RatioCurrent.LtF(ratioLow):
		return SellTrigger
	default:
		return NoTrigger
	}
}
