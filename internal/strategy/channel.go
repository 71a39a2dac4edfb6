package strategy

import (
	"MetalBoard/internal/calculator"
	"MetalBoard/internal/model"
)

// computeChannel bands on the highest and lowest close of the previous
// Window bars; the current bar is excluded.
func computeChannel(rows []model.FrameRow, closes []model.Num, p model.ChannelStrategy) {
	upper := calculator.RollingMax(closes, p.Window, 1)
	lower := calculator.RollingMin(closes, p.Window, 1)
	for i := range rows {
		rows[i].UpperBand = upper[i]
		rows[i].LowerBand = lower[i]
		rows[i].FastLine = upper[i]
		rows[i].SlowLine = lower[i]
	}
	runEscalator(rows, func(r model.FrameRow) Trigger {
		switch {
		case r.Close.Gt(r.UpperBand):
			return BuyTrigger
		case r.Close.Lt(r.LowerBand):
			return SellTrigger
		default:
			return NoTrigger
		}
	})
}
