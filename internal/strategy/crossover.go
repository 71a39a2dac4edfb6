package strategy

import (
	"MetalBoard/internal/calculator"
	"MetalBoard/internal/model"
)

// computeCrossover is Long exactly on the bars where the fast average is
// strictly above the slow one. No state carries between bars.
func computeCrossover(rows []model.FrameRow, closes []model.Num, p model.CrossoverStrategy) {
	fast := calculator.RollingSMA(closes, p.FastWindow)
	slow := calculator.RollingSMA(closes, p.SlowWindow)
	for i := range rows {
		rows[i].FastLine = fast[i]
		rows[i].SlowLine = slow[i]
		if fast[i].Gt(slow[i]) {
			rows[i].Signal = model.Long
		} else {
			rows[i].Signal = model.Flat
		}
	}
}
