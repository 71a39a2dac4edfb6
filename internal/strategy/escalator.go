package strategy

import "MetalBoard/internal/model"

// Trigger is the raw per-bar outcome of a channel strategy.
type Trigger int

const (
	NoTrigger Trigger = iota
	BuyTrigger
	SellTrigger
)

// Escalator is the Flat/Long automaton behind the channel strategies. It
// starts Flat, moves to Long only on a buy trigger and back to Flat only on
// a sell trigger; any other bar keeps the last state.
type Escalator struct {
	state model.Signal
}

// Step feeds one bar's trigger and returns the signal for that bar.
func (e *Escalator) Step(t Trigger) model.Signal {
	switch t {
	case BuyTrigger:
		e.state = model.Long
	case SellTrigger:
		e.state = model.Flat
	}
	return e.state
}

func runEscalator(rows []model.FrameRow, trigger func(model.FrameRow) Trigger) {
	var esc Escalator
	for i := range rows {
		rows[i].Signal = esc.Step(trigger(rows[i]))
	}
}
