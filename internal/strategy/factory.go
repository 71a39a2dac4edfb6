package strategy

import (
	"fmt"
	"strings"

	"MetalBoard/internal/model"
)

// Params is the flat parameter set offered to callers. Each strategy reads
// the fields it needs.
type Params struct {
	Fast    int
	Slow    int
	BaseLag int
	Window  int
}

// ParseKind maps a user-supplied name to a strategy kind.
func ParseKind(name string) (model.StrategyKind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "crossover", "double_ma", "ma", "双均线":
		return model.KindCrossover, nil
	case "breakout", "escalator", "电梯":
		return model.KindBreakout, nil
	case "channel", "classic", "donchian":
		return model.KindChannel, nil
	default:
		return "", fmt.Errorf("%q: %w", name, ErrUnknownStrategy)
	}
}

// New builds the strategy variant for kind and checks its parameters.
func New(kind model.StrategyKind, p Params) (model.Strategy, error) {
	var st model.Strategy
	switch kind {
	case model.KindCrossover:
		st = model.CrossoverStrategy{FastWindow: p.Fast, SlowWindow: p.Slow}
	case model.KindBreakout:
		st = model.BreakoutStrategy{FastWindow: p.Fast, SlowWindow: p.Slow, BaseLag: p.BaseLag}
	case model.KindChannel:
		st = model.ChannelStrategy{Window: p.Window}
	default:
		return nil, fmt.Errorf("%q: %w", kind, ErrUnknownStrategy)
	}
	if err := validate(st); err != nil {
		return nil, err
	}
	return st, nil
}

// Describe renders the strategy with its parameters, e.g. "crossover(10,30)".
func Describe(st model.Strategy) string {
	switch v := st.(type) {
	case model.CrossoverStrategy:
		return fmt.Sprintf("crossover(%d,%d)", v.FastWindow, v.SlowWindow)
	case model.BreakoutStrategy:
		return fmt.Sprintf("breakout(%d,%d,lag=%d)", v.FastWindow, v.SlowWindow, v.BaseLag)
	case model.ChannelStrategy:
		return fmt.Sprintf("channel(%d)", v.Window)
	default:
		return "unknown"
	}
}
