package model

// Signal is the recommended position on a bar.
type Signal int

const (
	Flat Signal = 0
	Long Signal = 1
)

func (s Signal) String() string {
	if s == Long {
		return "LONG"
	}
	return "FLAT"
}

// PositionChange is the transition between two consecutive signals.
type PositionChange int

const (
	NoChange PositionChange = 0
	Enter    PositionChange = 1
	Exit     PositionChange = -1
)

func (c PositionChange) String() string {
	switch c {
	case Enter:
		return "ENTER"
	case Exit:
		return "EXIT"
	default:
		return "NONE"
	}
}

// StrategyKind names a strategy variant in config and commands.
type StrategyKind string

const (
	KindCrossover StrategyKind = "crossover"
	KindBreakout  StrategyKind = "breakout"
	KindChannel   StrategyKind = "channel"
)

// Strategy is the closed set of strategy selections. Each variant carries
// its own parameters.
type Strategy interface {
	Kind() StrategyKind
	Label() string
	isStrategy()
}

// CrossoverStrategy is the double moving-average rule.
type CrossoverStrategy struct {
	FastWindow int
	SlowWindow int
}

func (CrossoverStrategy) Kind() StrategyKind { return KindCrossover }
func (CrossoverStrategy) Label() string      { return "双均线策略 (Double MA)" }
func (CrossoverStrategy) isStrategy()        {}

// BreakoutStrategy is the escalator channel of two moving averages gated
// by the K-line position ratio. BaseLag is the lag of the current ratio;
// the prior ratio uses BaseLag+1.
type BreakoutStrategy struct {
	FastWindow int
	SlowWindow int
	BaseLag    int
}

func (BreakoutStrategy) Kind() StrategyKind { return KindBreakout }
func (BreakoutStrategy) Label() string      { return "自动电梯策略 (Escalator)" }
func (BreakoutStrategy) isStrategy()        {}

// ChannelStrategy is the classic escalator: close breaking the highest or
// lowest close of the previous Window bars.
type ChannelStrategy struct {
	Window int
}

func (ChannelStrategy) Kind() StrategyKind { return KindChannel }
func (ChannelStrategy) Label() string      { return "经典电梯策略 (Channel)" }
func (ChannelStrategy) isStrategy()        {}
