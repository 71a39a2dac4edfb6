package recorder

import (
	"time"

	"github.com/google/uuid"

	"MetalBoard/internal/model"
	"MetalBoard/internal/strategy"
	"MetalBoard/internal/trade"
)

// RunSnapshot holds all data for one computation of one symbol.
type RunSnapshot struct {
	RunID    string
	Mode     string // "run", "daily", "command"
	Symbol   string
	Strategy string // strategy.Describe output
	Frame    *model.IndicatorFrame
	Book     trade.Book
	At       time.Time
}

// NewRunSnapshot stamps a frame and its trades with a fresh run ID.
func NewRunSnapshot(mode string, f *model.IndicatorFrame, b trade.Book) *RunSnapshot {
	snap := &RunSnapshot{
		RunID: uuid.NewString(),
		Mode:  mode,
		Frame: f,
		Book:  b,
		At:    time.Now().UTC(),
	}
	if f != nil {
		snap.Symbol = f.Symbol
		if f.Strategy != nil {
			snap.Strategy = strategy.Describe(f.Strategy)
		}
	}
	return snap
}

// RunRecord is one row of the runs table.
type RunRecord struct {
	RunID       string
	Timestamp   time.Time
	Mode        string
	Symbol      string
	Strategy    string
	Bars        int
	LastClose   float64
	LastSignal  int
	Events      int
	ClosedCount int
	RealizedPnL string
	WinRate     string
	OpenEntry   float64
	Unrealized  float64
}

// Recorder persists historical data for analysis.
type Recorder interface {
	RecordRun(snap *RunSnapshot) error
	RecentRuns(symbol string, limit int) ([]RunRecord, error)
	Close() error
}
