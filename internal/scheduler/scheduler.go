package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"

	"MetalBoard/internal/collector"
	"MetalBoard/internal/config"
	"MetalBoard/internal/logger"
	"MetalBoard/internal/model"
	"MetalBoard/internal/notifier"
	"MetalBoard/internal/recorder"
	"MetalBoard/internal/series"
	"MetalBoard/internal/state"
	"MetalBoard/internal/strategy"
	"MetalBoard/internal/trade"
)

// Scheduler manages the daily refresh task and serves bot commands.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector
	Notifier  notifier.Notifier
	Recorder  recorder.Recorder
	State     *state.Manager
	Config    *config.Config
	Ctx       context.Context
}

// Result is one computed symbol.
type Result struct {
	Frame *model.IndicatorFrame
	Book  trade.Book
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, cfg *config.Config, col *collector.Collector, n notifier.Notifier, rec recorder.Recorder, sm *state.Manager) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Collector: col,
		Notifier:  n,
		Recorder:  rec,
		State:     sm,
		Config:    cfg,
		Ctx:       ctx,
	}
}

// RegisterAll registers the daily task.
func (s *Scheduler) RegisterAll(dailyCron string) error {
	if _, err := s.Cron.AddFunc(dailyCron, s.dailyTask); err != nil {
		return errors.Wrap(err, "register daily task")
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	logger.Info("scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	logger.Info("scheduler stopped")
}

// RunDailyNow executes the daily task immediately.
func (s *Scheduler) RunDailyNow() {
	s.dailyTask()
}

// Analyze loads symbol, computes st over it, pairs the trades and records
// the run. A *series.MissingColumnError means st cannot run on this data.
func (s *Scheduler) Analyze(symbol string, st model.Strategy, mode string) (*Result, error) {
	ser, err := s.Collector.Load(symbol)
	if err != nil {
		return nil, err
	}
	frame, err := strategy.Compute(ser, st)
	if err != nil {
		return nil, err
	}
	res := &Result{Frame: frame, Book: trade.Pair(frame)}
	if s.Recorder != nil {
		if err := s.Recorder.RecordRun(recorder.NewRunSnapshot(mode, frame, res.Book)); err != nil {
			logger.Error("record run %s: %v", symbol, err)
		}
	}
	return res, nil
}

func (s *Scheduler) dailyTask() {
	logger.Info("running daily task")
	st, err := s.Config.DefaultStrategy()
	if err != nil {
		logger.Error("daily strategy: %v", err)
		return
	}

	for _, symbol := range s.Config.Data.Symbols {
		if s.Ctx.Err() != nil {
			return
		}
		if s.Collector.Fetcher != nil {
			if _, err := s.Collector.Update(s.Ctx, symbol); err != nil {
				// keep going with whatever file is already on disk
				logger.Warn("daily update %s: %v", symbol, err)
			}
		}

		res, err := s.Analyze(symbol, st, "daily")
		if err != nil {
			var mce *series.MissingColumnError
			if errors.As(err, &mce) {
				s.trySend(notifier.FormatFailure(symbol, st, err))
			} else {
				logger.Error("daily analyze %s: %v", symbol, err)
			}
			continue
		}

		last, ok := res.Frame.Last()
		if !ok || last.Change == model.NoChange {
			continue
		}
		key := state.Key(symbol, strategy.Describe(st))
		if s.State.ShouldAlert(key, last.Time, last.Change, last.Close.Val) {
			s.trySend(notifier.FormatAlert(res.Frame, last))
		}
	}
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.HelpText
	}
	name := fields[0]
	if i := strings.Index(name, "@"); i > 0 {
		name = name[:i]
	}

	switch name {
	case "/signal", "查看信号":
		return s.signalCommand(fields[1:])
	case "/symbols", "查看品种":
		return notifier.FormatSymbols(s.Config.Data.Symbols)
	case "/update":
		return s.updateCommand(fields[1:])
	case "/alerts", "查看提醒":
		return s.alertsCommand()
	default:
		return notifier.HelpText
	}
}

func (s *Scheduler) signalCommand(args []string) string {
	if len(args) == 0 {
		return "用法: /signal &lt;品种&gt; [策略] [参数1] [参数2]"
	}
	symbol := args[0]
	st, err := s.parseStrategy(args[1:])
	if err != nil {
		return fmt.Sprintf("❌ 参数错误: %v", err)
	}

	res, err := s.Analyze(symbol, st, "command")
	if err != nil {
		var mce *series.MissingColumnError
		if errors.As(err, &mce) {
			return notifier.FormatFailure(symbol, st, err)
		}
		if errors.Is(err, collector.ErrNotFound) {
			return fmt.Sprintf("❌ 未找到 %s 的数据文件", symbol)
		}
		logger.Error("signal %s: %v", symbol, err)
		return fmt.Sprintf("❌ 计算失败: %v", err)
	}
	return notifier.FormatReport(res.Frame, res.Book)
}

func (s *Scheduler) alertsCommand() string {
	st, err := s.Config.DefaultStrategy()
	if err != nil {
		return fmt.Sprintf("❌ 参数错误: %v", err)
	}
	desc := strategy.Describe(st)
	return notifier.FormatLastAlerts(s.Config.Data.Symbols, func(symbol string) (model.PositionChange, time.Time, float64, bool) {
		a, ok := s.State.Last(state.Key(symbol, desc))
		return model.PositionChange(a.Change), a.Time, a.Price, ok
	})
}

func (s *Scheduler) updateCommand(args []string) string {
	if s.Collector.Fetcher == nil {
		return "❌ 未配置数据源"
	}
	symbols := s.Config.Data.Symbols
	if len(args) > 0 {
		symbols = args
	}
	var b strings.Builder
	for _, symbol := range symbols {
		if _, err := s.Collector.Update(s.Ctx, symbol); err != nil {
			logger.Warn("update %s: %v", symbol, err)
			b.WriteString(fmt.Sprintf("❌ %s: %v\n", symbol, err))
			continue
		}
		b.WriteString(fmt.Sprintf("✅ %s 已更新\n", symbol))
	}
	return b.String()
}

// parseStrategy reads "[kind] [a] [b] [lag]" on top of the configured
// defaults. For channel, a is the window.
func (s *Scheduler) parseStrategy(args []string) (model.Strategy, error) {
	kindName := s.Config.Strategy.Default
	if len(args) > 0 {
		kindName, args = args[0], args[1:]
	}
	kind, err := strategy.ParseKind(kindName)
	if err != nil {
		return nil, err
	}
	nums := make([]int, len(args))
	for i, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil {
			return nil, errors.Errorf("%q is not an integer", a)
		}
		nums[i] = n
	}

	p := s.Config.Params(kind)
	if kind == model.KindChannel {
		if len(nums) > 0 {
			p.Window = nums[0]
		}
	} else {
		if len(nums) > 0 {
			p.Fast = nums[0]
		}
		if len(nums) > 1 {
			p.Slow = nums[1]
		}
		if kind == model.KindBreakout && len(nums) > 2 {
			p.BaseLag = nums[2]
		}
	}
	return strategy.New(kind, p)
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		logger.Error("send notification: %v", err)
	}
}
