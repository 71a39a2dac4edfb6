package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"

	"MetalBoard/internal/collector"
	"MetalBoard/internal/config"
	"MetalBoard/internal/logger"
	"MetalBoard/internal/model"
	"MetalBoard/internal/notifier"
	"MetalBoard/internal/recorder"
	"MetalBoard/internal/scheduler"
	"MetalBoard/internal/series"
	"MetalBoard/internal/state"
	"MetalBoard/internal/strategy"
)

type options struct {
	mode     string
	symbol   string
	strategy string
	fast     int
	slow     int
	lag      int
	window   int
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("board", flag.ContinueOnError)
	fs.StringVar(&o.mode, "mode", "run", "run | update | serve")
	fs.StringVar(&o.symbol, "symbol", "", "symbol to compute (default: all configured)")
	fs.StringVar(&o.strategy, "strategy", "", "crossover | breakout | channel (default: config)")
	fs.IntVar(&o.fast, "fast", 0, "fast window")
	fs.IntVar(&o.slow, "slow", 0, "slow window")
	fs.IntVar(&o.lag, "lag", -1, "breakout base lag")
	fs.IntVar(&o.window, "window", 0, "channel window")
	err := fs.Parse(args)
	return o, err
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	opts, err := parseFlags(args)
	if err != nil {
		return 2
	}

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return 1
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.JSON); err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		return 1
	}
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Error("config validation: %v", err)
		return 1
	}

	st, err := buildStrategy(cfg, opts)
	if err != nil {
		logger.Error("strategy: %v", err)
		return 1
	}

	fetcher := collector.NewYahooFetcher(cfg.Proxy, cfg.Data.YahooSymbols)
	col := collector.NewCollector(fetcher, cfg.Data.Dir, cfg.Data.HistoryDays)

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			logger.Warn("init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	sm, err := state.NewManager(cfg.StateFile)
	if err != nil {
		logger.Error("init alert state: %v", err)
		return 1
	}

	// Context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	symbols := cfg.Data.Symbols
	if opts.symbol != "" {
		symbols = []string{opts.symbol}
	}

	switch opts.mode {
	case "run":
		sched := scheduler.NewScheduler(ctx, cfg, col, nil, rec, sm)
		if failed := runReports(sched, symbols, st); failed > 0 {
			return 1
		}
	case "update":
		failed := 0
		for _, symbol := range symbols {
			if _, err := col.Update(ctx, symbol); err != nil {
				logger.Error("update %s: %v", symbol, err)
				failed++
			}
		}
		if failed > 0 {
			return 1
		}
	case "serve":
		if err := serve(ctx, cfg, col, rec, sm); err != nil {
			logger.Error("serve: %v", err)
			return 1
		}
	default:
		logger.Error("unknown mode %q", opts.mode)
		return 2
	}
	return 0
}

// buildStrategy applies flag overrides to the configured defaults.
func buildStrategy(cfg *config.Config, o options) (model.Strategy, error) {
	name := cfg.Strategy.Default
	if o.strategy != "" {
		name = o.strategy
	}
	kind, err := strategy.ParseKind(name)
	if err != nil {
		return nil, err
	}
	p := cfg.Params(kind)
	if o.fast != 0 {
		p.Fast = o.fast
	}
	if o.slow != 0 {
		p.Slow = o.slow
	}
	if o.lag >= 0 {
		p.BaseLag = o.lag
	}
	if o.window != 0 {
		p.Window = o.window
	}
	return strategy.New(kind, p)
}

func runReports(sched *scheduler.Scheduler, symbols []string, st model.Strategy) int {
	failed := 0
	for _, symbol := range symbols {
		res, err := sched.Analyze(symbol, st, "run")
		if err != nil {
			failed++
			var mce *series.MissingColumnError
			if errors.As(err, &mce) {
				fmt.Println(notifier.PlainText(notifier.FormatFailure(symbol, st, err)))
				continue
			}
			logger.Error("%s: %v", symbol, err)
			continue
		}
		fmt.Println(notifier.PlainText(notifier.FormatReport(res.Frame, res.Book)))
	}
	return failed
}

func serve(ctx context.Context, cfg *config.Config, col *collector.Collector, rec recorder.Recorder, sm *state.Manager) error {
	logger.Info("MetalBoard starting...")
	if err := cfg.RequireTelegram(); err != nil {
		return err
	}

	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
	sched := scheduler.NewScheduler(ctx, cfg, col, tn, rec, sm)
	if err := sched.RegisterAll(cfg.Schedule.DailyCron); err != nil {
		return errors.Wrap(err, "register cron tasks")
	}
	sched.Start()
	defer sched.Stop()

	go tn.StartPolling(ctx, sched.HandleCommand)
	logger.Info("Telegram polling started")

	if os.Getenv("RUN_ON_START") == "true" {
		logger.Info("RUN_ON_START enabled, executing daily task now")
		go sched.RunDailyNow()
	}

	logger.Info("MetalBoard is running. Press Ctrl+C to stop.")
	<-ctx.Done()
	logger.Info("shutdown signal received, stopping...")
	return nil
}
