package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"UpbitSentinel/internal/backtest"
	"UpbitSentinel/internal/calculator"
	"UpbitSentinel/internal/collector"
	"UpbitSentinel/internal/config"
	"UpbitSentinel/internal/monitor"
	"UpbitSentinel/internal/notifier"
	"UpbitSentinel/internal/recorder"
	"UpbitSentinel/internal/strategy"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	mode := flag.String("mode", "monitor", "run mode: monitor or backtest")
	cfgPath := flag.String("config", "configs/config.yaml", "path to config file")
	flag.Parse()

	if v := os.Getenv("CONFIG_PATH"); v != "" {
		*cfgPath = v
	}

	log.Println("[INFO] UpbitSentinel starting...")

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	profile, err := strategy.ResolveProfile(cfg.Strategy.Profile)
	if err != nil {
		log.Fatalf("[FATAL] resolve profile: %v", err)
	}

	params := calculator.Params{
		BBPeriod:            cfg.Indicator.BBPeriod,
		BBStdMultiplier:     cfg.Indicator.BBStdMultiplier,
		RSIPeriod:           cfg.Indicator.RSIPeriod,
		VolumePeriod:        cfg.Indicator.BBPeriod,
		VolatilityLookback:  cfg.Indicator.VolatilityLookback,
		VolatilityThreshold: cfg.Indicator.VolatilityThreshold,
	}

	fetcher := collector.NewUpbitFetcher(cfg.Upbit.BaseURL, cfg.Upbit.AccessKey, cfg.Upbit.SecretKey, cfg.Proxy)
	log.Printf("[INFO] data source: %s", fetcher.Name())
	col := collector.NewCollector(fetcher, params.MinBars())

	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	switch *mode {
	case "monitor":
		runMonitor(cfg, profile, params, col, rec)
	case "backtest":
		runBacktest(cfg, profile, params, col, rec)
	default:
		log.Fatalf("[FATAL] unknown mode %q (want monitor or backtest)", *mode)
	}
}

func runMonitor(cfg *config.Config, profile strategy.Profile, params calculator.Params, col *collector.Collector, rec recorder.Recorder) {
	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
	if !tn.Configured() {
		log.Println("[WARN] Telegram not configured, alerts will only be logged")
	}

	m := monitor.New(monitor.Options{
		Collector: col,
		Profile:   profile,
		Params:    params,
		Watchlist: cfg.Watchlist,
		Notifier:  tn,
		Recorder:  rec,
		Cooldown:  time.Duration(cfg.Monitor.AlertCooldownSec) * time.Second,
		Interval:  time.Duration(cfg.Monitor.ScanIntervalSec) * time.Second,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go tn.StartPolling(ctx, m.HandleCommand)
	log.Println("[INFO] Telegram polling started")

	go func() {
		heartbeat := time.Duration(cfg.Monitor.HeartbeatIntervalSec) * time.Second
		if err := m.Start(ctx, heartbeat); err != nil {
			log.Fatalf("[FATAL] monitor: %v", err)
		}
	}()

	log.Println("[INFO] UpbitSentinel is running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	m.Stop()
	log.Println("[INFO] UpbitSentinel stopped")
}

func runBacktest(cfg *config.Config, profile strategy.Profile, params calculator.Params, col *collector.Collector, rec recorder.Recorder) {
	instruments := cfg.Watchlist
	if len(instruments) > cfg.Backtest.MaxInstruments {
		instruments = instruments[:cfg.Backtest.MaxInstruments]
	}

	sim := backtest.NewSimulator(cfg.Backtest.InitialCapital, profile, params)
	runner := backtest.NewRunner(col, sim, rec, cfg.Backtest.Days)

	log.Printf("[INFO] backtest: %d instruments, %d days, profile %s",
		len(instruments), cfg.Backtest.Days, profile.Name)

	results, failures := runner.Run(instruments)
	if len(results) == 0 {
		log.Fatalf("[FATAL] backtest produced no results (%d failures)", len(failures))
	}

	csvPath, err := backtest.WriteCSV(cfg.Backtest.OutputDir, results)
	if err != nil {
		log.Fatalf("[FATAL] write results csv: %v", err)
	}
	log.Printf("[INFO] results csv: %s", csvPath)

	reportPath, err := backtest.WriteReport(cfg.Backtest.OutputDir, results, failures, profile, params, cfg.Backtest.InitialCapital)
	if err != nil {
		log.Fatalf("[FATAL] write report: %v", err)
	}
	log.Printf("[INFO] investment report: %s", reportPath)

	fmt.Print(backtest.RenderReport(results, failures, profile, params, cfg.Backtest.InitialCapital))
}
