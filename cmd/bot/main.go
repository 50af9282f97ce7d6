package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"SignalSentinel/internal/api"
	"SignalSentinel/internal/collector"
	"SignalSentinel/internal/config"
	"SignalSentinel/internal/metrics"
	"SignalSentinel/internal/notifier"
	"SignalSentinel/internal/recorder"
	"SignalSentinel/internal/scheduler"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] SignalSentinel starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Init fetcher
	fetcher, err := collector.NewFetcher(collector.Options{
		Provider:  cfg.DataSource.Provider,
		BaseURL:   cfg.DataSource.BaseURL,
		APIKey:    cfg.DataSource.APIKey,
		CSVPath:   cfg.DataSource.CSVPath,
		Proxy:     cfg.Proxy,
		RateLimit: cfg.DataSource.RateLimit,
	})
	if err != nil {
		log.Fatalf("[FATAL] init fetcher: %v", err)
	}
	if cfg.Redis.Addr != "" {
		rdb, err := collector.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Printf("[WARN] redis unavailable, fetching without cache: %v", err)
		} else {
			defer rdb.Close()
			fetcher = collector.NewCachedFetcher(fetcher, rdb, cfg.Redis.TTL)
		}
	}
	log.Printf("[INFO] data source: %s", fetcher.Name())

	// Init collector
	col := collector.NewCollector(fetcher, cfg.DataSource.Symbol, cfg.DataSource.Days)
	col.MaxRetries = cfg.DataSource.MaxRetries

	// Init Telegram notifier
	var tn *notifier.TelegramNotifier
	var sender scheduler.Sender
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		sender = tn
	} else {
		log.Println("[WARN] telegram not configured, notifications disabled")
	}

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
			if run, err := sr.LatestRun(cfg.DataSource.Symbol); err == nil && run != nil {
				log.Printf("[INFO] last recorded run #%d at %s: momentum=%s mean_reversion=%s",
					run.ID, run.ComputedAt.Format("2006-01-02 15:04"), run.Momentum, run.MeanReversion)
			}
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	m := metrics.New()

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, col, cfg.Strategy, sender, rec, m)
	if err := sched.Register(cfg.Schedule.DailyCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Start API
	srv := api.NewServer(cfg.API.BindAddress, sched, m.Handler())
	go func() {
		if err := srv.Run(ctx); err != nil {
			log.Printf("[ERROR] api server: %v", err)
		}
	}()

	// Start Telegram polling
	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Println("[INFO] Telegram polling started")
	}

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing analysis now")
		go func() {
			if _, err := sched.RunNow(ctx); err != nil {
				log.Printf("[ERROR] startup analysis: %v", err)
			}
		}()
	}

	log.Println("[INFO] SignalSentinel is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] SignalSentinel stopped")
}
