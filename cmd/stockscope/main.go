package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"StockScope/internal/config"
	"StockScope/internal/gateway"
	"StockScope/internal/pipeline"
	"StockScope/internal/scheduler"
	"StockScope/internal/store"

	"github.com/joho/godotenv"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] StockScope starting...")

	// .env is optional; real env vars win either way.
	if err := godotenv.Load(); err == nil {
		log.Println("[INFO] loaded .env")
	}

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

	exchangeTZ, err := cfg.ExchangeTZ()
	if err != nil {
		log.Fatalf("[FATAL] load exchange timezone: %v", err)
	}

	// Init gateway
	gw := gateway.NewYahooGateway(gateway.YahooConfig{
		QueryURL:   cfg.DataSource.QueryURL,
		Timeout:    cfg.Timeout(),
		Proxy:      cfg.Proxy,
		ExchangeTZ: exchangeTZ,
	})
	log.Printf("[INFO] data source: %s", gw.Name())

	// Init pipeline
	p := pipeline.New(gw, exchangeTZ)

	// Init store
	var st store.Store
	if cfg.Storage.SQLitePath != "" {
		ss, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite store failed, using noop: %v", err)
			st = store.NewNoopStore()
		} else {
			st = ss
			defer ss.Close()
		}
	} else {
		st = store.NewNoopStore()
	}

	// Init scheduler
	sched := scheduler.NewScheduler(p, st, cfg.Market.Symbols, cfg.Market.Period, cfg.Market.Interval, cfg.Storage.DataDir)
	if err := sched.RegisterRefresh(cfg.Schedule.RefreshCron); err != nil {
		log.Fatalf("[FATAL] register refresh task: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Optional: refresh immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, refreshing now")
		go sched.RunRefreshNow()
	}

	log.Println("[INFO] StockScope is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	log.Println("[INFO] StockScope stopped")
}
