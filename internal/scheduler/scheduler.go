package scheduler

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"StockScope/internal/chart"
	"StockScope/internal/codec"
	"StockScope/internal/pipeline"
	"StockScope/internal/store"

	"github.com/robfig/cron/v3"
)

// Scheduler refreshes the persisted snapshots and chart specs for the
// configured symbols on a cron schedule.
type Scheduler struct {
	Cron     *cron.Cron
	Pipeline *pipeline.Pipeline
	Store    store.Store

	Symbols  []string
	Period   string
	Interval string
	DataDir  string
}

// NewScheduler creates a Scheduler.
func NewScheduler(p *pipeline.Pipeline, st store.Store, symbols []string, period, interval, dataDir string) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Pipeline: p,
		Store:    st,
		Symbols:  symbols,
		Period:   period,
		Interval: interval,
		DataDir:  dataDir,
	}
}

// RegisterRefresh registers the refresh task under the given cron spec.
func (s *Scheduler) RegisterRefresh(cronSpec string) error {
	if _, err := s.Cron.AddFunc(cronSpec, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunRefreshNow executes the refresh task immediately (manual trigger /
// RUN_ON_START).
func (s *Scheduler) RunRefreshNow() {
	s.refreshTask()
}

func (s *Scheduler) refreshTask() {
	log.Println("[INFO] running snapshot refresh")
	for _, symbol := range s.Symbols {
		if err := s.RefreshSymbol(symbol); err != nil {
			log.Printf("[ERROR] refresh %s: %v", symbol, err)
		}
	}
}

// RefreshSymbol fetches, normalizes, and persists one symbol: a CSV snapshot,
// a full-range chart spec, and a metadata snapshot.
func (s *Scheduler) RefreshSymbol(symbol string) error {
	ts, stats, err := s.Pipeline.Snapshot(symbol, s.Period, s.Interval)
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	if stats.Dropped > 0 {
		log.Printf("[WARN] %s: dropped %d invalid bars", ts.Symbol, stats.Dropped)
	}
	if stats.Duplicates > 0 {
		log.Printf("[WARN] %s: overwrote %d duplicate days", ts.Symbol, stats.Duplicates)
	}

	csvPath := filepath.Join(s.DataDir, ts.Symbol+".csv")
	if err := codec.Save(csvPath, ts); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	spec, err := chart.Build(ts, nil, nil)
	if err != nil {
		return fmt.Errorf("build chart: %w", err)
	}
	specJSON, err := json.MarshalIndent(spec, "", "  ")
	if err != nil {
		return fmt.Errorf("encode chart: %w", err)
	}
	chartPath := filepath.Join(s.DataDir, ts.Symbol+"_chart.json")
	if err := os.WriteFile(chartPath, specJSON, 0o644); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}

	rec := &store.FetchRecord{
		Symbol:     ts.Symbol,
		Period:     ts.Period,
		Interval:   ts.Interval,
		BarCount:   ts.Len(),
		Dropped:    stats.Dropped,
		Duplicates: stats.Duplicates,
	}
	if !ts.Empty() {
		rec.FirstDay = ts.Bars[0].Date
		rec.LastDay = ts.Bars[ts.Len()-1].Date
	}
	if err := s.Store.RecordFetch(rec); err != nil {
		log.Printf("[ERROR] record fetch %s: %v", ts.Symbol, err)
	}

	md, err := s.Pipeline.Metadata(ts.Symbol)
	if err != nil {
		log.Printf("[WARN] metadata %s: %v", ts.Symbol, err)
	} else if err := s.Store.RecordMetadata(md); err != nil {
		log.Printf("[ERROR] record metadata %s: %v", ts.Symbol, err)
	}

	log.Printf("[INFO] refreshed %s: %d bars, %d earnings markers", ts.Symbol, ts.Len(), len(spec.EarningsMarkers))
	return nil
}
