package store

import (
	"time"

	"StockScope/internal/model"
)

// FetchRecord summarizes one fetch-and-normalize run.
type FetchRecord struct {
	Symbol     string
	Period     string
	Interval   string
	BarCount   int
	Dropped    int
	Duplicates int
	FirstDay   time.Time
	LastDay    time.Time
}

// Store persists fetch history and metadata snapshots for later inspection.
type Store interface {
	RecordFetch(rec *FetchRecord) error
	RecordMetadata(md *model.Metadata) error
	Close() error
}
