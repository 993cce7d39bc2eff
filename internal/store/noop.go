package store

import "StockScope/internal/model"

// NoopStore is a no-op implementation used when SQLite is not configured.
type NoopStore struct{}

func NewNoopStore() *NoopStore { return &NoopStore{} }

func (n *NoopStore) RecordFetch(_ *FetchRecord) error       { return nil }
func (n *NoopStore) RecordMetadata(_ *model.Metadata) error { return nil }
func (n *NoopStore) Close() error                           { return nil }
