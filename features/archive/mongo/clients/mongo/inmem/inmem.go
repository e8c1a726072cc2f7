// Package inmem provides an in-memory implementation of store.Archive for
// tests and single-node development. The semantics mirror the mongo backend:
// puts are idempotent per session and keep the first write's creation time.
package inmem

import (
	"context"
	"sort"
	"sync"

	"github.com/beedev/recommenderv2/configurator/store"
)

// Archive is an in-memory store.Archive.
type Archive struct {
	mu      sync.Mutex
	records map[string]store.Record
	err     error
}

// New returns an Archive with no records.
func New() *Archive {
	return &Archive{records: make(map[string]store.Record)}
}

// Put stores the record. Replays keep the first write's CreatedAt.
func (a *Archive) Put(ctx context.Context, rec store.Record) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	if existing, ok := a.records[rec.SessionID]; ok {
		rec.CreatedAt = existing.CreatedAt
	}
	rec.Payload = append([]byte(nil), rec.Payload...)
	a.records[rec.SessionID] = rec
	return nil
}

// Recent returns up to limit records, most recently completed first.
func (a *Archive) Recent(ctx context.Context, limit int) ([]store.Record, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return nil, a.err
	}
	if limit <= 0 {
		return nil, nil
	}
	out := make([]store.Record, 0, len(a.records))
	for _, rec := range a.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CompletedAt.After(out[j].CompletedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Stats aggregates archive-wide counters.
func (a *Archive) Stats(ctx context.Context) (store.Stats, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return store.Stats{}, a.err
	}
	stats := store.Stats{Total: int64(len(a.records))}
	for _, rec := range a.records {
		if rec.Finalized {
			stats.Finalized++
		}
	}
	if stats.Total > 0 {
		stats.FinalizationRate = float64(stats.Finalized) / float64(stats.Total)
	}
	return stats, nil
}

// SetError makes every operation return err until cleared with nil.
func (a *Archive) SetError(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.err = err
}
