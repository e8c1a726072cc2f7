package mongo

import (
	"context"
	"errors"

	"github.com/beedev/recommenderv2/configurator/store"
	clientsmongo "github.com/beedev/recommenderv2/features/archive/mongo/clients/mongo"
)

// Archive implements store.Archive by delegating to the Mongo client.
type Archive struct {
	client clientsmongo.Client
}

// New builds an Archive using the provided client.
func New(client clientsmongo.Client) (*Archive, error) {
	if client == nil {
		return nil, errors.New("client is required")
	}
	return &Archive{client: client}, nil
}

// Put stores the terminal-session record. Put is idempotent per session.
func (a *Archive) Put(ctx context.Context, rec store.Record) error {
	return a.client.PutRecord(ctx, rec)
}

// Recent returns up to limit records, most recently completed first.
func (a *Archive) Recent(ctx context.Context, limit int) ([]store.Record, error) {
	return a.client.RecentRecords(ctx, limit)
}

// Stats aggregates archive-wide counters.
func (a *Archive) Stats(ctx context.Context) (store.Stats, error) {
	return a.client.CollectStats(ctx)
}
