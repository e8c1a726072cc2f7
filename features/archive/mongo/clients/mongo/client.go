// Package mongo hosts the MongoDB client used by the session archive.
package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"goa.design/clue/health"

	"github.com/beedev/recommenderv2/configurator"
	"github.com/beedev/recommenderv2/configurator/store"
)

const (
	defaultCollection = "configurations"
	defaultOpTimeout  = 5 * time.Second
	archiveClientName = "archive-mongo"
)

// Client exposes Mongo-backed operations for the terminal-session archive.
type Client interface {
	health.Pinger

	// PutRecord stores the record, keyed by session id. Storing the same
	// session twice keeps the first write's created_at and is otherwise a
	// no-op for identical payloads.
	PutRecord(ctx context.Context, rec store.Record) error

	// RecentRecords returns up to limit records, most recently completed
	// first.
	RecentRecords(ctx context.Context, limit int) ([]store.Record, error)

	// CollectStats aggregates archive-wide counters.
	CollectStats(ctx context.Context) (store.Stats, error)
}

// Options configures the Mongo archive client.
type Options struct {
	// Client is the connected mongo driver client. Required.
	Client *mongodriver.Client

	// Database is the database name. Required.
	Database string

	// Collection overrides the archive collection name.
	Collection string

	// Timeout bounds individual operations.
	Timeout time.Duration
}

type client struct {
	mongo   *mongodriver.Client
	records collection
	timeout time.Duration
}

// New returns a Client backed by MongoDB.
func New(opts Options) (Client, error) {
	if opts.Client == nil {
		return nil, errors.New("mongo client is required")
	}
	if opts.Database == "" {
		return nil, errors.New("database name is required")
	}
	collectionName := opts.Collection
	if collectionName == "" {
		collectionName = defaultCollection
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultOpTimeout
	}
	coll := opts.Client.Database(opts.Database).Collection(collectionName)
	wrapper := mongoCollection{coll: coll}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := ensureIndexes(ctx, wrapper); err != nil {
		return nil, err
	}
	return newClientWithCollection(opts.Client, wrapper, timeout)
}

func (c *client) Name() string {
	return archiveClientName
}

func (c *client) Ping(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return c.mongo.Ping(ctx, readpref.Primary())
}

func (c *client) PutRecord(ctx context.Context, rec store.Record) error {
	if rec.SessionID == "" {
		return errors.New("session id is required")
	}
	doc := fromRecord(rec)
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	filter := bson.M{"_id": rec.SessionID}
	update := bson.M{
		"$set": bson.M{
			"completed_at":     doc.CompletedAt,
			"duration_seconds": doc.DurationSeconds,
			"final_state":      doc.FinalState,
			"finalized":        doc.Finalized,
			"messages":         doc.Messages,
			"user_messages":    doc.UserMessages,
			"language":         doc.Language,
			"payload":          doc.Payload,
		},
		// Idempotent insert: replaying an archive write must never move the
		// session's creation time.
		"$setOnInsert": bson.M{
			"created_at": doc.CreatedAt,
		},
	}
	_, err := c.records.UpdateOne(ctx, filter, update, options.UpdateOne().SetUpsert(true))
	return err
}

func (c *client) RecentRecords(ctx context.Context, limit int) ([]store.Record, error) {
	if limit <= 0 {
		return nil, nil
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	cur, err := c.records.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "completed_at", Value: -1}}).SetLimit(int64(limit)))
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cur.Close(ctx)
	}()
	var out []store.Record
	for cur.Next(ctx) {
		var doc recordDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toRecord())
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *client) CollectStats(ctx context.Context) (store.Stats, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	total, err := c.records.CountDocuments(ctx, bson.M{})
	if err != nil {
		return store.Stats{}, err
	}
	finalized, err := c.records.CountDocuments(ctx, bson.M{"finalized": true})
	if err != nil {
		return store.Stats{}, err
	}
	stats := store.Stats{Total: total, Finalized: finalized}
	if total > 0 {
		stats.FinalizationRate = float64(finalized) / float64(total)
	}
	return stats, nil
}

func (c *client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

type recordDocument struct {
	SessionID       string    `bson:"_id"`
	CreatedAt       time.Time `bson:"created_at"`
	CompletedAt     time.Time `bson:"completed_at"`
	DurationSeconds float64   `bson:"duration_seconds"`
	FinalState      string    `bson:"final_state"`
	Finalized       bool      `bson:"finalized"`
	Messages        int       `bson:"messages"`
	UserMessages    int       `bson:"user_messages"`
	Language        string    `bson:"language,omitempty"`
	Payload         []byte    `bson:"payload,omitempty"`
}

func fromRecord(rec store.Record) recordDocument {
	return recordDocument{
		SessionID:       rec.SessionID,
		CreatedAt:       rec.CreatedAt.UTC(),
		CompletedAt:     rec.CompletedAt.UTC(),
		DurationSeconds: rec.DurationSeconds,
		FinalState:      string(rec.FinalState),
		Finalized:       rec.Finalized,
		Messages:        rec.Messages,
		UserMessages:    rec.UserMessages,
		Language:        rec.Language,
		Payload:         rec.Payload,
	}
}

func (doc recordDocument) toRecord() store.Record {
	return store.Record{
		SessionID:       doc.SessionID,
		CreatedAt:       doc.CreatedAt.UTC(),
		CompletedAt:     doc.CompletedAt.UTC(),
		DurationSeconds: doc.DurationSeconds,
		FinalState:      configurator.State(doc.FinalState),
		Finalized:       doc.Finalized,
		Messages:        doc.Messages,
		UserMessages:    doc.UserMessages,
		Language:        doc.Language,
		Payload:         doc.Payload,
	}
}

func ensureIndexes(ctx context.Context, coll collection) error {
	completedIndex := mongodriver.IndexModel{
		Keys: bson.D{{Key: "completed_at", Value: -1}},
	}
	if _, err := coll.Indexes().CreateOne(ctx, completedIndex); err != nil {
		return err
	}
	finalizedIndex := mongodriver.IndexModel{
		Keys: bson.D{{Key: "finalized", Value: 1}},
	}
	if _, err := coll.Indexes().CreateOne(ctx, finalizedIndex); err != nil {
		return err
	}
	return nil
}

func newClientWithCollection(mongoClient *mongodriver.Client, coll collection, timeout time.Duration) (*client, error) {
	if coll == nil {
		return nil, errors.New("collection is required")
	}
	if timeout <= 0 {
		timeout = defaultOpTimeout
	}
	return &client{
		mongo:   mongoClient,
		records: coll,
		timeout: timeout,
	}, nil
}

type collection interface {
	Find(ctx context.Context, filter any, opts ...options.Lister[options.FindOptions]) (cursor, error)
	UpdateOne(ctx context.Context, filter any, update any,
		opts ...options.Lister[options.UpdateOneOptions]) (*mongodriver.UpdateResult, error)
	CountDocuments(ctx context.Context, filter any,
		opts ...options.Lister[options.CountOptions]) (int64, error)
	Indexes() indexView
}

type indexView interface {
	CreateOne(ctx context.Context, model mongodriver.IndexModel,
		opts ...options.Lister[options.CreateIndexesOptions]) (string, error)
}

type cursor interface {
	Close(ctx context.Context) error
	Decode(val any) error
	Err() error
	Next(ctx context.Context) bool
}

type mongoCollection struct {
	coll *mongodriver.Collection
}

func (c mongoCollection) Find(ctx context.Context, filter any, opts ...options.Lister[options.FindOptions]) (cursor, error) {
	cur, err := c.coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	return mongoCursor{cur: cur}, nil
}

func (c mongoCollection) UpdateOne(ctx context.Context, filter any, update any,
	opts ...options.Lister[options.UpdateOneOptions]) (*mongodriver.UpdateResult, error) {
	return c.coll.UpdateOne(ctx, filter, update, opts...)
}

func (c mongoCollection) CountDocuments(ctx context.Context, filter any,
	opts ...options.Lister[options.CountOptions]) (int64, error) {
	return c.coll.CountDocuments(ctx, filter, opts...)
}

func (c mongoCollection) Indexes() indexView {
	return mongoIndexView{view: c.coll.Indexes()}
}

type mongoCursor struct {
	cur *mongodriver.Cursor
}

func (c mongoCursor) Close(ctx context.Context) error {
	return c.cur.Close(ctx)
}

func (c mongoCursor) Decode(val any) error {
	return c.cur.Decode(val)
}

func (c mongoCursor) Err() error {
	return c.cur.Err()
}

func (c mongoCursor) Next(ctx context.Context) bool {
	return c.cur.Next(ctx)
}

type mongoIndexView struct {
	view mongodriver.IndexView
}

func (v mongoIndexView) CreateOne(ctx context.Context, model mongodriver.IndexModel,
	opts ...options.Lister[options.CreateIndexesOptions]) (string, error) {
	return v.view.CreateOne(ctx, model, opts...)
}
