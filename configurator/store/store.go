// Package store persists configurator sessions between turns.
//
// Two ports carry the two lifetimes: a Cache holds live sessions under a TTL
// (the hot path, reset on every write), an Archive keeps terminal sessions
// for analytics. The store owns the codec: sessions are encoded to canonical
// JSON — fixed struct field order, sorted map keys, UTC timestamps — so
// encode/decode round-trips are byte-equal and payloads are stable across
// replicas.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/beedev/recommenderv2/configurator"
)

type (
	// Cache is the hot session store.
	//
	// Contract:
	// - Entries expire after the implementation's TTL; Put resets it.
	// - A miss — expired or never created — is configurator.ErrSessionExpired.
	// - Transport failures wrap ErrUnavailable, never a miss.
	Cache interface {
		// Get returns the encoded session.
		Get(ctx context.Context, sessionID string) ([]byte, error)
		// Put stores the encoded session and resets its TTL.
		Put(ctx context.Context, sessionID string, payload []byte) error
		// Delete removes the session. Deleting a missing session is not an
		// error.
		Delete(ctx context.Context, sessionID string) error
	}

	// Locker serializes turns for one session across replicas. One turn
	// holds the lock from load to persist; concurrent turns for the same
	// session are rejected, not queued.
	Locker interface {
		// Acquire takes the per-session mutation lock and returns a release
		// token. Returns ErrSessionBusy while another holder has it.
		Acquire(ctx context.Context, sessionID string) (string, error)
		// Release frees the lock if the token still owns it. Releasing with
		// a stale token is a no-op.
		Release(ctx context.Context, sessionID, token string) error
	}

	// Archive keeps terminal sessions. Put is idempotent: archiving the same
	// session twice leaves one record.
	Archive interface {
		// Put inserts or refreshes the record keyed by session ID.
		Put(ctx context.Context, rec Record) error
		// Recent returns up to limit records, most recently completed first.
		Recent(ctx context.Context, limit int) ([]Record, error)
		// Stats aggregates over every archived session.
		Stats(ctx context.Context) (Stats, error)
	}

	// Record is one archived session, reduced to the fields analytics care
	// about plus the full canonical payload.
	Record struct {
		// SessionID keys the record; one per session.
		SessionID string
		// CreatedAt is when the session started.
		CreatedAt time.Time
		// CompletedAt is when the session reached its terminal point.
		CompletedAt time.Time
		// DurationSeconds is CompletedAt minus CreatedAt.
		DurationSeconds float64
		// FinalState is the state the session ended in.
		FinalState configurator.State
		// Finalized reports whether the configuration was confirmed
		// complete, as opposed to expired or reset.
		Finalized bool
		// Messages counts all conversation log entries.
		Messages int
		// UserMessages counts the user's entries.
		UserMessages int
		// Language is the session's response language tag.
		Language string
		// Payload is the canonical session JSON at archive time.
		Payload []byte
	}

	// Stats aggregates the archive.
	Stats struct {
		// Total is the number of archived sessions.
		Total int64
		// Finalized is how many of them confirmed a complete configuration.
		Finalized int64
		// FinalizationRate is Finalized over Total, 0 when the archive is
		// empty.
		FinalizationRate float64
	}

	// Store loads and persists sessions through the cache and hands terminal
	// ones to the archive.
	Store struct {
		cache   Cache
		archive Archive
	}

	// Options configures New.
	Options struct {
		// Cache is required.
		Cache Cache
		// Archive is optional; without one terminal sessions are simply not
		// archived.
		Archive Archive
	}
)

// ErrSessionBusy reports that another turn holds the session's mutation lock.
var ErrSessionBusy = errors.New("session busy")

// ErrUnavailable reports a cache or lock transport failure, as opposed to a
// miss. Adapters wrap their connection and timeout errors with it.
var ErrUnavailable = errors.New("session store unavailable")

// New returns a Store over the given ports.
func New(opts Options) (*Store, error) {
	if opts.Cache == nil {
		return nil, fmt.Errorf("store: cache is required")
	}
	return &Store{cache: opts.Cache, archive: opts.Archive}, nil
}

// Get loads and decodes the session. A cache miss surfaces as
// configurator.ErrSessionExpired.
func (s *Store) Get(ctx context.Context, sessionID string) (*configurator.Session, error) {
	payload, err := s.cache.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return Decode(payload)
}

// Put encodes and stores the session, resetting its TTL.
func (s *Store) Put(ctx context.Context, sess *configurator.Session) error {
	payload, err := Encode(sess)
	if err != nil {
		return err
	}
	return s.cache.Put(ctx, sess.ID, payload)
}

// Delete drops the session from the cache.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	return s.cache.Delete(ctx, sessionID)
}

// Archive snapshots the session into the archive. Without an archive port it
// is a no-op; failures are the caller's to tolerate, archiving never blocks
// a turn from completing.
func (s *Store) Archive(ctx context.Context, sess *configurator.Session, completedAt time.Time) error {
	if s.archive == nil {
		return nil
	}
	rec, err := Snapshot(sess, completedAt)
	if err != nil {
		return err
	}
	return s.archive.Put(ctx, rec)
}

// Snapshot reduces a session to its archive record.
func Snapshot(sess *configurator.Session, completedAt time.Time) (Record, error) {
	payload, err := Encode(sess)
	if err != nil {
		return Record{}, err
	}
	completedAt = completedAt.UTC()
	users := 0
	for _, e := range sess.Log {
		if e.Role == "user" {
			users++
		}
	}
	return Record{
		SessionID:       sess.ID,
		CreatedAt:       sess.CreatedAt,
		CompletedAt:     completedAt,
		DurationSeconds: completedAt.Sub(sess.CreatedAt).Seconds(),
		FinalState:      sess.CurrentState,
		Finalized:       sess.Completed,
		Messages:        len(sess.Log),
		UserMessages:    users,
		Language:        sess.Language,
		Payload:         payload,
	}, nil
}

// Encode renders the canonical JSON form of a session.
func Encode(sess *configurator.Session) ([]byte, error) {
	if sess == nil {
		return nil, fmt.Errorf("%w: encode nil session", configurator.ErrIntegrity)
	}
	payload, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("%w: encode session %s: %v", configurator.ErrIntegrity, sess.ID, err)
	}
	return payload, nil
}

// Decode parses a canonical session payload. A payload that does not parse
// is corrupt state, not a miss.
func Decode(payload []byte) (*configurator.Session, error) {
	var sess configurator.Session
	if err := json.Unmarshal(payload, &sess); err != nil {
		return nil, fmt.Errorf("%w: decode session: %v", configurator.ErrIntegrity, err)
	}
	return &sess, nil
}
