package store

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"

	"github.com/beedev/recommenderv2/configurator"
)

type fakeCache struct {
	entries map[string][]byte
	putErr  error
}

func newFakeCache() *fakeCache { return &fakeCache{entries: make(map[string][]byte)} }

func (c *fakeCache) Get(_ context.Context, id string) ([]byte, error) {
	payload, ok := c.entries[id]
	if !ok {
		return nil, configurator.ErrSessionExpired
	}
	return payload, nil
}

func (c *fakeCache) Put(_ context.Context, id string, payload []byte) error {
	if c.putErr != nil {
		return c.putErr
	}
	c.entries[id] = payload
	return nil
}

func (c *fakeCache) Delete(_ context.Context, id string) error {
	delete(c.entries, id)
	return nil
}

type fakeArchive struct {
	records []Record
}

func (a *fakeArchive) Put(_ context.Context, rec Record) error {
	for i, r := range a.records {
		if r.SessionID == rec.SessionID {
			a.records[i] = rec
			return nil
		}
	}
	a.records = append(a.records, rec)
	return nil
}

func (a *fakeArchive) Recent(_ context.Context, limit int) ([]Record, error) {
	if limit > len(a.records) {
		limit = len(a.records)
	}
	return a.records[:limit], nil
}

func (a *fakeArchive) Stats(_ context.Context) (Stats, error) {
	var s Stats
	for _, r := range a.records {
		s.Total++
		if r.Finalized {
			s.Finalized++
		}
	}
	if s.Total > 0 {
		s.FinalizationRate = float64(s.Finalized) / float64(s.Total)
	}
	return s, nil
}

func sampleSession(t *testing.T) *configurator.Session {
	t.Helper()
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	sess := configurator.NewSession("sess-1", now)
	sess.Master.PowerSource.Set("current", "500 A")
	sess.Master.PowerSource.Set("process", "MIG")
	require.NoError(t, sess.Cart.Select(configurator.Product{
		GIN: "0446200880", Name: "Aristo 500ix", Kind: configurator.KindPowerSource,
	}, false))
	sess.Append("user", "I need 500 amps", now)
	sess.Append("assistant", "Found a match", now.Add(2*time.Second))
	sess.Language = "sv"
	return sess
}

func TestNewRequiresCache(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)

	st, err := New(Options{Cache: newFakeCache()})
	require.NoError(t, err)
	require.NotNil(t, st)
}

func TestPutGetRoundTrip(t *testing.T) {
	cache := newFakeCache()
	st, err := New(Options{Cache: cache})
	require.NoError(t, err)

	sess := sampleSession(t)
	ctx := context.Background()
	require.NoError(t, st.Put(ctx, sess))

	got, err := st.Get(ctx, sess.ID)
	require.NoError(t, err)
	require.Equal(t, sess, got)

	// Canonical form: re-encoding the decoded session reproduces the cached
	// bytes exactly.
	again, err := Encode(got)
	require.NoError(t, err)
	require.True(t, bytes.Equal(cache.entries[sess.ID], again), "canonical encoding must round-trip byte-equal")
}

func TestGetMissIsSessionExpired(t *testing.T) {
	st, err := New(Options{Cache: newFakeCache()})
	require.NoError(t, err)

	_, err = st.Get(context.Background(), "gone")
	require.ErrorIs(t, err, configurator.ErrSessionExpired)
}

func TestDecodeCorruptPayloadIsIntegrity(t *testing.T) {
	cache := newFakeCache()
	cache.entries["bad"] = []byte("{not json")
	st, err := New(Options{Cache: cache})
	require.NoError(t, err)

	_, err = st.Get(context.Background(), "bad")
	require.ErrorIs(t, err, configurator.ErrIntegrity, "corrupt state is not a miss")
}

func TestEncodeNilSession(t *testing.T) {
	_, err := Encode(nil)
	require.ErrorIs(t, err, configurator.ErrIntegrity)
}

func TestDelete(t *testing.T) {
	cache := newFakeCache()
	st, err := New(Options{Cache: cache})
	require.NoError(t, err)

	sess := sampleSession(t)
	ctx := context.Background()
	require.NoError(t, st.Put(ctx, sess))
	require.NoError(t, st.Delete(ctx, sess.ID))
	_, err = st.Get(ctx, sess.ID)
	require.ErrorIs(t, err, configurator.ErrSessionExpired)
}

func TestSnapshot(t *testing.T) {
	sess := sampleSession(t)
	sess.Completed = true
	completedAt := sess.CreatedAt.Add(90 * time.Second)

	rec, err := Snapshot(sess, completedAt)
	require.NoError(t, err)
	require.Equal(t, "sess-1", rec.SessionID)
	require.Equal(t, sess.CreatedAt, rec.CreatedAt)
	require.Equal(t, completedAt, rec.CompletedAt)
	require.InDelta(t, 90.0, rec.DurationSeconds, 1e-9)
	require.Equal(t, configurator.StatePowerSource, rec.FinalState)
	require.True(t, rec.Finalized)
	require.Equal(t, 2, rec.Messages)
	require.Equal(t, 1, rec.UserMessages)
	require.Equal(t, "sv", rec.Language)

	decoded, err := Decode(rec.Payload)
	require.NoError(t, err)
	require.Equal(t, sess, decoded, "payload carries the whole session")
}

func TestArchiveIsOptional(t *testing.T) {
	st, err := New(Options{Cache: newFakeCache()})
	require.NoError(t, err)
	require.NoError(t, st.Archive(context.Background(), sampleSession(t), time.Now()))
}

func TestArchiveWritesRecord(t *testing.T) {
	archive := &fakeArchive{}
	st, err := New(Options{Cache: newFakeCache(), Archive: archive})
	require.NoError(t, err)

	sess := sampleSession(t)
	ctx := context.Background()
	require.NoError(t, st.Archive(ctx, sess, sess.CreatedAt.Add(time.Minute)))
	require.Len(t, archive.records, 1)

	// Idempotent: a second archive of the same session keeps one record.
	require.NoError(t, st.Archive(ctx, sess, sess.CreatedAt.Add(2*time.Minute)))
	require.Len(t, archive.records, 1)

	stats, err := archive.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), stats.Total)
	require.Equal(t, int64(0), stats.Finalized)
	require.Zero(t, stats.FinalizationRate)
}

func TestPutSurfacesCacheError(t *testing.T) {
	cache := newFakeCache()
	cache.putErr = errors.New("redis down")
	st, err := New(Options{Cache: cache})
	require.NoError(t, err)

	require.Error(t, st.Put(context.Background(), sampleSession(t)))
}

// TestCodecRoundTripProperty checks that any session survives an
// encode/decode/encode cycle with byte-equal output.
func TestCodecRoundTripProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("encode/decode round-trips byte-equal", prop.ForAll(
		func(sess *configurator.Session) bool {
			first, err := Encode(sess)
			if err != nil {
				return false
			}
			decoded, err := Decode(first)
			if err != nil {
				return false
			}
			second, err := Encode(decoded)
			if err != nil {
				return false
			}
			return bytes.Equal(first, second)
		},
		genSession(),
	))

	properties.TestingRun(t)
}

func genSession() gopter.Gen {
	return gopter.CombineGens(
		gen.Identifier(),
		gen.IntRange(0, 6),
		genBagAttrs(),
		gen.IntRange(0, 4),
		gen.OneConstOf("", "en", "sv", "de", "pt-BR"),
		gen.Bool(),
	).Map(func(vs []any) *configurator.Session {
		id := vs[0].(string)
		stateIdx := vs[1].(int)
		attrs := vs[2].(map[string]string)
		logLen := vs[3].(int)
		lang := vs[4].(string)
		completed := vs[5].(bool)

		base := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
		sess := configurator.NewSession(id, base)
		sess.CurrentState = configurator.States()[stateIdx]
		sess.Master.PowerSource.Apply(attrs)
		sess.Master.Torch.DirectMention = lang // any string is a valid mention
		for i := 0; i < logLen; i++ {
			role := "user"
			if i%2 == 1 {
				role = "assistant"
			}
			sess.Append(role, "turn text", base.Add(time.Duration(i)*time.Second))
		}
		sess.Language = lang
		sess.Completed = completed
		sess.PendingOptions = []configurator.Product{{
			GIN: "P-" + id, Name: "Unit " + id, Kind: configurator.KindPowerSource,
			Attributes: attrs,
		}}
		return sess
	})
}

func genBagAttrs() gopter.Gen {
	return gen.MapOf(gen.Identifier(), gen.AlphaString()).Map(func(m map[string]string) map[string]string {
		// Bound the map so generated sessions stay small.
		if len(m) <= 5 {
			return m
		}
		out := make(map[string]string, 5)
		n := 0
		for k, v := range m {
			out[k] = v
			if n++; n == 5 {
				break
			}
		}
		return out
	})
}
