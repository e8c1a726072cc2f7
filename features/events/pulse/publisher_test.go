package pulse

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/beedev/recommenderv2/configurator"
	"github.com/beedev/recommenderv2/configurator/events"
	clientspulse "github.com/beedev/recommenderv2/features/events/pulse/clients/pulse"
)

type fakeStream struct {
	event   string
	payload []byte
	err     error
	adds    int
}

func (f *fakeStream) Add(ctx context.Context, event string, payload []byte) (string, error) {
	f.adds++
	f.event = event
	f.payload = payload
	if f.err != nil {
		return "", f.err
	}
	return "1-0", nil
}

type fakeClient struct {
	stream     *fakeStream
	streamName string
	streamErr  error
	closed     bool
}

func (f *fakeClient) Stream(name string) (clientspulse.Stream, error) {
	f.streamName = name
	if f.streamErr != nil {
		return nil, f.streamErr
	}
	return f.stream, nil
}

func (f *fakeClient) Close(ctx context.Context) error {
	f.closed = true
	return nil
}

func TestNewPublisherRequiresClient(t *testing.T) {
	if _, err := NewPublisher(Options{}); err == nil {
		t.Fatal("expected error for missing client")
	}
}

func TestNewPublisherOpensDefaultStream(t *testing.T) {
	fc := &fakeClient{stream: &fakeStream{}}
	_, err := NewPublisher(Options{Client: fc})
	require.NoError(t, err)
	require.Equal(t, DefaultStreamName, fc.streamName)
}

func TestPublishAppendsTypedEnvelope(t *testing.T) {
	fs := &fakeStream{}
	pub, err := NewPublisher(Options{Client: &fakeClient{stream: fs}, StreamName: "custom/feed"})
	require.NoError(t, err)

	at := time.Date(2026, 2, 11, 9, 30, 0, 0, time.UTC)
	ev := events.Completed("sess-9", configurator.StateFinalize, at)
	require.NoError(t, pub.Publish(context.Background(), ev))

	require.Equal(t, "session.completed", fs.event)
	var got events.Event
	require.NoError(t, json.Unmarshal(fs.payload, &got))
	require.Equal(t, ev.SessionID, got.SessionID)
	require.Equal(t, ev.Type, got.Type)
	require.True(t, got.Finalized)
	require.True(t, got.At.Equal(at))
}

func TestPublishValidatesEvent(t *testing.T) {
	fs := &fakeStream{}
	pub, err := NewPublisher(Options{Client: &fakeClient{stream: fs}})
	require.NoError(t, err)

	err = pub.Publish(context.Background(), events.Event{Type: events.TypeCreated})
	require.Error(t, err)
	require.Zero(t, fs.adds)
}

func TestPublishAfterCloseFails(t *testing.T) {
	fc := &fakeClient{stream: &fakeStream{}}
	pub, err := NewPublisher(Options{Client: fc})
	require.NoError(t, err)

	require.NoError(t, pub.Close(context.Background()))
	require.True(t, fc.closed)

	err = pub.Publish(context.Background(), events.Created("sess-1", time.Now()))
	require.Error(t, err)
	require.Zero(t, fc.stream.adds)
}

func TestPublishWrapsTransportError(t *testing.T) {
	sentinel := errors.New("stream gone")
	fs := &fakeStream{err: sentinel}
	pub, err := NewPublisher(Options{Client: &fakeClient{stream: fs}})
	require.NoError(t, err)

	err = pub.Publish(context.Background(), events.Created("sess-1", time.Now()))
	require.ErrorIs(t, err, sentinel)
}

func TestStreamCreationErrorSurfacesAtConstruction(t *testing.T) {
	fc := &fakeClient{streamErr: errors.New("no redis")}
	_, err := NewPublisher(Options{Client: fc})
	require.Error(t, err)
}
