// Package pulse publishes session lifecycle events to a Pulse stream over
// Redis. All sessions share one feed; consumers attach their own sinks.
package pulse

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/beedev/recommenderv2/configurator/events"
	clientspulse "github.com/beedev/recommenderv2/features/events/pulse/clients/pulse"
)

// DefaultStreamName is the lifecycle feed all sessions publish to.
const DefaultStreamName = "configurator/sessions"

type (
	// Options configures the lifecycle publisher.
	Options struct {
		// Client is the Pulse client used to publish events. Required.
		Client clientspulse.Client
		// StreamName overrides the feed name. Defaults to DefaultStreamName.
		StreamName string
	}

	// Publisher implements events.Publisher over a single Pulse stream.
	Publisher struct {
		client clientspulse.Client
		stream clientspulse.Stream
		closed atomic.Bool
	}
)

// NewPublisher opens the feed stream and returns a publisher over it.
func NewPublisher(opts Options) (*Publisher, error) {
	if opts.Client == nil {
		return nil, errors.New("pulse client is required")
	}
	name := opts.StreamName
	if name == "" {
		name = DefaultStreamName
	}
	stream, err := opts.Client.Stream(name)
	if err != nil {
		return nil, fmt.Errorf("open lifecycle stream: %w", err)
	}
	return &Publisher{client: opts.Client, stream: stream}, nil
}

// Publish appends the event to the feed, typed by its lifecycle transition.
func (p *Publisher) Publish(ctx context.Context, ev events.Event) error {
	if p.closed.Load() {
		return errors.New("publisher is closed")
	}
	if ev.SessionID == "" {
		return errors.New("event missing session id")
	}
	if ev.Type == "" {
		return errors.New("event missing type")
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", ev.Type, err)
	}
	if _, err := p.stream.Add(ctx, string(ev.Type), payload); err != nil {
		return fmt.Errorf("publish %s event: %w", ev.Type, err)
	}
	return nil
}

// Close stops the publisher. Publish fails afterwards.
func (p *Publisher) Close(ctx context.Context) error {
	p.closed.Store(true)
	return p.client.Close(ctx)
}
