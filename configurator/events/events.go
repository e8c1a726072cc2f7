// Package events defines the session lifecycle feed. Events are
// notifications for downstream consumers (dashboards, CRM syncs), not part
// of the turn contract: publishing is fire-and-forget and a failed publish
// never fails the turn that produced it.
package events

import (
	"context"
	"time"

	"github.com/beedev/recommenderv2/configurator"
)

type (
	// Type names a lifecycle transition.
	Type string

	// Event is one session lifecycle notification.
	Event struct {
		// Type is the lifecycle transition.
		Type Type `json:"type"`
		// SessionID identifies the session.
		SessionID string `json:"session_id"`
		// State is the session state when the event fired.
		State configurator.State `json:"state"`
		// Finalized reports whether the session confirmed a complete
		// configuration. Meaningful for TypeCompleted.
		Finalized bool `json:"finalized,omitempty"`
		// At is when the event occurred, UTC.
		At time.Time `json:"at"`
	}

	// Publisher delivers lifecycle events to a transport.
	//
	// Contract:
	// - Publish is safe for concurrent use.
	// - Implementations return promptly; slow transports buffer or drop.
	// - After Close, Publish returns errors.
	Publisher interface {
		Publish(ctx context.Context, ev Event) error
		Close(ctx context.Context) error
	}
)

const (
	// TypeCreated fires on the first turn of a new session.
	TypeCreated Type = "session.created"
	// TypeCompleted fires when a configuration is confirmed complete.
	TypeCompleted Type = "session.completed"
	// TypeReset fires when the user resets a session.
	TypeReset Type = "session.reset"
)

// Created builds a TypeCreated event.
func Created(sessionID string, at time.Time) Event {
	return Event{Type: TypeCreated, SessionID: sessionID, State: configurator.StatePowerSource, At: at.UTC()}
}

// Completed builds a TypeCompleted event.
func Completed(sessionID string, state configurator.State, at time.Time) Event {
	return Event{Type: TypeCompleted, SessionID: sessionID, State: state, Finalized: true, At: at.UTC()}
}

// Reset builds a TypeReset event.
func Reset(sessionID string, state configurator.State, at time.Time) Event {
	return Event{Type: TypeReset, SessionID: sessionID, State: state, At: at.UTC()}
}
