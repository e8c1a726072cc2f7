package events_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/beedev/recommenderv2/configurator"
	"github.com/beedev/recommenderv2/configurator/events"
)

func TestCreated(t *testing.T) {
	at := time.Date(2026, 2, 11, 9, 30, 0, 0, time.FixedZone("CET", 3600))
	ev := events.Created("sess-1", at)

	require.Equal(t, events.TypeCreated, ev.Type)
	require.Equal(t, "sess-1", ev.SessionID)
	require.Equal(t, configurator.StatePowerSource, ev.State, "new sessions always start at the first state")
	require.False(t, ev.Finalized)
	require.Equal(t, time.UTC, ev.At.Location())
	require.True(t, ev.At.Equal(at))
}

func TestCompleted(t *testing.T) {
	at := time.Now()
	ev := events.Completed("sess-2", configurator.StateFinalize, at)

	require.Equal(t, events.TypeCompleted, ev.Type)
	require.Equal(t, configurator.StateFinalize, ev.State)
	require.True(t, ev.Finalized)
	require.Equal(t, time.UTC, ev.At.Location())
}

func TestReset(t *testing.T) {
	ev := events.Reset("sess-3", configurator.StateTorch, time.Now())

	require.Equal(t, events.TypeReset, ev.Type)
	require.Equal(t, configurator.StateTorch, ev.State, "reset records the state being abandoned")
	require.False(t, ev.Finalized)
}
