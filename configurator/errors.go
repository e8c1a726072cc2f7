package configurator

import "errors"

var (
	// ErrExtraction indicates the language-model call failed, returned
	// malformed JSON, or emitted a value outside the canonical form table.
	// Recovery: the turn becomes a restate prompt; the session is unchanged.
	ErrExtraction = errors.New("parameter extraction failed")

	// ErrRepository indicates the product catalogue is unreachable or a
	// query failed. Recovery: "momentarily unavailable" prompt; the session
	// is unchanged.
	ErrRepository = errors.New("product repository unavailable")

	// ErrSessionExpired indicates the hot cache no longer holds the session.
	// The orchestrator starts a fresh session and tells the user.
	ErrSessionExpired = errors.New("session expired")

	// ErrSkipNotAllowed rejects a skip intent at S1: a power source is
	// mandatory. Rendered as a normal prompt, never as a transport error.
	ErrSkipNotAllowed = errors.New("power source cannot be skipped")

	// ErrThresholdNotMet rejects finalization while the number of selected
	// components is below the configured minimum.
	ErrThresholdNotMet = errors.New("not enough selected components to finalize")

	// ErrIntegrity indicates an invariant breach during a mutation, such as
	// marking the power source skipped. The turn aborts and nothing is
	// persisted.
	ErrIntegrity = errors.New("session integrity violation")
)
