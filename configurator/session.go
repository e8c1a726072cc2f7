package configurator

import (
	"fmt"
	"time"
)

type (
	// LogEntry is one conversation turn in the session log.
	LogEntry struct {
		// Role is "user" or "assistant".
		Role string `json:"role"`
		// Text is the message body.
		Text string `json:"text"`
		// At records when the entry was appended, UTC.
		At time.Time `json:"at"`
	}

	// Session is the full per-conversation snapshot persisted between turns.
	//
	// Contract:
	// - Created on the first turn, mutated only by the orchestrator.
	// - Destroyed by cache TTL or explicit reset; archived when completed.
	// - Serialization is canonical: fixed field order, sorted map keys, UTC
	//   timestamps, so encode/decode round-trips byte-equal.
	Session struct {
		// ID is the globally unique session identifier.
		ID string `json:"session_id"`
		// CurrentState is the S1..S7 position.
		CurrentState State `json:"current_state"`
		// Master is the normalized record of what the user wants.
		Master MasterRecord `json:"master"`
		// Cart is the record of what the user selected.
		Cart Cart `json:"cart"`
		// Applicability is filled once a power source is selected.
		Applicability *Applicability `json:"applicability,omitempty"`
		// PendingOptions are the products presented last turn, in rank
		// order. A bare confirmation or rank commits from this list.
		PendingOptions []Product `json:"pending_options,omitempty"`
		// Log is the ordered conversation history.
		Log []LogEntry `json:"conversation_log,omitempty"`
		// Language is the BCP 47 tag responses are composed in.
		Language string `json:"language,omitempty"`
		// Completed is set when S7 confirmed with the threshold met.
		Completed bool `json:"completed"`
		// CreatedAt records session creation, UTC.
		CreatedAt time.Time `json:"created_at"`
		// UpdatedAt records the last successful turn, UTC.
		UpdatedAt time.Time `json:"updated_at"`
	}
)

// NewSession returns a fresh session at S1 with a total master record.
func NewSession(id string, now time.Time) *Session {
	now = now.UTC()
	return &Session{
		ID:           id,
		CurrentState: StatePowerSource,
		Master:       NewMasterRecord(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Append adds a conversation entry and bumps UpdatedAt.
func (s *Session) Append(role, text string, now time.Time) {
	now = now.UTC()
	s.Log = append(s.Log, LogEntry{Role: role, Text: text, At: now})
	s.UpdatedAt = now
}

// LastLog returns up to n most recent log entries in chronological order.
func (s *Session) LastLog(n int) []LogEntry {
	if n <= 0 || len(s.Log) == 0 {
		return nil
	}
	if n > len(s.Log) {
		n = len(s.Log)
	}
	out := make([]LogEntry, n)
	copy(out, s.Log[len(s.Log)-n:])
	return out
}

// Clone returns a deep copy. Turn handling mutates a clone and persists it
// whole, so a failed turn leaves the loaded session untouched.
func (s *Session) Clone() *Session {
	out := *s
	out.Master = s.Master.Clone()
	out.Cart = s.Cart.Clone()
	if s.Applicability != nil {
		app := *s.Applicability
		out.Applicability = &app
	}
	if len(s.PendingOptions) > 0 {
		out.PendingOptions = make([]Product, len(s.PendingOptions))
		for i, p := range s.PendingOptions {
			cp := p
			if len(p.Attributes) > 0 {
				cp.Attributes = make(map[string]string, len(p.Attributes))
				for k, v := range p.Attributes {
					cp.Attributes[k] = v
				}
			}
			out.PendingOptions[i] = cp
		}
	}
	if len(s.Log) > 0 {
		out.Log = make([]LogEntry, len(s.Log))
		copy(out.Log, s.Log)
	}
	return &out
}

// Verify checks the session invariants: the current state lies on the active
// path, NotApplicable entries agree with the applicability row, and the
// power source is never skipped. Returns ErrIntegrity on breach.
func (s *Session) Verify() error {
	if s.Cart.PowerSource.Status == StatusSkipped {
		return fmt.Errorf("%w: power source skipped", ErrIntegrity)
	}
	if !IsActive(s.CurrentState, s.Applicability) {
		return fmt.Errorf("%w: state %s off the active path", ErrIntegrity, s.CurrentState)
	}
	for _, k := range Kinds() {
		if k == KindPowerSource || k == KindAccessory {
			continue
		}
		e := s.Cart.Entry(k)
		if e.Status != StatusNotApplicable {
			continue
		}
		if s.Applicability == nil || s.Applicability.Applicable(k) {
			return fmt.Errorf("%w: %s not applicable but applicability allows it", ErrIntegrity, k)
		}
	}
	return nil
}
