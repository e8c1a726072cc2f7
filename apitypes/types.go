// Package apitypes defines the HTTP wire types of the configurator service
// and their mappings to and from the orchestrator's domain types. The wire
// surface is deliberately flat JSON: every field a front end needs to render
// a turn, nothing internal.
package apitypes

import (
	"time"

	"github.com/beedev/recommenderv2/configurator"
	"github.com/beedev/recommenderv2/configurator/orchestrator"
	"github.com/beedev/recommenderv2/configurator/store"
)

type (
	// MessageRequest is the POST /configurator/message payload.
	MessageRequest struct {
		// SessionID resumes an existing session. Empty starts a new one.
		SessionID string `json:"session_id,omitempty"`
		// Message is the user's utterance.
		Message string `json:"message"`
		// Language switches the reply language for the session when set.
		Language string `json:"language,omitempty"`
		// Reset discards the session and starts fresh under the same id.
		Reset bool `json:"reset,omitempty"`
	}

	// Option is one presented candidate, numbered for rank selection on the
	// next turn.
	Option struct {
		Rank        int    `json:"rank"`
		GIN         string `json:"gin"`
		Name        string `json:"name"`
		Description string `json:"description,omitempty"`
	}

	// SessionResponse is the envelope returned by the message and state
	// endpoints.
	SessionResponse struct {
		SessionID    string                    `json:"session_id"`
		CurrentState string                    `json:"current_state"`
		Message      string                    `json:"message,omitempty"`
		Options      []Option                  `json:"options,omitempty"`
		Cart         configurator.Cart         `json:"cart"`
		Master       configurator.MasterRecord `json:"master"`
		Completed    bool                      `json:"completed"`
	}

	// ArchiveRecord is one archived session summary, payload omitted.
	ArchiveRecord struct {
		SessionID       string    `json:"session_id"`
		CreatedAt       time.Time `json:"created_at"`
		CompletedAt     time.Time `json:"completed_at"`
		DurationSeconds float64   `json:"duration_seconds"`
		FinalState      string    `json:"final_state"`
		Finalized       bool      `json:"finalized"`
		Messages        int       `json:"messages"`
		UserMessages    int       `json:"user_messages"`
		Language        string    `json:"language,omitempty"`
	}

	// ArchiveRecentResponse is the GET /configurator/archive/recent envelope.
	ArchiveRecentResponse struct {
		Records []ArchiveRecord `json:"records"`
	}

	// ArchiveStatsResponse is the GET /configurator/archive/stats envelope.
	ArchiveStatsResponse struct {
		Total            int64   `json:"total"`
		Finalized        int64   `json:"finalized"`
		FinalizationRate float64 `json:"finalization_rate"`
	}

	// ErrorResponse carries a transport-level failure.
	ErrorResponse struct {
		Error string `json:"error"`
	}
)

// ToRequest maps the wire payload onto an orchestrator request.
func (r *MessageRequest) ToRequest() orchestrator.Request {
	return orchestrator.Request{
		SessionID: r.SessionID,
		Message:   r.Message,
		Language:  r.Language,
		Reset:     r.Reset,
	}
}

// FromResponse maps a turn outcome onto the wire envelope.
func FromResponse(resp *orchestrator.Response) *SessionResponse {
	out := &SessionResponse{
		SessionID:    resp.SessionID,
		CurrentState: string(resp.State),
		Message:      resp.Message,
		Cart:         resp.Cart,
		Master:       resp.Master,
		Completed:    resp.Completed,
	}
	for _, opt := range resp.Options {
		out.Options = append(out.Options, Option{
			Rank:        opt.Rank,
			GIN:         opt.GIN,
			Name:        opt.Name,
			Description: opt.Description,
		})
	}
	return out
}

// FromRecord reduces an archive record to its wire summary.
func FromRecord(rec store.Record) ArchiveRecord {
	return ArchiveRecord{
		SessionID:       rec.SessionID,
		CreatedAt:       rec.CreatedAt,
		CompletedAt:     rec.CompletedAt,
		DurationSeconds: rec.DurationSeconds,
		FinalState:      string(rec.FinalState),
		Finalized:       rec.Finalized,
		Messages:        rec.Messages,
		UserMessages:    rec.UserMessages,
		Language:        rec.Language,
	}
}

// FromStats maps archive aggregates onto the wire envelope.
func FromStats(s store.Stats) ArchiveStatsResponse {
	return ArchiveStatsResponse{
		Total:            s.Total,
		Finalized:        s.Finalized,
		FinalizationRate: s.FinalizationRate,
	}
}
