// Package extract turns free-form user messages into normalized parameter
// updates using a chat language model. It defines a provider-agnostic
// ChatClient port so the orchestrator can invoke models without coupling to
// specific SDKs; adapters live under features/extract.
//
// The model's reply must be a single JSON object matching the output
// contract compiled in schema.go. Replies that fail the contract, or that
// carry values outside the canonical attribute forms, never reach the master
// record: Extract returns configurator.ErrExtraction and the caller treats
// the turn as a restate prompt.
package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/beedev/recommenderv2/configurator"
	"github.com/beedev/recommenderv2/configurator/catalog"
)

type (
	// Request captures one extraction call. Temperature is not a field:
	// adapters pin it to zero so the same message yields the same parse.
	Request struct {
		// System is the stable instruction block.
		System string

		// User is the templated turn prompt.
		User string

		// MaxTokens caps the completion. Zero means the adapter default.
		MaxTokens int
	}

	// Response wraps the raw completion returned by a provider.
	Response struct {
		// Text is the completion body.
		Text string

		// Usage reports token counts when the provider reports them. Both
		// fields are zero otherwise.
		Usage TokenUsage
	}

	// TokenUsage records prompt/completion token counts for cost tracking.
	TokenUsage struct {
		// InputTokens counts tokens consumed by the prompt.
		InputTokens int
		// OutputTokens counts tokens produced by the completion.
		OutputTokens int
	}

	// ChatClient is the language-model port. Implementations wrap provider
	// SDKs and must be safe for concurrent use across sessions.
	//
	// Contract:
	// - Temperature is pinned to zero by the implementation.
	// - Returned errors are transport-level; the caller wraps them into
	//   configurator.ErrExtraction.
	ChatClient interface {
		// Complete sends one chat completion request and returns the raw
		// completion. Blocks until the provider answers or ctx expires.
		Complete(ctx context.Context, req Request) (Response, error)
	}

	// Input is the per-turn context handed to Extract.
	Input struct {
		// Message is the user's latest utterance.
		Message string
		// State is the current configurator state.
		State configurator.State
		// Master is a snapshot of the record accumulated so far.
		Master configurator.MasterRecord
		// Log holds recent conversation entries, oldest first.
		Log []configurator.LogEntry
	}

	// Outcome is the validated, normalized extraction result.
	//
	// Contract:
	// - Updates values are canonical per the attribute form table.
	// - ClarificationQuestion is non-empty iff NeedsClarification.
	// - Confidence values lie in [0, 1].
	Outcome struct {
		// Updates maps component kind to attribute deltas. Only kinds the
		// turn mentioned are present.
		Updates map[configurator.Kind]map[string]string

		// NeedsClarification is set when the model could not extract
		// anything actionable.
		NeedsClarification bool

		// ClarificationQuestion is the follow-up to ask the user.
		ClarificationQuestion string

		// DirectMentions maps component kind to the raw product-name token
		// the user used.
		DirectMentions map[configurator.Kind]string

		// Confidence maps component kind to the model's certainty.
		Confidence map[configurator.Kind]float64

		// Reasoning is the model's free-text trace, kept for logs only.
		Reasoning string
	}

	// Extractor implements parameter extraction over a ChatClient.
	Extractor struct {
		chat    ChatClient
		names   catalog.Names
		history int
	}

	// Options configures New.
	Options struct {
		// Chat is the language-model client. Required.
		Chat ChatClient

		// Names is the known-product dictionary surfaced in prompts.
		// Optional; prompts omit the section when empty.
		Names catalog.Names

		// History caps how many conversation-log entries the prompt carries.
		// Zero means DefaultHistory.
		History int
	}
)

// DefaultHistory is how many recent log entries prompts include.
const DefaultHistory = 6

// ErrRateLimited marks provider throttling. Adapters wrap 429-class failures
// with it so the adaptive rate-limit middleware can back off.
var ErrRateLimited = errors.New("extract: rate limited")

// maxPromptNames caps the product names listed per kind in prompts.
const maxPromptNames = 10

// wireKinds maps the serialized kind names used in extraction payloads and
// prompts to component kinds. The set matches the master record's JSON field
// names.
var wireKinds = map[string]configurator.Kind{
	"power_source":   configurator.KindPowerSource,
	"feeder":         configurator.KindFeeder,
	"cooler":         configurator.KindCooler,
	"interconnector": configurator.KindInterconnector,
	"torch":          configurator.KindTorch,
	"accessories":    configurator.KindAccessory,
}

// New returns an Extractor using the given chat client.
func New(opts Options) (*Extractor, error) {
	if opts.Chat == nil {
		return nil, errors.New("extract: chat client is required")
	}
	history := opts.History
	if history <= 0 {
		history = DefaultHistory
	}
	return &Extractor{chat: opts.Chat, names: opts.Names, history: history}, nil
}

// Extract sends one turn to the model and returns the validated outcome.
// All failure modes (transport, malformed JSON, contract violation,
// non-canonical value) wrap configurator.ErrExtraction.
func (e *Extractor) Extract(ctx context.Context, in Input) (Outcome, error) {
	if strings.TrimSpace(in.Message) == "" {
		return Outcome{}, fmt.Errorf("%w: empty message", configurator.ErrExtraction)
	}
	resp, err := e.chat.Complete(ctx, Request{System: systemPrompt, User: e.prompt(in)})
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: %v", configurator.ErrExtraction, err)
	}
	return Parse(resp.Text)
}

// wireOutcome mirrors the raw contract object before kind mapping.
type wireOutcome struct {
	Updates               map[string]map[string]string `json:"updates"`
	NeedsClarification    bool                         `json:"needs_clarification"`
	ClarificationQuestion string                       `json:"clarification_question"`
	DirectMentions        map[string]string            `json:"direct_product_mentions"`
	Confidence            map[string]float64           `json:"confidence"`
	Reasoning             string                       `json:"reasoning"`
}

// Parse validates a raw completion against the output contract and returns
// the normalized outcome. Attribute names outside the vocabulary of their
// kind are dropped; attribute values that cannot be coerced to canonical
// form fail the parse.
func Parse(raw string) (Outcome, error) {
	body, err := ExtractJSON(raw)
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: %v", configurator.ErrExtraction, err)
	}

	var doc any
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return Outcome{}, fmt.Errorf("%w: invalid JSON: %v", configurator.ErrExtraction, err)
	}
	if err := contract.Validate(doc); err != nil {
		return Outcome{}, fmt.Errorf("%w: contract violation: %v", configurator.ErrExtraction, err)
	}

	var wire wireOutcome
	if err := json.Unmarshal([]byte(body), &wire); err != nil {
		return Outcome{}, fmt.Errorf("%w: %v", configurator.ErrExtraction, err)
	}

	out := Outcome{
		NeedsClarification:    wire.NeedsClarification,
		ClarificationQuestion: strings.TrimSpace(wire.ClarificationQuestion),
		Reasoning:             strings.TrimSpace(wire.Reasoning),
	}
	for name, attrs := range wire.Updates {
		kind := wireKinds[name]
		for attr, value := range attrs {
			if !kind.Accepts(attr) {
				continue
			}
			canonical, err := configurator.Normalize(attr, value)
			if err != nil {
				return Outcome{}, fmt.Errorf("%w: %s.%s: %v", configurator.ErrExtraction, name, attr, err)
			}
			if err := configurator.CheckCanonical(attr, canonical); err != nil {
				return Outcome{}, fmt.Errorf("%w: %s.%s: %v", configurator.ErrExtraction, name, attr, err)
			}
			if out.Updates == nil {
				out.Updates = make(map[configurator.Kind]map[string]string)
			}
			if out.Updates[kind] == nil {
				out.Updates[kind] = make(map[string]string)
			}
			out.Updates[kind][attr] = canonical
		}
	}
	for name, mention := range wire.DirectMentions {
		mention = strings.TrimSpace(mention)
		if mention == "" {
			continue
		}
		if out.DirectMentions == nil {
			out.DirectMentions = make(map[configurator.Kind]string)
		}
		out.DirectMentions[wireKinds[name]] = mention
	}
	for name, c := range wire.Confidence {
		if out.Confidence == nil {
			out.Confidence = make(map[configurator.Kind]float64)
		}
		out.Confidence[wireKinds[name]] = c
	}
	return out, nil
}

// Empty reports whether the outcome carries no updates and no mentions.
func (o Outcome) Empty() bool {
	return len(o.Updates) == 0 && len(o.DirectMentions) == 0
}

// ConfidenceFor returns the model's certainty for the kind, zero when the
// model reported none.
func (o Outcome) ConfidenceFor(k configurator.Kind) float64 {
	return o.Confidence[k]
}

// ExtractJSON slices the JSON object out of a completion. Markdown fences
// are stripped; otherwise the text between the first "{" and the last "}"
// is taken.
func ExtractJSON(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if fence := strings.Index(s, "```"); fence >= 0 {
		s = s[fence+3:]
		s = strings.TrimPrefix(s, "json")
		if end := strings.Index(s, "```"); end >= 0 {
			s = s[:end]
		}
		s = strings.TrimSpace(s)
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return "", errors.New("no JSON object in completion")
	}
	return s[start : end+1], nil
}
