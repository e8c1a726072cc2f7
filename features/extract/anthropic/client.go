// Package anthropic provides an extract.ChatClient backed by the Anthropic
// Claude Messages API. It translates extraction requests into Message calls
// using github.com/anthropics/anthropic-sdk-go and joins the text blocks of
// the reply into the provider-agnostic response shape.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/beedev/recommenderv2/configurator/extract"
)

// MessagesClient captures the subset of the Anthropic SDK client used by the
// adapter. It is satisfied by *sdk.MessageService so callers can pass either
// a real client or a mock in tests.
type MessagesClient interface {
	New(ctx context.Context, body sdk.MessageNewParams, opts ...option.RequestOption) (*sdk.Message, error)
}

// Options configures the Anthropic adapter.
type Options struct {
	// Client is the Messages service. Required.
	Client MessagesClient

	// Model is the Claude model identifier used for extraction calls.
	// Required. Use the typed model constants from
	// github.com/anthropics/anthropic-sdk-go or the identifiers from the
	// Anthropic model reference.
	Model string

	// MaxTokens caps completions when the request does not set one. Zero
	// means DefaultMaxTokens.
	MaxTokens int
}

// Client implements extract.ChatClient on top of Anthropic Claude Messages.
type Client struct {
	msg       MessagesClient
	model     string
	maxTokens int
}

// DefaultMaxTokens bounds completions when neither the request nor the
// options set a cap.
const DefaultMaxTokens = 1024

// New builds an Anthropic-backed chat client from the provided options.
func New(opts Options) (*Client, error) {
	if opts.Client == nil {
		return nil, errors.New("anthropic: client is required")
	}
	if opts.Model == "" {
		return nil, errors.New("anthropic: model is required")
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &Client{msg: opts.Client, model: opts.Model, maxTokens: maxTokens}, nil
}

// NewFromAPIKey constructs a client using the default Anthropic HTTP client.
func NewFromAPIKey(apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("anthropic: api key is required")
	}
	ac := sdk.NewClient(option.WithAPIKey(apiKey))
	return New(Options{Client: &ac.Messages, Model: model})
}

// Complete issues one Messages.New request. Temperature is pinned to zero so
// the same turn yields the same parse.
func (c *Client) Complete(ctx context.Context, req extract.Request) (extract.Response, error) {
	if req.User == "" {
		return extract.Response{}, errors.New("anthropic: user prompt is required")
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}
	params := sdk.MessageNewParams{
		MaxTokens:   int64(maxTokens),
		Messages:    []sdk.MessageParam{sdk.NewUserMessage(sdk.NewTextBlock(req.User))},
		Model:       sdk.Model(c.model),
		Temperature: sdk.Float(0),
	}
	if req.System != "" {
		params.System = []sdk.TextBlockParam{{Text: req.System}}
	}
	msg, err := c.msg.New(ctx, params)
	if err != nil {
		if isRateLimited(err) {
			return extract.Response{}, fmt.Errorf("%w: %w", extract.ErrRateLimited, err)
		}
		return extract.Response{}, fmt.Errorf("anthropic messages.new: %w", err)
	}
	if msg == nil {
		return extract.Response{}, errors.New("anthropic: response message is nil")
	}
	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	return extract.Response{
		Text: text.String(),
		Usage: extract.TokenUsage{
			InputTokens:  int(msg.Usage.InputTokens),
			OutputTokens: int(msg.Usage.OutputTokens),
		},
	}, nil
}

// isRateLimited reports whether err is an HTTP 429 from the provider.
func isRateLimited(err error) bool {
	var apierr *sdk.Error
	return errors.As(err, &apierr) && apierr.StatusCode == http.StatusTooManyRequests
}
