// Package openai provides an extract.ChatClient backed by the OpenAI Chat
// Completions API. It translates extraction requests into ChatCompletion
// calls using github.com/openai/openai-go and maps completions back to the
// provider-agnostic response shape.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	sdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/beedev/recommenderv2/configurator/extract"
)

// CompletionsClient captures the subset of the openai-go chat completions
// service used by the adapter. *sdk.ChatCompletionService satisfies it.
type CompletionsClient interface {
	New(ctx context.Context, params sdk.ChatCompletionNewParams, opts ...option.RequestOption) (*sdk.ChatCompletion, error)
}

// Options configures the OpenAI adapter.
type Options struct {
	// Client is the chat completions service. Required.
	Client CompletionsClient

	// Model identifies the model used for extraction calls. Required.
	Model string

	// MaxTokens caps completions when the request does not set one. Zero
	// means DefaultMaxTokens.
	MaxTokens int
}

// Client implements extract.ChatClient via the OpenAI Chat Completions API.
type Client struct {
	chat      CompletionsClient
	model     string
	maxTokens int
}

// DefaultMaxTokens bounds completions when neither the request nor the
// options set a cap. Extraction replies are a single JSON object and never
// come close to this.
const DefaultMaxTokens = 1024

// New builds an OpenAI-backed chat client from the provided options.
func New(opts Options) (*Client, error) {
	if opts.Client == nil {
		return nil, errors.New("openai: client is required")
	}
	if opts.Model == "" {
		return nil, errors.New("openai: model is required")
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &Client{chat: opts.Client, model: opts.Model, maxTokens: maxTokens}, nil
}

// NewFromAPIKey constructs a client using the default openai-go HTTP client.
func NewFromAPIKey(apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("openai: api key is required")
	}
	oc := sdk.NewClient(option.WithAPIKey(apiKey))
	return New(Options{Client: &oc.Chat.Completions, Model: model})
}

// Complete issues one chat completion. Temperature is pinned to zero so the
// same turn yields the same parse.
func (c *Client) Complete(ctx context.Context, req extract.Request) (extract.Response, error) {
	if req.User == "" {
		return extract.Response{}, errors.New("openai: user prompt is required")
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}
	messages := make([]sdk.ChatCompletionMessageParamUnion, 0, 2)
	if req.System != "" {
		messages = append(messages, sdk.SystemMessage(req.System))
	}
	messages = append(messages, sdk.UserMessage(req.User))

	completion, err := c.chat.New(ctx, sdk.ChatCompletionNewParams{
		Model:       sdk.ChatModel(c.model),
		Messages:    messages,
		MaxTokens:   sdk.Int(int64(maxTokens)),
		Temperature: sdk.Float(0),
	})
	if err != nil {
		if isRateLimited(err) {
			return extract.Response{}, fmt.Errorf("%w: %w", extract.ErrRateLimited, err)
		}
		return extract.Response{}, fmt.Errorf("openai chat.completions.new: %w", err)
	}
	if len(completion.Choices) == 0 {
		return extract.Response{}, errors.New("openai: completion has no choices")
	}
	return extract.Response{
		Text: completion.Choices[0].Message.Content,
		Usage: extract.TokenUsage{
			InputTokens:  int(completion.Usage.PromptTokens),
			OutputTokens: int(completion.Usage.CompletionTokens),
		},
	}, nil
}

// isRateLimited reports whether err is an HTTP 429 from the provider.
func isRateLimited(err error) bool {
	var apierr *sdk.Error
	return errors.As(err, &apierr) && apierr.StatusCode == http.StatusTooManyRequests
}
