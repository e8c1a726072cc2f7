// Package bedrock provides an extract.ChatClient backed by the AWS Bedrock
// Converse API. It translates extraction requests into Converse calls and
// joins the text blocks of the reply into the provider-agnostic response
// shape. Throttling signals (ThrottlingException, HTTP 429) are surfaced as
// extract.ErrRateLimited so the adaptive limiter can back off.
package bedrock

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	smithy "github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"

	"github.com/beedev/recommenderv2/configurator/extract"
)

// RuntimeClient captures the subset of the Bedrock runtime API used by the
// adapter. *bedrockruntime.Client satisfies it.
type RuntimeClient interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// Options configures the Bedrock adapter.
type Options struct {
	// Runtime is the Bedrock runtime client. Required.
	Runtime RuntimeClient

	// Model is the Bedrock model identifier used for extraction calls.
	// Required.
	Model string

	// MaxTokens caps completions when the request does not set one. Zero
	// means DefaultMaxTokens.
	MaxTokens int
}

// Client implements extract.ChatClient via the Bedrock Converse API.
type Client struct {
	runtime   RuntimeClient
	model     string
	maxTokens int
}

// DefaultMaxTokens bounds completions when neither the request nor the
// options set a cap.
const DefaultMaxTokens = 1024

// New builds a Bedrock-backed chat client from the provided options.
func New(opts Options) (*Client, error) {
	if opts.Runtime == nil {
		return nil, errors.New("bedrock: runtime client is required")
	}
	if opts.Model == "" {
		return nil, errors.New("bedrock: model is required")
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &Client{runtime: opts.Runtime, model: opts.Model, maxTokens: maxTokens}, nil
}

// Complete issues one Converse request. Temperature is pinned to zero so the
// same turn yields the same parse.
func (c *Client) Complete(ctx context.Context, req extract.Request) (extract.Response, error) {
	if req.User == "" {
		return extract.Response{}, errors.New("bedrock: user prompt is required")
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}
	input := &bedrockruntime.ConverseInput{
		ModelId: aws.String(c.model),
		Messages: []brtypes.Message{{
			Role:    brtypes.ConversationRoleUser,
			Content: []brtypes.ContentBlock{&brtypes.ContentBlockMemberText{Value: req.User}},
		}},
		InferenceConfig: &brtypes.InferenceConfiguration{
			MaxTokens:   aws.Int32(int32(maxTokens)),
			Temperature: aws.Float32(0),
		},
	}
	if req.System != "" {
		input.System = []brtypes.SystemContentBlock{&brtypes.SystemContentBlockMemberText{Value: req.System}}
	}
	out, err := c.runtime.Converse(ctx, input)
	if err != nil {
		if isRateLimited(err) {
			return extract.Response{}, fmt.Errorf("%w: %w", extract.ErrRateLimited, err)
		}
		return extract.Response{}, fmt.Errorf("bedrock converse: %w", err)
	}
	msg, ok := out.Output.(*brtypes.ConverseOutputMemberMessage)
	if !ok {
		return extract.Response{}, errors.New("bedrock: converse output has no message")
	}
	var text strings.Builder
	for _, block := range msg.Value.Content {
		if tb, ok := block.(*brtypes.ContentBlockMemberText); ok {
			text.WriteString(tb.Value)
		}
	}
	resp := extract.Response{Text: text.String()}
	if out.Usage != nil {
		if out.Usage.InputTokens != nil {
			resp.Usage.InputTokens = int(*out.Usage.InputTokens)
		}
		if out.Usage.OutputTokens != nil {
			resp.Usage.OutputTokens = int(*out.Usage.OutputTokens)
		}
	}
	return resp, nil
}

// isRateLimited reports whether err represents a provider rate limiting
// condition. It treats both HTTP 429 responses and provider error codes like
// ThrottlingException as rate-limited signals.
func isRateLimited(err error) bool {
	if err == nil {
		return false
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "ThrottlingException", "TooManyRequestsException":
			return true
		}
	}
	var respErr *smithyhttp.ResponseError
	if errors.As(err, &respErr) && respErr.HTTPStatusCode() == 429 {
		return true
	}
	return false
}
