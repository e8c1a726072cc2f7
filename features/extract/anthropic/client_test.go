package anthropic_test

import (
	"context"
	"errors"
	"testing"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/require"

	"github.com/beedev/recommenderv2/configurator/extract"
	"github.com/beedev/recommenderv2/features/extract/anthropic"
)

type mockMessages struct {
	captured sdk.MessageNewParams
	resp     *sdk.Message
	err      error
	calls    int
}

func (m *mockMessages) New(_ context.Context, params sdk.MessageNewParams, _ ...option.RequestOption) (*sdk.Message, error) {
	m.calls++
	m.captured = params
	if m.err != nil {
		return nil, m.err
	}
	return m.resp, nil
}

func TestNewValidatesOptions(t *testing.T) {
	_, err := anthropic.New(anthropic.Options{Model: "claude-3-5-haiku-latest"})
	require.Error(t, err)

	_, err = anthropic.New(anthropic.Options{Client: &mockMessages{}})
	require.Error(t, err)

	client, err := anthropic.New(anthropic.Options{Client: &mockMessages{}, Model: "claude-3-5-haiku-latest"})
	require.NoError(t, err)
	require.NotNil(t, client)
}

func TestCompleteJoinsTextBlocks(t *testing.T) {
	mock := &mockMessages{resp: &sdk.Message{
		Content: []sdk.ContentBlockUnion{
			{Type: "text", Text: `{"updates":`},
			{Type: "text", Text: `{}}`},
		},
		Usage: sdk.Usage{InputTokens: 140, OutputTokens: 22},
	}}
	client, err := anthropic.New(anthropic.Options{Client: mock, Model: "claude-3-5-haiku-latest"})
	require.NoError(t, err)

	resp, err := client.Complete(context.Background(), extract.Request{
		System:    "You extract welding parameters.",
		User:      "I need 300 amps",
		MaxTokens: 512,
	})
	require.NoError(t, err)
	require.Equal(t, `{"updates":{}}`, resp.Text)
	require.Equal(t, 140, resp.Usage.InputTokens)
	require.Equal(t, 22, resp.Usage.OutputTokens)

	require.Equal(t, sdk.Model("claude-3-5-haiku-latest"), mock.captured.Model)
	require.EqualValues(t, 512, mock.captured.MaxTokens)
	require.True(t, mock.captured.Temperature.Valid())
	require.Zero(t, mock.captured.Temperature.Value)
	require.Len(t, mock.captured.Messages, 1)
	require.Len(t, mock.captured.System, 1)
	require.Equal(t, "You extract welding parameters.", mock.captured.System[0].Text)
}

func TestCompleteDefaultsMaxTokens(t *testing.T) {
	mock := &mockMessages{resp: &sdk.Message{
		Content: []sdk.ContentBlockUnion{{Type: "text", Text: "{}"}},
	}}
	client, err := anthropic.New(anthropic.Options{Client: mock, Model: "claude-3-5-haiku-latest"})
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), extract.Request{User: "hello"})
	require.NoError(t, err)
	require.EqualValues(t, anthropic.DefaultMaxTokens, mock.captured.MaxTokens)
	require.Empty(t, mock.captured.System)
}

func TestCompleteRequiresUserPrompt(t *testing.T) {
	mock := &mockMessages{}
	client, err := anthropic.New(anthropic.Options{Client: mock, Model: "claude-3-5-haiku-latest"})
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), extract.Request{System: "only system"})
	require.Error(t, err)
	require.Zero(t, mock.calls)
}

func TestCompleteWrapsTransportError(t *testing.T) {
	mock := &mockMessages{err: errors.New("boom")}
	client, err := anthropic.New(anthropic.Options{Client: mock, Model: "claude-3-5-haiku-latest"})
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), extract.Request{User: "hi"})
	require.Error(t, err)
	require.NotErrorIs(t, err, extract.ErrRateLimited)
}
