package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/beedev/recommenderv2/configurator"
	"github.com/beedev/recommenderv2/configurator/catalog"
)

// scriptedChat returns a canned completion and records the last request.
type scriptedChat struct {
	resp Response
	err  error
	last Request
}

func (c *scriptedChat) Complete(_ context.Context, req Request) (Response, error) {
	c.last = req
	if c.err != nil {
		return Response{}, c.err
	}
	return c.resp, nil
}

func TestParse(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		wantErr bool
		check   func(t *testing.T, out Outcome)
	}{
		{
			name: "bare object",
			raw: `{"updates":{"power_source":{"current":"500 A","process":"MIG (GMAW)"}},
				"needs_clarification":false,"clarification_question":"",
				"direct_product_mentions":{},"confidence":{"power_source":0.9}}`,
			check: func(t *testing.T, out Outcome) {
				require.Equal(t, "500 A", out.Updates[configurator.KindPowerSource]["current"])
				require.Equal(t, "MIG (GMAW)", out.Updates[configurator.KindPowerSource]["process"])
				require.InDelta(t, 0.9, out.ConfidenceFor(configurator.KindPowerSource), 1e-9)
				require.False(t, out.NeedsClarification)
			},
		},
		{
			name: "fenced object",
			raw: "Here you go:\n```json\n" +
				`{"updates":{},"needs_clarification":true,"clarification_question":"Which process?",` +
				`"direct_product_mentions":{},"confidence":{}}` + "\n```\nDone.",
			check: func(t *testing.T, out Outcome) {
				require.True(t, out.NeedsClarification)
				require.Equal(t, "Which process?", out.ClarificationQuestion)
				require.True(t, out.Empty())
			},
		},
		{
			name: "prose wrapped object",
			raw: `The extraction is {"updates":{"feeder":{"portability":"portable"}},
				"needs_clarification":false,"clarification_question":"",
				"direct_product_mentions":{},"confidence":{}} as requested`,
			check: func(t *testing.T, out Outcome) {
				require.Equal(t, "portable", out.Updates[configurator.KindFeeder]["portability"])
			},
		},
		{
			name: "near-canonical value coerced",
			raw: `{"updates":{"power_source":{"current":"500A"}},"needs_clarification":false,
				"clarification_question":"","direct_product_mentions":{},"confidence":{}}`,
			check: func(t *testing.T, out Outcome) {
				require.Equal(t, "500 A", out.Updates[configurator.KindPowerSource]["current"])
			},
		},
		{
			name: "attribute outside kind vocabulary dropped",
			raw: `{"updates":{"cooler":{"wire_size":"0.035 inch","duty_cycle":"60%"}},
				"needs_clarification":false,"clarification_question":"",
				"direct_product_mentions":{},"confidence":{}}`,
			check: func(t *testing.T, out Outcome) {
				_, ok := out.Updates[configurator.KindCooler]["wire_size"]
				require.False(t, ok, "cooler does not accept wire_size")
				require.Equal(t, "60%", out.Updates[configurator.KindCooler]["duty_cycle"])
			},
		},
		{
			name: "direct mention kept verbatim",
			raw: `{"updates":{},"needs_clarification":false,"clarification_question":"",
				"direct_product_mentions":{"power_source":"aristo 500ix"},"confidence":{"power_source":1}}`,
			check: func(t *testing.T, out Outcome) {
				require.Equal(t, "aristo 500ix", out.DirectMentions[configurator.KindPowerSource])
				require.False(t, out.Empty())
			},
		},
		{
			name:    "no JSON at all",
			raw:     "I could not parse that message.",
			wantErr: true,
		},
		{
			name: "missing required field",
			raw: `{"updates":{},"needs_clarification":false,
				"direct_product_mentions":{},"clarification_question":""}`,
			wantErr: true,
		},
		{
			name: "clarification without question",
			raw: `{"updates":{},"needs_clarification":true,"clarification_question":"",
				"direct_product_mentions":{},"confidence":{}}`,
			wantErr: true,
		},
		{
			name: "question without clarification flag",
			raw: `{"updates":{},"needs_clarification":false,"clarification_question":"Why?",
				"direct_product_mentions":{},"confidence":{}}`,
			wantErr: true,
		},
		{
			name: "unknown component key",
			raw: `{"updates":{"gearbox":{"current":"500 A"}},"needs_clarification":false,
				"clarification_question":"","direct_product_mentions":{},"confidence":{}}`,
			wantErr: true,
		},
		{
			name: "confidence out of range",
			raw: `{"updates":{},"needs_clarification":false,"clarification_question":"",
				"direct_product_mentions":{},"confidence":{"feeder":1.5}}`,
			wantErr: true,
		},
		{
			name: "uncoercible value",
			raw: `{"updates":{"power_source":{"current":"lots"}},"needs_clarification":false,
				"clarification_question":"","direct_product_mentions":{},"confidence":{}}`,
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := Parse(tc.raw)
			if tc.wantErr {
				require.Error(t, err)
				require.ErrorIs(t, err, configurator.ErrExtraction)
				return
			}
			require.NoError(t, err)
			tc.check(t, out)
		})
	}
}

func TestExtractJSON(t *testing.T) {
	body, err := ExtractJSON("```json\n{\"a\":1}\n```")
	require.NoError(t, err)
	require.Equal(t, `{"a":1}`, body)

	body, err = ExtractJSON("prefix {\"a\":{\"b\":2}} suffix")
	require.NoError(t, err)
	require.Equal(t, `{"a":{"b":2}}`, body)

	_, err = ExtractJSON("nothing here")
	require.Error(t, err)
}

func TestNewRequiresChat(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)

	e, err := New(Options{Chat: &scriptedChat{}})
	require.NoError(t, err)
	require.Equal(t, DefaultHistory, e.history)
}

func TestExtract(t *testing.T) {
	chat := &scriptedChat{resp: Response{Text: `{"updates":{"power_source":{"current":"300 A"}},
		"needs_clarification":false,"clarification_question":"",
		"direct_product_mentions":{},"confidence":{"power_source":0.8}}`}}
	e, err := New(Options{Chat: chat})
	require.NoError(t, err)

	out, err := e.Extract(context.Background(), Input{
		Message: "make it 300 amps",
		State:   configurator.StatePowerSource,
		Master:  configurator.NewMasterRecord(),
	})
	require.NoError(t, err)
	require.Equal(t, "300 A", out.Updates[configurator.KindPowerSource]["current"])
	require.Equal(t, systemPrompt, chat.last.System, "system prompt must be the stable block")

	_, err = e.Extract(context.Background(), Input{Message: "   "})
	require.ErrorIs(t, err, configurator.ErrExtraction, "blank message cannot be extracted")

	chat.err = errors.New("boom")
	_, err = e.Extract(context.Background(), Input{Message: "hello"})
	require.ErrorIs(t, err, configurator.ErrExtraction, "transport errors surface as extraction errors")
}

func TestPromptContents(t *testing.T) {
	names := catalog.Names{
		configurator.KindPowerSource: {
			"Aristo 500ix", "Fabricator 252i", "Fabricator EM 215ic", "Firepower 250",
			"Powercut 900", "Rebel EMP 205ic", "Rebel EMP 235ic", "Renegade ES 300i",
			"Rogue ES 180i", "Ruffian ESP 150", "Warrior 400i", "Warrior 500i",
		},
		configurator.KindFeeder: {"RobustFeed AP", "RobustFeed U6"},
	}
	chat := &scriptedChat{resp: Response{Text: `{"updates":{},"needs_clarification":true,
		"clarification_question":"?","direct_product_mentions":{},"confidence":{}}`}}
	e, err := New(Options{Chat: chat, Names: names, History: 2})
	require.NoError(t, err)

	master := configurator.NewMasterRecord()
	master.Bag(configurator.KindPowerSource).Set("current", "500 A")
	log := []configurator.LogEntry{
		{Role: "user", Text: "first"},
		{Role: "assistant", Text: "second"},
		{Role: "user", Text: "third"},
	}

	_, err = e.Extract(context.Background(), Input{
		Message: "something portable",
		State:   configurator.StateFeeder,
		Master:  master,
		Log:     log,
	})
	require.NoError(t, err)

	prompt := chat.last.User
	require.Contains(t, prompt, `USER MESSAGE: "something portable"`)
	require.Contains(t, prompt, "CURRENT STATE: feeder_selection")
	require.Contains(t, prompt, "FOCUS: requirements for the feeder component.")
	require.Contains(t, prompt, `"current": "500 A"`, "master snapshot is embedded")
	require.Contains(t, prompt, "Aristo 500ix")
	require.Contains(t, prompt, "... and 2 more", "name list is capped at ten per kind")
	require.Contains(t, prompt, "RobustFeed AP")
	require.NotContains(t, prompt, "user: first", "log is trimmed to the history cap")
	require.Contains(t, prompt, "assistant: second")
	require.Contains(t, prompt, "user: third")
}
