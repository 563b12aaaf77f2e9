package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/praxisvoice/pkg/callflow"
	"github.com/papercomputeco/praxisvoice/pkg/calllog"
	"github.com/papercomputeco/praxisvoice/pkg/nlu"
)

var (
	classifyToolName    = "classify_utterance"
	classifyDescription = "Classify a German caller utterance of the dental practice phone line. Returns the normalized text, intent, short reason, yes/no sentiment, an introduced caller name and a matching FAQ answer."

	simulateToolName    = "simulate_turn"
	simulateDescription = "Run one dialog turn as a dry run: given the current call state and what the caller said, returns the next state, the spoken response and the call-log fields the turn would write. Nothing is persisted."
)

// ClassifyInput represents the input arguments for the classify tool.
type ClassifyInput struct {
	Utterance string `json:"utterance" jsonschema:"the transcribed caller speech"`
}

// ClassifyOutput represents the output of the classify tool.
type ClassifyOutput struct {
	Normalized    string `json:"normalized"`
	Intent        string `json:"intent"`
	ReasonShort   string `json:"reason_short,omitempty"`
	Sentiment     string `json:"sentiment"`
	CandidateName string `json:"candidate_name,omitempty"`
	FAQAnswer     string `json:"faq_answer,omitempty"`
}

// SimulateTurnInput represents the input arguments for the simulate tool.
type SimulateTurnInput struct {
	State     string `json:"state,omitempty" jsonschema:"the call state the turn starts in (default: main)"`
	Utterance string `json:"utterance" jsonschema:"the transcribed caller speech, empty for silence"`
}

// LogFields are the call-log fields a turn writes.
type LogFields struct {
	CallerNumber  string `json:"caller_number,omitempty"`
	ReasonShort   string `json:"reason_short,omitempty"`
	ReasonLong    string `json:"reason_long,omitempty"`
	CandidateName string `json:"candidate_name,omitempty"`
}

// SimulateTurnOutput represents the output of the simulate tool.
type SimulateTurnOutput struct {
	State      string         `json:"state"`
	NextState  string         `json:"next_state"`
	Action     string         `json:"action"`
	Speech     []string       `json:"speech"`
	Prompt     string         `json:"prompt,omitempty"`
	Transfer   string         `json:"transfer,omitempty"`
	Log        LogFields      `json:"log"`
	Classified ClassifyOutput `json:"classification"`
}

func newClassifyOutput(cls nlu.Classification) ClassifyOutput {
	return ClassifyOutput{
		Normalized:    cls.Normalized,
		Intent:        string(cls.Intent),
		ReasonShort:   cls.ReasonShort,
		Sentiment:     string(cls.Sentiment),
		CandidateName: cls.CandidateName,
		FAQAnswer:     cls.FAQAnswer,
	}
}

func newLogFields(p calllog.Patch) LogFields {
	deref := func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	}
	return LogFields{
		CallerNumber:  deref(p.CallerNumber),
		ReasonShort:   deref(p.ReasonShort),
		ReasonLong:    deref(p.ReasonLong),
		CandidateName: deref(p.CandidateName),
	}
}

// handleClassify processes a classify request.
func (s *Server) handleClassify(_ context.Context, _ *mcp.CallToolRequest, input ClassifyInput) (*mcp.CallToolResult, ClassifyOutput, error) {
	s.config.Logger.Debug("MCP classify request", "utterance", input.Utterance)

	output := newClassifyOutput(s.config.Engine.Classifier().Classify(input.Utterance))
	return textResult(output), output, nil
}

// handleSimulateTurn processes a simulate request.
func (s *Server) handleSimulateTurn(_ context.Context, _ *mcp.CallToolRequest, input SimulateTurnInput) (*mcp.CallToolResult, SimulateTurnOutput, error) {
	state, _ := callflow.ParseState(input.State)

	s.config.Logger.Debug("MCP simulate request",
		"state", state,
		"utterance", input.Utterance,
	)

	out := s.config.Engine.Turn(callflow.Turn{
		CallID:    "simulation",
		State:     string(state),
		Utterance: input.Utterance,
	})

	speech := out.Action.Speech
	if speech == nil {
		speech = []string{}
	}

	output := SimulateTurnOutput{
		State:      string(state),
		NextState:  string(out.NextState),
		Action:     string(out.Action.Kind),
		Speech:     speech,
		Prompt:     out.Action.Prompt,
		Transfer:   out.Action.Target,
		Log:        newLogFields(out.Log),
		Classified: newClassifyOutput(out.Classification),
	}
	return textResult(output), output, nil
}

// textResult renders output as the JSON text content of a tool result.
func textResult(output any) *mcp.CallToolResult {
	jsonBytes, err := json.Marshal(output)
	if err != nil {
		return errorResult(fmt.Sprintf("Failed to serialize results: %v", err))
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}
}

func errorResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
	}
}
