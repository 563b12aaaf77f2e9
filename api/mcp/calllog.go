package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/praxisvoice/pkg/calllog"
)

var (
	callLogToolName    = "get_call_log"
	callLogDescription = "Look up the stored log of a phone call by its call id: caller number, start and end time, duration, the reason of the call and the caller's name."
)

// CallLogInput represents the input arguments for the call log tool.
type CallLogInput struct {
	CallID string `json:"call_id" jsonschema:"the call id (CallSid) of the phone call"`
}

// CallLogOutput represents the output of the call log tool. Timestamps are
// RFC 3339 and empty when unknown.
type CallLogOutput struct {
	CallID          string `json:"call_id"`
	CallerNumber    string `json:"caller_number,omitempty"`
	StartedAt       string `json:"started_at,omitempty"`
	EndedAt         string `json:"ended_at,omitempty"`
	DurationSeconds *int   `json:"duration_seconds,omitempty"`
	ReasonShort     string `json:"reason_short,omitempty"`
	ReasonLong      string `json:"reason_long,omitempty"`
	CandidateName   string `json:"candidate_name,omitempty"`
	UpdatedAt       string `json:"updated_at"`
}

func newCallLogOutput(r *calllog.Record) CallLogOutput {
	format := func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.UTC().Format(time.RFC3339)
	}
	return CallLogOutput{
		CallID:          r.CallID,
		CallerNumber:    r.CallerNumber,
		StartedAt:       format(r.StartedAt),
		EndedAt:         format(r.EndedAt),
		DurationSeconds: r.DurationSeconds,
		ReasonShort:     r.ReasonShort,
		ReasonLong:      r.ReasonLong,
		CandidateName:   r.CandidateName,
		UpdatedAt:       format(&r.UpdatedAt),
	}
}

// handleGetCallLog processes a call log request.
func (s *Server) handleGetCallLog(ctx context.Context, _ *mcp.CallToolRequest, input CallLogInput) (*mcp.CallToolResult, CallLogOutput, error) {
	if input.CallID == "" {
		return errorResult("call_id is required"), CallLogOutput{}, nil
	}

	record, err := s.config.Store.Get(ctx, input.CallID)
	if err != nil {
		var notFound calllog.NotFoundError
		if errors.As(err, &notFound) {
			return errorResult(fmt.Sprintf("No call log for call id %s", input.CallID)), CallLogOutput{}, nil
		}
		s.config.Logger.Error("failed to get call log", "call_id", input.CallID, "error", err)
		return errorResult(fmt.Sprintf("Call log lookup failed: %v", err)), CallLogOutput{}, nil
	}

	output := newCallLogOutput(record)
	return textResult(output), output, nil
}
