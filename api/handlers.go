package api

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/praxisvoice/pkg/callflow"
	"github.com/papercomputeco/praxisvoice/pkg/calllog"
)

const (
	defaultListLimit = 50
	maxListLimit     = 1000
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// CallListResponse lists call logs, most recently updated first.
type CallListResponse struct {
	Calls []*calllog.Record `json:"calls"`
	Count int               `json:"count"`
}

// ClassifyRequest is the body of POST /v1/dialog/classify.
type ClassifyRequest struct {
	Utterance string `json:"utterance"`
}

// TurnRequest is the body of POST /v1/dialog/turn.
type TurnRequest struct {
	State        string `json:"state"`
	Utterance    string `json:"utterance"`
	CallerNumber string `json:"caller_number,omitempty"`
}

// TurnResponse is the dry-run outcome of a turn. Nothing is persisted.
type TurnResponse struct {
	State      callflow.State   `json:"state"`
	KnownState bool             `json:"known_state"`
	Outcome    callflow.Outcome `json:"outcome"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleListCalls lists call logs. The optional limit query parameter caps
// the number of records; 0 lists every record.
func (s *Server) handleListCalls(c *fiber.Ctx) error {
	limit := defaultListLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "limit must be a non-negative integer"})
		}
		limit = min(n, maxListLimit)
	}

	records, err := s.store.List(c.Context(), limit)
	if err != nil {
		s.logger.Error("failed to list call logs", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to list call logs"})
	}

	if records == nil {
		records = []*calllog.Record{}
	}
	return c.JSON(CallListResponse{Calls: records, Count: len(records)})
}

// handleGetCall returns the log of one call.
func (s *Server) handleGetCall(c *fiber.Ctx) error {
	callID := c.Params("callId")
	if callID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "callId parameter required"})
	}

	record, err := s.store.Get(c.Context(), callID)
	if err != nil {
		var notFound calllog.NotFoundError
		if errors.As(err, &notFound) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "call log not found"})
		}
		s.logger.Error("failed to get call log", "call_id", callID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to get call log"})
	}

	return c.JSON(record)
}

// handleClassify classifies an utterance.
func (s *Server) handleClassify(c *fiber.Ctx) error {
	var req ClassifyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	return c.JSON(s.engine.Classifier().Classify(req.Utterance))
}

// handleTurn runs one turn through the dialog engine as a dry run.
func (s *Server) handleTurn(c *fiber.Ctx) error {
	var req TurnRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	state, known := callflow.ParseState(strings.TrimSpace(req.State))
	out := s.engine.Turn(callflow.Turn{
		CallID:       "dry-run",
		CallerNumber: req.CallerNumber,
		State:        string(state),
		Utterance:    req.Utterance,
	})

	return c.JSON(TurnResponse{State: state, KnownState: known, Outcome: out})
}
