package voice

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/praxisvoice/pkg/callflow"
	"github.com/papercomputeco/praxisvoice/pkg/continuation"
	"github.com/papercomputeco/praxisvoice/pkg/eventstream"
	"github.com/papercomputeco/praxisvoice/pkg/utils"
	"github.com/papercomputeco/praxisvoice/voice/twiml"
	"github.com/papercomputeco/praxisvoice/voice/worker"
)

// Webhook parameters. FormValue also searches the query string, so callers
// posting without a body are served too.
const (
	tokenParam        = "t"
	paramCallSid      = "CallSid"
	paramFrom         = "From"
	paramSpeechResult = "SpeechResult"
	paramDialDuration = "DialCallDuration"
)

// handleIncoming answers the first turn of a call.
func (s *Server) handleIncoming(c *fiber.Ctx) error {
	callID := param(c, paramCallSid)
	if callID == "" {
		callID = s.newID()
	}

	turn := callflow.Turn{
		CallID:       callID,
		CallerNumber: param(c, paramFrom),
		StartedAt:    s.now(),
	}

	s.logger.Info("incoming call", "call_id", callID, "caller", turn.CallerNumber)

	out := s.engine.Greeting(turn)
	return s.answer(c, turn, out)
}

// handleGather answers a turn carrying caller speech, or none on silence.
func (s *Server) handleGather(c *fiber.Ctx) error {
	tok, _ := s.continuation(c)
	turn := callflow.Turn{
		CallID:       tok.CallID,
		CallerNumber: param(c, paramFrom),
		State:        tok.State,
		Utterance:    param(c, paramSpeechResult),
		StartedAt:    tok.StartedAt,
	}

	out := s.engine.Turn(turn)

	s.logger.Debug("turn processed",
		"call_id", turn.CallID,
		"state", turn.State,
		"utterance", utils.Truncate(turn.Utterance, 80),
		"intent", out.Classification.Intent,
		"sentiment", out.Classification.Sentiment,
		"next_state", out.NextState,
	)

	return s.answer(c, turn, out)
}

// handleAfterForward answers the platform's report of a finished transfer.
func (s *Server) handleAfterForward(c *fiber.Ctx) error {
	tok, _ := s.continuation(c)
	turn := callflow.Turn{
		CallID:    tok.CallID,
		State:     tok.State,
		StartedAt: tok.StartedAt,
	}

	// A missing or unparsable duration is treated as unknown.
	dialSeconds, _ := strconv.Atoi(param(c, paramDialDuration))

	out := s.engine.AfterTransfer(dialSeconds)
	return s.answer(c, turn, out)
}

// handleComplete finalizes the call log and hangs up.
func (s *Server) handleComplete(c *fiber.Ctx) error {
	tok, ok := s.continuation(c)
	turn := callflow.Turn{
		CallID:    tok.CallID,
		State:     tok.State,
		StartedAt: tok.StartedAt,
	}

	startedAt := tok.StartedAt
	if !ok {
		// The defaulted start is not the start of the call.
		startedAt = time.Time{}
	}

	out := s.engine.Complete(startedAt, s.now())
	s.logger.Info("call completed", "call_id", turn.CallID)
	return s.answer(c, turn, out)
}

// handleNotice answers requests that are not webhook turns.
func (s *Server) handleNotice(c *fiber.Ctx) error {
	body, err := s.renderer.Render(s.engine.Notice(), links{base: s.baseURL(c), codec: s.codec})
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, twiml.ContentType)
	return c.Send(body)
}

// continuation decodes the token of the request. A missing or rejected token
// yields defaults: the platform's call id or a new one, the main state and
// now as the start of the call. ok reports whether a valid token was found.
func (s *Server) continuation(c *fiber.Ctx) (continuation.Token, bool) {
	raw := c.Query(tokenParam)
	if raw != "" {
		tok, err := s.codec.Decode(raw)
		if err == nil {
			if tok.StartedAt.IsZero() {
				tok.StartedAt = s.now()
			}
			return tok, true
		}

		reason := "malformed"
		if errors.Is(err, continuation.ErrInvalidSignature) {
			reason = "invalid signature"
		}
		s.logger.Warn("rejected continuation token",
			"path", c.Path(),
			"reason", reason,
			"error", err,
		)
	}

	callID := param(c, paramCallSid)
	if callID == "" {
		callID = s.newID()
	}
	return continuation.Token{
		CallID:    callID,
		State:     string(callflow.StateMain),
		StartedAt: s.now(),
	}, false
}

// answer renders the outcome of turn and enqueues its side effects. The
// rendered document never depends on the outcome of persistence.
func (s *Server) answer(c *fiber.Ctx, turn callflow.Turn, out callflow.Outcome) error {
	l := links{
		base:      s.baseURL(c),
		codec:     s.codec,
		callID:    turn.CallID,
		startedAt: turn.StartedAt,
	}

	body, err := s.renderer.Render(out.Action, l)
	if err != nil {
		s.logger.Error("could not render action", "call_id", turn.CallID, "error", err)
		body, err = s.renderer.Render(s.engine.Notice(), l)
		if err != nil {
			return err
		}
	}

	s.pool.Enqueue(worker.Job{
		CallID: turn.CallID,
		Patch:  out.Log,
		Event:  s.event(c.Path(), turn, out),
	})

	c.Set(fiber.HeaderContentType, twiml.ContentType)
	return c.Send(body)
}

func (s *Server) event(endpoint string, turn callflow.Turn, out callflow.Outcome) *eventstream.TurnProcessedEvent {
	state := turn.State
	if state == "" {
		state = string(callflow.StateMain)
	}

	return &eventstream.TurnProcessedEvent{
		SchemaVersion: eventstream.SchemaVersionV1,
		EventType:     eventstream.EventTypeTurnProcessed,
		EventID:       s.newID(),
		EmittedAt:     s.now(),
		Source: eventstream.EventSource{
			Service:  serviceName,
			Endpoint: endpoint,
		},
		Call: eventstream.CallMeta{
			CallID:       turn.CallID,
			CallerNumber: turn.CallerNumber,
			StartedAt:    turn.StartedAt,
		},
		Turn: eventstream.TurnMeta{
			State:         state,
			NextState:     string(out.NextState),
			Utterance:     turn.Utterance,
			Intent:        string(out.Classification.Intent),
			ReasonShort:   out.Classification.ReasonShort,
			Sentiment:     string(out.Classification.Sentiment),
			CandidateName: out.Classification.CandidateName,
			Action:        string(out.Action.Kind),
		},
	}
}

// param reads a webhook parameter, accepting the lower camel case spelling
// some clients use.
func param(c *fiber.Ctx, key string) string {
	if v := strings.TrimSpace(c.FormValue(key)); v != "" {
		return v
	}
	lower := strings.ToLower(key[:1]) + key[1:]
	return strings.TrimSpace(c.FormValue(lower))
}
