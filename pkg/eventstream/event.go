package eventstream

import (
	"time"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeTurnProcessed is emitted after a webhook turn was answered.
	EventTypeTurnProcessed = "praxisvoice.turn.processed"
)

// TurnProcessedEvent is a transport-neutral event payload for one answered
// turn of a phone call.
type TurnProcessedEvent struct {
	SchemaVersion int         `json:"schema_version"`
	EventType     string      `json:"event_type"`
	EventID       string      `json:"event_id"`
	EmittedAt     time.Time   `json:"emitted_at"`
	Source        EventSource `json:"source"`
	Call          CallMeta    `json:"call"`
	Turn          TurnMeta    `json:"turn"`
}

// EventSource identifies where the turn was processed.
type EventSource struct {
	Service  string `json:"service"`
	Endpoint string `json:"endpoint"`
}

// CallMeta identifies the call the turn belongs to.
type CallMeta struct {
	CallID       string    `json:"call_id"`
	CallerNumber string    `json:"caller_number,omitempty"`
	StartedAt    time.Time `json:"started_at"`
}

// TurnMeta captures the dialog decision of the turn.
type TurnMeta struct {
	State         string `json:"state"`
	NextState     string `json:"next_state"`
	Utterance     string `json:"utterance,omitempty"`
	Intent        string `json:"intent,omitempty"`
	ReasonShort   string `json:"reason_short,omitempty"`
	Sentiment     string `json:"sentiment,omitempty"`
	CandidateName string `json:"candidate_name,omitempty"`
	Action        string `json:"action"`
}
