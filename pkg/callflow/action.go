package callflow

// ActionKind is the control directive ending an action.
type ActionKind string

const (
	// ActionAsk speaks a prompt and waits for caller speech.
	ActionAsk ActionKind = "ask"

	// ActionTransfer connects the caller to a human. The platform reports
	// back with a post-transfer turn.
	ActionTransfer ActionKind = "transfer"

	// ActionComplete hands over to the platform triggered completion turn,
	// which finalizes the call log and hangs up.
	ActionComplete ActionKind = "complete"

	// ActionHangup ends the call.
	ActionHangup ActionKind = "hangup"
)

// Action is the abstract next step of a call. Speech is spoken first, then
// the control directive named by Kind is executed.
type Action struct {
	Kind   ActionKind `json:"kind"`
	Speech []string   `json:"speech,omitempty"`

	// Ask
	Prompt        string `json:"prompt,omitempty"`
	Next          State  `json:"next,omitempty"`
	Timeout       int    `json:"timeout,omitempty"`
	SpeechTimeout string `json:"speech_timeout,omitempty"`

	// Transfer
	Target   string `json:"target,omitempty"`
	CallerID string `json:"caller_id,omitempty"`
}

// Ask builds an ActionAsk resuming in next after timeout seconds.
func Ask(next State, prompt string, timeout int, speech ...string) Action {
	return Action{
		Kind:    ActionAsk,
		Speech:  speech,
		Prompt:  prompt,
		Next:    next,
		Timeout: timeout,
	}
}

// Transfer builds an ActionTransfer to target.
func Transfer(target, callerID string, speech ...string) Action {
	return Action{
		Kind:     ActionTransfer,
		Speech:   speech,
		Target:   target,
		CallerID: callerID,
	}
}

// Complete builds an ActionComplete.
func Complete(speech ...string) Action {
	return Action{Kind: ActionComplete, Speech: speech}
}

// Hangup builds an ActionHangup.
func Hangup(speech ...string) Action {
	return Action{Kind: ActionHangup, Speech: speech}
}
