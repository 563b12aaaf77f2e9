package callflow

import (
	"github.com/papercomputeco/praxisvoice/pkg/calllog"
	"github.com/papercomputeco/praxisvoice/pkg/knowledge"
	"github.com/papercomputeco/praxisvoice/pkg/nlu"
)

// Gather timeouts in seconds.
const (
	timeoutShort   = 5
	timeoutDefault = 6
	timeoutHelp    = 7
	timeoutDetails = 8
)

// Reason labels logged by the machine itself.
const (
	ReasonForward    = "Weiterleitung"
	ReasonReschedule = "Termin verschieben"
	ReasonCancel     = "Termin absagen"
)

// Outcome is the result of one transition. Log is the patch to upsert for the
// call; an empty patch means no write.
type Outcome struct {
	NextState      State              `json:"next_state"`
	Action         Action             `json:"action"`
	Log            calllog.Patch      `json:"log"`
	Classification nlu.Classification `json:"classification"`
}

// MachineConfig configures a Machine.
type MachineConfig struct {
	// ForwardTarget is the phone number calls are transferred to.
	// Transfers are refused when empty.
	ForwardTarget string

	// CallerID is the optional caller id presented on transfers.
	CallerID string

	// Prompts is the spoken script.
	Prompts knowledge.Prompts
}

// Machine is the call-flow state machine. Transition is a pure function of
// its inputs; the machine performs no I/O and is safe for concurrent use.
type Machine struct {
	forwardTarget string
	callerID      string
	prompts       knowledge.Prompts
}

// NewMachine creates a Machine.
func NewMachine(c MachineConfig) *Machine {
	return &Machine{
		forwardTarget: c.ForwardTarget,
		callerID:      c.CallerID,
		prompts:       c.Prompts,
	}
}

// Transition decides the next state, action and log patch for a turn in
// state with the classified utterance cls. Every input yields an outcome:
// states without a row of their own reset the conversation to main.
func (m *Machine) Transition(state State, cls nlu.Classification) Outcome {
	switch state {
	case StateMain:
		return m.fromMain(cls)
	case StateConfirmForward:
		return m.fromConfirmForward(cls)
	case StateRescheduleDetails:
		return m.fromDetails(cls, ReasonReschedule, m.prompts.RescheduleAck)
	case StateCancelDetails:
		return m.fromDetails(cls, ReasonCancel, m.prompts.CancelAck)
	case StateAnythingElse:
		return m.fromAnythingElse(cls)
	default:
		return m.Fallback()
	}
}

// Fallback resets the conversation to main.
func (m *Machine) Fallback() Outcome {
	return Outcome{
		NextState: StateMain,
		Action:    Ask(StateMain, m.prompts.HelpPrompt, timeoutDefault, m.prompts.Repeat),
	}
}

func (m *Machine) fromMain(cls nlu.Classification) Outcome {
	log := calllog.Patch{
		ReasonShort:   calllog.String(cls.ReasonShort),
		CandidateName: calllog.String(cls.CandidateName),
	}

	p := m.prompts
	var next State
	var action Action

	switch cls.Intent {
	case nlu.IntentEmergency:
		next = StateAnythingElse
		action = Ask(next, p.MoreHelpPrompt, timeoutDefault, p.Emergency, p.AnythingElse)

	case nlu.IntentForward:
		next = StateConfirmForward
		action = Ask(next, p.YesNoPrompt, timeoutDefault, p.ForwardQuestion)

	case nlu.IntentReschedule:
		next = StateRescheduleDetails
		action = Ask(next, p.ReschedulePrompt, timeoutDetails, p.RescheduleQuestion)

	case nlu.IntentCancel:
		next = StateCancelDetails
		action = Ask(next, p.CancelPrompt, timeoutDetails, p.CancelQuestion)

	case nlu.IntentFAQ:
		answer := cls.FAQAnswer
		if answer == "" {
			answer = p.FAQFallback
		}
		next = StateAnythingElse
		action = Ask(next, p.NeedMorePrompt, timeoutDefault, answer, p.AnythingElse)

	default:
		next = StateMain
		action = Ask(next, p.HelpPrompt, timeoutHelp, p.Unclear, p.Options)
	}

	return Outcome{NextState: next, Action: action, Log: log}
}

func (m *Machine) fromConfirmForward(cls nlu.Classification) Outcome {
	p := m.prompts

	if m.forwardTarget == "" {
		return Outcome{
			NextState: StateAnythingElse,
			Action:    Ask(StateAnythingElse, p.NeedMorePrompt, timeoutDefault, p.NoForwardTarget, p.AnythingElse),
		}
	}

	switch cls.Sentiment {
	case nlu.SentimentAffirmative:
		return Outcome{
			// The platform reports back after the transfer and the call
			// continues with the "anything else?" question.
			NextState: StateAnythingElse,
			Action:    Transfer(m.forwardTarget, m.callerID, p.Transferring),
			Log:       calllog.Patch{ReasonShort: calllog.String(ReasonForward)},
		}

	case nlu.SentimentNegative:
		return Outcome{
			NextState: StateMain,
			Action:    Ask(StateMain, p.ConcernPrompt, timeoutHelp, p.DeclinedTransfer),
		}

	default:
		return Outcome{
			NextState: StateConfirmForward,
			Action:    Ask(StateConfirmForward, p.YesNoPrompt, timeoutShort, p.ConfirmYes),
		}
	}
}

func (m *Machine) fromDetails(cls nlu.Classification, reason, ack string) Outcome {
	return Outcome{
		NextState: StateTerminal,
		Action:    Complete(ack),
		Log: calllog.Patch{
			ReasonShort:   calllog.String(reason),
			ReasonLong:    calllog.String(cls.Normalized),
			CandidateName: calllog.String(cls.CandidateName),
		},
	}
}

func (m *Machine) fromAnythingElse(cls nlu.Classification) Outcome {
	p := m.prompts

	if cls.Sentiment == nlu.SentimentNegative {
		return Outcome{
			NextState: StateTerminal,
			Action:    Hangup(p.Closing),
		}
	}

	return Outcome{
		NextState: StateMain,
		Action:    Ask(StateMain, p.ConcernPrompt, timeoutDefault, p.HowCanHelp),
	}
}
