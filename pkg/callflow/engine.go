package callflow

import (
	"math"
	"strings"
	"time"

	"github.com/papercomputeco/praxisvoice/pkg/calllog"
	"github.com/papercomputeco/praxisvoice/pkg/knowledge"
	"github.com/papercomputeco/praxisvoice/pkg/nlu"
)

// unknownCaller is logged when the platform does not report a caller number.
const unknownCaller = "Unbekannt"

// Turn is one request of the voice platform, reconstructed from the webhook
// and its continuation. It never outlives the request.
type Turn struct {
	CallID       string    `json:"call_id"`
	CallerNumber string    `json:"caller_number,omitempty"`
	State        string    `json:"state,omitempty"`
	Utterance    string    `json:"utterance"`
	StartedAt    time.Time `json:"started_at"`
}

// Engine composes the classifier and the machine into the turn handler of
// the dialog core. It is stateless and safe for concurrent use.
type Engine struct {
	classifier *nlu.Classifier
	machine    *Machine
	prompts    knowledge.Prompts
}

// Config configures an Engine.
type Config struct {
	ForwardTarget string
	CallerID      string
}

// NewEngine compiles kb and creates an Engine.
func NewEngine(kb *knowledge.Base, c Config) *Engine {
	return &Engine{
		classifier: nlu.NewClassifier(kb),
		machine: NewMachine(MachineConfig{
			ForwardTarget: c.ForwardTarget,
			CallerID:      c.CallerID,
			Prompts:       kb.Prompts,
		}),
		prompts: kb.Prompts,
	}
}

// Classifier returns the engine's classifier.
func (e *Engine) Classifier() *nlu.Classifier {
	return e.classifier
}

// Turn processes one caller turn. A non-empty utterance is logged as the
// transcript together with the caller number; fields extracted by the
// machine take precedence over the transcript.
func (e *Engine) Turn(t Turn) Outcome {
	state, _ := ParseState(t.State)
	cls := e.classifier.Classify(t.Utterance)

	out := e.machine.Transition(state, cls)
	out.Classification = cls

	if strings.TrimSpace(t.Utterance) != "" {
		transcript := calllog.Patch{
			CallerNumber: calllog.String(t.CallerNumber),
			ReasonLong:   calllog.String(t.Utterance),
		}
		out.Log = transcript.Merge(out.Log)
	}

	return out
}

// Greeting answers the first request of a call.
func (e *Engine) Greeting(t Turn) Outcome {
	caller := t.CallerNumber
	if caller == "" {
		caller = unknownCaller
	}

	action := Ask(StateMain, e.prompts.Greeting, timeoutHelp)
	action.SpeechTimeout = "auto"

	return Outcome{
		NextState: StateMain,
		Action:    action,
		Log: calllog.Patch{
			CallerNumber: calllog.String(caller),
			StartedAt:    calllog.Time(t.StartedAt),
		},
	}
}

// AfterTransfer answers the platform's report of a finished transfer.
// dialSeconds is the duration of the bridged call as reported by the platform.
func (e *Engine) AfterTransfer(dialSeconds int) Outcome {
	var log calllog.Patch
	if dialSeconds > 0 {
		log.DurationSeconds = calllog.Int(dialSeconds)
	}

	return Outcome{
		NextState: StateAnythingElse,
		Action:    Ask(StateAnythingElse, e.prompts.NeedMorePrompt, timeoutDefault, e.prompts.AfterTransfer),
		Log:       log,
	}
}

// Complete finalizes a call at now. The call duration is only logged when
// the start of the call is known.
func (e *Engine) Complete(startedAt, now time.Time) Outcome {
	log := calllog.Patch{EndedAt: calllog.Time(now)}
	if !startedAt.IsZero() {
		seconds := int(math.Round(now.Sub(startedAt).Seconds()))
		log.DurationSeconds = calllog.Int(max(0, seconds))
	}

	return Outcome{
		NextState: StateTerminal,
		Action:    Hangup(e.prompts.Closing),
		Log:       log,
	}
}

// Notice is spoken to requests that are not webhook turns.
func (e *Engine) Notice() Action {
	return Hangup(e.prompts.PostOnly)
}
