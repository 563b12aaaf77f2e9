// Package callflow is the dialog core of the practice phone line: the call
// states, the abstract actions handed to a renderer and the pure state
// machine deciding the next step of a call.
package callflow

// State is the position of a call within the dialog flow. It is round-tripped
// through the continuation of every turn.
type State string

const (
	StateMain              State = "main"
	StateConfirmForward    State = "confirm_forward"
	StateRescheduleDetails State = "reschedule_details"
	StateCancelDetails     State = "cancel_details"
	StateAnythingElse      State = "anything_else"
	StateTerminal          State = "terminal"
)

// States lists every known state.
var States = []State{
	StateMain,
	StateConfirmForward,
	StateRescheduleDetails,
	StateCancelDetails,
	StateAnythingElse,
	StateTerminal,
}

// ParseState maps a raw round-tripped value onto a State. An empty value is
// the start of a call and yields StateMain. Unknown values are returned as-is
// with ok=false; the machine answers them with its reset fallback.
func ParseState(raw string) (State, bool) {
	if raw == "" {
		return StateMain, true
	}

	s := State(raw)
	for _, known := range States {
		if s == known {
			return s, true
		}
	}
	return s, false
}
