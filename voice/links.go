package voice

import (
	"net/url"
	"time"

	"github.com/papercomputeco/praxisvoice/pkg/callflow"
	"github.com/papercomputeco/praxisvoice/pkg/continuation"
)

// links builds the callback URLs of one call. Every URL carries the
// continuation token of the turn it leads to.
type links struct {
	base      string
	codec     *continuation.Codec
	callID    string
	startedAt time.Time
}

func (l links) Gather(next callflow.State) string {
	return l.url(PathHandleGather, next)
}

func (l links) AfterTransfer() string {
	return l.url(PathAfterForward, callflow.StateAnythingElse)
}

func (l links) Complete() string {
	return l.url(PathComplete, callflow.StateTerminal)
}

func (l links) url(path string, state callflow.State) string {
	token, err := l.codec.Encode(continuation.Token{
		CallID:    l.callID,
		State:     string(state),
		StartedAt: l.startedAt,
	})
	if err != nil {
		// Without a token the next turn falls back to a fresh main state.
		return l.base + path
	}
	return l.base + path + "?" + url.Values{tokenParam: {token}}.Encode()
}
