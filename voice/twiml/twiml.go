// Package twiml renders abstract call-flow actions as TwiML documents.
package twiml

import (
	"encoding/xml"
	"fmt"

	"github.com/papercomputeco/praxisvoice/pkg/callflow"
)

// ContentType is the media type of rendered documents.
const ContentType = "text/xml; charset=utf-8"

// Links resolves the callback URLs embedded in a rendered document. Each URL
// carries the continuation of the call.
type Links interface {
	// Gather returns the URL of the turn resuming in next.
	Gather(next callflow.State) string

	// AfterTransfer returns the URL the platform reports a finished transfer to.
	AfterTransfer() string

	// Complete returns the URL of the completion turn.
	Complete() string
}

// Config configures a Renderer.
type Config struct {
	// Language is the BCP 47 tag for speech synthesis and recognition.
	Language string

	// Voice is the text-to-speech voice.
	Voice string
}

// Renderer turns callflow actions into TwiML.
type Renderer struct {
	language string
	voice    string
}

// NewRenderer creates a Renderer.
func NewRenderer(c Config) *Renderer {
	return &Renderer{language: c.Language, voice: c.Voice}
}

type response struct {
	XMLName xml.Name `xml:"Response"`
	Verbs   []any
}

type say struct {
	XMLName  xml.Name `xml:"Say"`
	Language string   `xml:"language,attr,omitempty"`
	Voice    string   `xml:"voice,attr,omitempty"`
	Text     string   `xml:",chardata"`
}

type gather struct {
	XMLName       xml.Name `xml:"Gather"`
	Input         string   `xml:"input,attr"`
	Action        string   `xml:"action,attr"`
	Method        string   `xml:"method,attr"`
	Timeout       int      `xml:"timeout,attr"`
	SpeechTimeout string   `xml:"speechTimeout,attr,omitempty"`
	Language      string   `xml:"language,attr,omitempty"`
	Prompt        say
}

type dial struct {
	XMLName  xml.Name `xml:"Dial"`
	Action   string   `xml:"action,attr"`
	Method   string   `xml:"method,attr"`
	CallerID string   `xml:"callerId,attr,omitempty"`
	Number   string   `xml:",chardata"`
}

type redirect struct {
	XMLName xml.Name `xml:"Redirect"`
	Method  string   `xml:"method,attr"`
	URL     string   `xml:",chardata"`
}

type hangup struct {
	XMLName xml.Name `xml:"Hangup"`
}

// Render produces the TwiML document for action. Speech lines are spoken
// first, then the control directive of the action executes.
func (r *Renderer) Render(action callflow.Action, links Links) ([]byte, error) {
	doc := response{}
	for _, line := range action.Speech {
		if line == "" {
			continue
		}
		doc.Verbs = append(doc.Verbs, r.say(line))
	}

	switch action.Kind {
	case callflow.ActionAsk:
		next := links.Gather(action.Next)
		doc.Verbs = append(doc.Verbs,
			gather{
				Input:         "speech",
				Action:        next,
				Method:        "POST",
				Timeout:       action.Timeout,
				SpeechTimeout: action.SpeechTimeout,
				Language:      r.language,
				Prompt:        r.say(action.Prompt),
			},
			// Reached when the caller stays silent: resubmits as an empty turn.
			redirect{Method: "POST", URL: next},
		)

	case callflow.ActionTransfer:
		doc.Verbs = append(doc.Verbs, dial{
			Action:   links.AfterTransfer(),
			Method:   "POST",
			CallerID: action.CallerID,
			Number:   action.Target,
		})

	case callflow.ActionComplete:
		doc.Verbs = append(doc.Verbs, redirect{Method: "POST", URL: links.Complete()})

	case callflow.ActionHangup:
		doc.Verbs = append(doc.Verbs, hangup{})

	default:
		return nil, fmt.Errorf("unknown action kind %q", action.Kind)
	}

	body, err := xml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal twiml: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}

func (r *Renderer) say(text string) say {
	return say{Language: r.language, Voice: r.voice, Text: text}
}
