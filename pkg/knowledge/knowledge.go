// Package knowledge holds the static knowledge base of the practice phone line:
// sentiment word lists, intent lexicons, FAQ entries and the spoken prompt script.
//
// A knowledge base is loaded once at process start and never mutated afterwards.
package knowledge

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed default.toml
var defaultTOML []byte

// Intent lexicon names accepted in the [[intents]] section.
const (
	IntentEmergency  = "emergency"
	IntentForward    = "forward"
	IntentReschedule = "reschedule"
	IntentCancel     = "cancel"
	IntentFAQ        = "faq"
)

// Base is the full knowledge base.
type Base struct {
	Sentiment Sentiment `toml:"sentiment"`
	Intents   []Lexicon `toml:"intents"`
	FAQ       []FAQ     `toml:"faq"`
	Prompts   Prompts   `toml:"prompts"`
}

// Sentiment holds the yes/no word lists.
type Sentiment struct {
	Affirmative []string `toml:"affirmative"`
	Negative    []string `toml:"negative"`
}

// Lexicon maps a set of phrases to one intent and its short reason label.
// Phrase order inside a lexicon is irrelevant; the priority between
// lexicons is fixed by the classifier, not by file order.
type Lexicon struct {
	Intent  string   `toml:"intent"`
	Reason  string   `toml:"reason"`
	Phrases []string `toml:"phrases"`
}

// FAQ is one canned answer and the keywords that select it.
// Entries are consulted in declaration order.
type FAQ struct {
	Topic    string   `toml:"topic"`
	Keywords []string `toml:"keywords"`
	Answer   string   `toml:"answer"`
}

// Prompts is the spoken script. Texts are echoed to the caller verbatim.
type Prompts struct {
	Greeting           string `toml:"greeting"`
	Emergency          string `toml:"emergency"`
	AnythingElse       string `toml:"anything_else"`
	MoreHelpPrompt     string `toml:"more_help_prompt"`
	NeedMorePrompt     string `toml:"need_more_prompt"`
	ForwardQuestion    string `toml:"forward_question"`
	YesNoPrompt        string `toml:"yes_no_prompt"`
	RescheduleQuestion string `toml:"reschedule_question"`
	ReschedulePrompt   string `toml:"reschedule_prompt"`
	CancelQuestion     string `toml:"cancel_question"`
	CancelPrompt       string `toml:"cancel_prompt"`
	FAQFallback        string `toml:"faq_fallback"`
	Unclear            string `toml:"unclear"`
	Options            string `toml:"options"`
	HelpPrompt         string `toml:"help_prompt"`
	NoForwardTarget    string `toml:"no_forward_target"`
	Transferring       string `toml:"transferring"`
	DeclinedTransfer   string `toml:"declined_transfer"`
	ConcernPrompt      string `toml:"concern_prompt"`
	ConfirmYes         string `toml:"confirm_yes"`
	RescheduleAck      string `toml:"reschedule_ack"`
	CancelAck          string `toml:"cancel_ack"`
	Closing            string `toml:"closing"`
	HowCanHelp         string `toml:"how_can_help"`
	Repeat             string `toml:"repeat"`
	AfterTransfer      string `toml:"after_transfer"`
	PostOnly           string `toml:"post_only"`
}

// Default returns the built-in German knowledge base.
func Default() *Base {
	b, err := Parse(defaultTOML)
	if err != nil {
		// The embedded file is validated by the package tests.
		panic(fmt.Sprintf("knowledge: invalid embedded default: %v", err))
	}
	return b
}

// Load reads a knowledge base from a TOML file. An empty path yields Default.
// Prompts missing from the file are filled from the default script.
func Load(path string) (*Base, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading knowledge base: %w", err)
	}

	b, err := Parse(data)
	if err != nil {
		return nil, err
	}

	b.Prompts = mergePrompts(b.Prompts, Default().Prompts)
	return b, nil
}

// Parse decodes and validates TOML knowledge base data.
func Parse(data []byte) (*Base, error) {
	b := &Base{}
	if err := toml.Unmarshal(data, b); err != nil {
		return nil, fmt.Errorf("parsing knowledge base TOML: %w", err)
	}

	if err := b.Validate(); err != nil {
		return nil, err
	}

	return b, nil
}

// Validate checks the structural rules of a knowledge base.
func (b *Base) Validate() error {
	if len(b.Sentiment.Affirmative) == 0 {
		return errors.New("knowledge base: sentiment.affirmative is empty")
	}
	if len(b.Sentiment.Negative) == 0 {
		return errors.New("knowledge base: sentiment.negative is empty")
	}

	seen := make(map[string]bool, len(b.Intents))
	for i, lex := range b.Intents {
		switch lex.Intent {
		case IntentEmergency, IntentForward, IntentReschedule, IntentCancel, IntentFAQ:
		default:
			return fmt.Errorf("knowledge base: intents[%d]: unknown intent %q", i, lex.Intent)
		}
		if seen[lex.Intent] {
			return fmt.Errorf("knowledge base: intents[%d]: duplicate lexicon for %q", i, lex.Intent)
		}
		seen[lex.Intent] = true

		if len(lex.Phrases) == 0 {
			return fmt.Errorf("knowledge base: intents[%d]: no phrases for %q", i, lex.Intent)
		}
	}

	for i, entry := range b.FAQ {
		if entry.Answer == "" {
			return fmt.Errorf("knowledge base: faq[%d]: answer is empty", i)
		}
		if len(entry.Keywords) == 0 {
			return fmt.Errorf("knowledge base: faq[%d]: no keywords", i)
		}
	}

	return nil
}

// Lexicon returns the lexicon for the named intent, if present.
func (b *Base) Lexicon(intent string) (Lexicon, bool) {
	for _, lex := range b.Intents {
		if lex.Intent == intent {
			return lex, true
		}
	}
	return Lexicon{}, false
}

// mergePrompts fills empty fields of p from defaults.
func mergePrompts(p, defaults Prompts) Prompts {
	fill := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}

	fill(&p.Greeting, defaults.Greeting)
	fill(&p.Emergency, defaults.Emergency)
	fill(&p.AnythingElse, defaults.AnythingElse)
	fill(&p.MoreHelpPrompt, defaults.MoreHelpPrompt)
	fill(&p.NeedMorePrompt, defaults.NeedMorePrompt)
	fill(&p.ForwardQuestion, defaults.ForwardQuestion)
	fill(&p.YesNoPrompt, defaults.YesNoPrompt)
	fill(&p.RescheduleQuestion, defaults.RescheduleQuestion)
	fill(&p.ReschedulePrompt, defaults.ReschedulePrompt)
	fill(&p.CancelQuestion, defaults.CancelQuestion)
	fill(&p.CancelPrompt, defaults.CancelPrompt)
	fill(&p.FAQFallback, defaults.FAQFallback)
	fill(&p.Unclear, defaults.Unclear)
	fill(&p.Options, defaults.Options)
	fill(&p.HelpPrompt, defaults.HelpPrompt)
	fill(&p.NoForwardTarget, defaults.NoForwardTarget)
	fill(&p.Transferring, defaults.Transferring)
	fill(&p.DeclinedTransfer, defaults.DeclinedTransfer)
	fill(&p.ConcernPrompt, defaults.ConcernPrompt)
	fill(&p.ConfirmYes, defaults.ConfirmYes)
	fill(&p.RescheduleAck, defaults.RescheduleAck)
	fill(&p.CancelAck, defaults.CancelAck)
	fill(&p.Closing, defaults.Closing)
	fill(&p.HowCanHelp, defaults.HowCanHelp)
	fill(&p.Repeat, defaults.Repeat)
	fill(&p.AfterTransfer, defaults.AfterTransfer)
	fill(&p.PostOnly, defaults.PostOnly)

	return p
}
