package nlu

import (
	"github.com/papercomputeco/praxisvoice/pkg/knowledge"
)

// Intent is the classified purpose of an utterance.
type Intent string

const (
	IntentEmergency  Intent = "emergency"
	IntentForward    Intent = "forward"
	IntentReschedule Intent = "reschedule"
	IntentCancel     Intent = "cancel"
	IntentFAQ        Intent = "faq"
	IntentUnclear    Intent = "unclear"
)

// Sentiment is the yes/no reading of an utterance.
type Sentiment string

const (
	SentimentAffirmative Sentiment = "affirmative"
	SentimentNegative    Sentiment = "negative"
	SentimentAmbiguous   Sentiment = "ambiguous"
)

// priority is the fixed evaluation order of the routed lexicons.
// Emergency language must win over every competing match.
var priority = []Intent{
	IntentEmergency,
	IntentForward,
	IntentReschedule,
	IntentCancel,
}

type lexicon struct {
	intent  Intent
	reason  string
	phrases []phrase
}

type faqEntry struct {
	topic    string
	answer   string
	keywords []phrase
}

// Classifier matches normalized speech against a compiled knowledge base.
// It holds no mutable state after construction.
type Classifier struct {
	affirmative []phrase
	negative    []phrase
	lexicons    []lexicon
	faqGeneric  *lexicon
	faq         []faqEntry
}

// NewClassifier compiles the lexicons of kb.
func NewClassifier(kb *knowledge.Base) *Classifier {
	c := &Classifier{
		affirmative: parsePhrases(kb.Sentiment.Affirmative),
		negative:    parsePhrases(kb.Sentiment.Negative),
	}

	for _, intent := range priority {
		lex, ok := kb.Lexicon(string(intent))
		if !ok {
			continue
		}
		c.lexicons = append(c.lexicons, lexicon{
			intent:  intent,
			reason:  lex.Reason,
			phrases: parsePhrases(lex.Phrases),
		})
	}

	if lex, ok := kb.Lexicon(knowledge.IntentFAQ); ok {
		c.faqGeneric = &lexicon{
			intent:  IntentFAQ,
			reason:  lex.Reason,
			phrases: parsePhrases(lex.Phrases),
		}
	}

	for _, entry := range kb.FAQ {
		c.faq = append(c.faq, faqEntry{
			topic:    entry.Topic,
			answer:   entry.Answer,
			keywords: parsePhrases(entry.Keywords),
		})
	}

	return c
}

// IsNegative reports whether text contains a negative word or phrase.
func (c *Classifier) IsNegative(text string) bool {
	return anyMatch(c.negative, tokenize(Normalize(text)))
}

// IsAffirmative reports whether text reads as a yes. It is never true
// together with IsNegative: "nein danke" is negative only.
func (c *Classifier) IsAffirmative(text string) bool {
	words := tokenize(Normalize(text))
	if anyMatch(c.negative, words) {
		return false
	}
	return anyMatch(c.affirmative, words)
}

// Sentiment folds IsNegative and IsAffirmative into one value.
func (c *Classifier) Sentiment(text string) Sentiment {
	switch {
	case c.IsNegative(text):
		return SentimentNegative
	case c.IsAffirmative(text):
		return SentimentAffirmative
	default:
		return SentimentAmbiguous
	}
}

// DetectIntent returns the first intent whose lexicon matches text, checked
// in the order emergency, forward, reschedule, cancel, faq. Text without a
// match yields IntentUnclear and an empty reason.
func (c *Classifier) DetectIntent(text string) (Intent, string) {
	words := tokenize(Normalize(text))
	if len(words) == 0 {
		return IntentUnclear, ""
	}

	for _, lex := range c.lexicons {
		if anyMatch(lex.phrases, words) {
			return lex.intent, lex.reason
		}
	}

	if entry, ok := c.matchFAQ(words); ok {
		return IntentFAQ, entry.topic
	}

	if c.faqGeneric != nil && anyMatch(c.faqGeneric.phrases, words) {
		return IntentFAQ, c.faqGeneric.reason
	}

	return IntentUnclear, ""
}

// FAQAnswer returns the answer of the first FAQ entry, in declaration
// order, whose keywords match text.
func (c *Classifier) FAQAnswer(text string) (string, bool) {
	entry, ok := c.matchFAQ(tokenize(Normalize(text)))
	if !ok {
		return "", false
	}
	return entry.answer, true
}

func (c *Classifier) matchFAQ(words []string) (faqEntry, bool) {
	for _, entry := range c.faq {
		if anyMatch(entry.keywords, words) {
			return entry, true
		}
	}
	return faqEntry{}, false
}

// Classification is everything the call flow needs to know about one utterance.
type Classification struct {
	Normalized    string    `json:"normalized"`
	Intent        Intent    `json:"intent"`
	ReasonShort   string    `json:"reason_short,omitempty"`
	Sentiment     Sentiment `json:"sentiment"`
	CandidateName string    `json:"candidate_name,omitempty"`
	FAQAnswer     string    `json:"faq_answer,omitempty"`
}

// Classify runs every classifier and extractor over the raw utterance.
func (c *Classifier) Classify(raw string) Classification {
	normalized := Normalize(raw)
	intent, reason := c.DetectIntent(normalized)
	answer, _ := c.FAQAnswer(normalized)
	name, _ := ExtractName(raw)

	return Classification{
		Normalized:    normalized,
		Intent:        intent,
		ReasonShort:   reason,
		Sentiment:     c.Sentiment(normalized),
		CandidateName: name,
		FAQAnswer:     answer,
	}
}
