package nlu

import "strings"

// term is one word of a phrase. Prefix terms match any word that starts
// with text, other terms match whole words only.
type term struct {
	text   string
	prefix bool
}

// phrase is a sequence of terms that must appear consecutively.
type phrase []term

// parsePhrase compiles a lexicon entry like "starke schmerz*".
func parsePhrase(raw string) (phrase, bool) {
	var p phrase
	for _, field := range strings.Fields(Normalize(raw)) {
		prefix := strings.HasSuffix(field, "*")
		words := tokenize(strings.TrimSuffix(field, "*"))
		for i, w := range words {
			p = append(p, term{text: w, prefix: prefix && i == len(words)-1})
		}
	}
	return p, len(p) > 0
}

func parsePhrases(raw []string) []phrase {
	out := make([]phrase, 0, len(raw))
	for _, r := range raw {
		if p, ok := parsePhrase(r); ok {
			out = append(out, p)
		}
	}
	return out
}

func (p phrase) matches(words []string) bool {
	if len(p) == 0 || len(p) > len(words) {
		return false
	}

	for start := 0; start+len(p) <= len(words); start++ {
		if p.matchesAt(words, start) {
			return true
		}
	}
	return false
}

func (p phrase) matchesAt(words []string, start int) bool {
	for i, t := range p {
		w := words[start+i]
		if t.prefix {
			if !strings.HasPrefix(w, t.text) {
				return false
			}
			continue
		}
		if w != t.text {
			return false
		}
	}
	return true
}

// anyMatch reports whether any phrase occurs in words.
func anyMatch(phrases []phrase, words []string) bool {
	for _, p := range phrases {
		if p.matches(words) {
			return true
		}
	}
	return false
}
