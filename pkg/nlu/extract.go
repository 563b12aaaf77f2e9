package nlu

import (
	"regexp"
	"strings"
)

const maxNameWords = 3

// introduction matches a self-introduction marker and the words after it.
var introduction = regexp.MustCompile(
	`(?i)(?:^|[^\p{L}])(?:mein\s+name\s+ist|ich\s+hei(?:ß|ss)e|hier\s+(?:ist|spricht))\s+` +
		`(\p{L}[\p{L}'\-]*(?:\s+\p{L}[\p{L}'\-]*)*)`,
)

// nameStopwords end a captured name. Compared against normalized words.
var nameStopwords = map[string]bool{
	"und": true, "ich": true, "mein": true, "meine": true, "meinen": true,
	"wegen": true, "bitte": true, "habe": true, "hatte": true, "mochte": true,
	"wollte": true, "weil": true, "also": true, "danke": true, "termin": true,
	"aus": true, "am": true, "zum": true, "fur": true, "ist": true, "rufe": true,
	"heute": true, "morgen": true, "gestern": true, "jetzt": true, "gerade": true,
	"noch": true, "wieder": true,
}

// nameArticles are skipped before the first word of a name, as in
// "hier ist die Maria".
var nameArticles = map[string]bool{
	"der": true, "die": true, "das": true, "den": true, "dem": true,
}

// ExtractName returns the name a caller introduced themselves with, e.g.
// "Maria" from "mein Name ist Maria". It only fires after an introduction
// marker and is a best-effort heuristic.
func ExtractName(text string) (string, bool) {
	m := introduction.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}

	var words []string
	for _, w := range strings.Fields(m[1]) {
		if len(words) == 0 && nameArticles[Normalize(w)] {
			continue
		}
		if nameStopwords[Normalize(w)] || len(words) == maxNameWords {
			break
		}
		words = append(words, strings.Trim(w, "'-"))
	}

	name := strings.TrimSpace(strings.Join(words, " "))
	if name == "" {
		return "", false
	}
	return name, true
}
