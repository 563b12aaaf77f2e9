package knowledge

import (
	"fmt"
	"strings"
)

// Markdown renders the knowledge base as a markdown document for review.
func (b *Base) Markdown() string {
	var sb strings.Builder

	sb.WriteString("# Wissensbasis\n\n")

	sb.WriteString("## Anliegen\n\n")
	sb.WriteString("| Intent | Grund | Phrasen |\n|---|---|---|\n")
	for _, lex := range b.Intents {
		fmt.Fprintf(&sb, "| %s | %s | %s |\n", lex.Intent, lex.Reason, joinPhrases(lex.Phrases))
	}

	sb.WriteString("\n## Häufige Fragen\n\n")
	for _, entry := range b.FAQ {
		fmt.Fprintf(&sb, "### %s\n\n", entry.Topic)
		fmt.Fprintf(&sb, "%s\n\n", entry.Answer)
		fmt.Fprintf(&sb, "_Stichworte:_ %s\n\n", joinPhrases(entry.Keywords))
	}

	sb.WriteString("## Zustimmung und Ablehnung\n\n")
	fmt.Fprintf(&sb, "- **Ja:** %s\n", joinPhrases(b.Sentiment.Affirmative))
	fmt.Fprintf(&sb, "- **Nein:** %s\n", joinPhrases(b.Sentiment.Negative))

	sb.WriteString("\n## Begrüßung\n\n")
	fmt.Fprintf(&sb, "> %s\n", b.Prompts.Greeting)

	return sb.String()
}

func joinPhrases(phrases []string) string {
	quoted := make([]string, len(phrases))
	for i, p := range phrases {
		// Prefix markers would otherwise render as emphasis.
		quoted[i] = "`" + p + "`"
	}
	return strings.Join(quoted, ", ")
}
