package nlu_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/praxisvoice/pkg/knowledge"
	"github.com/papercomputeco/praxisvoice/pkg/nlu"
)

var _ = Describe("Classifier", func() {
	var c *nlu.Classifier

	BeforeEach(func() {
		c = nlu.NewClassifier(knowledge.Default())
	})

	Describe("sentiment", func() {
		It("treats 'nein danke' as negative only", func() {
			Expect(c.IsNegative("nein danke")).To(BeTrue())
			Expect(c.IsAffirmative("nein danke")).To(BeFalse())
			Expect(c.Sentiment("nein danke")).To(Equal(nlu.SentimentNegative))
		})

		It("recognizes a plain yes", func() {
			Expect(c.IsAffirmative("Ja, gerne.")).To(BeTrue())
			Expect(c.Sentiment("Ja, gerne.")).To(Equal(nlu.SentimentAffirmative))
		})

		It("lets negative win when both lists match", func() {
			Expect(c.IsAffirmative("ja aber nicht heute")).To(BeFalse())
			Expect(c.IsNegative("ja aber nicht heute")).To(BeTrue())
		})

		It("is ambiguous for unrelated speech", func() {
			Expect(c.Sentiment("vielleicht morgen")).To(Equal(nlu.SentimentAmbiguous))
		})

		It("is ambiguous for silence", func() {
			Expect(c.IsAffirmative("")).To(BeFalse())
			Expect(c.IsNegative("")).To(BeFalse())
		})

		It("matches whole words only", func() {
			Expect(c.IsAffirmative("im januar")).To(BeFalse())
		})

		It("matches prefix terms", func() {
			Expect(c.IsNegative("keinen bedarf")).To(BeTrue())
		})

		DescribeTable("is never both affirmative and negative",
			func(input string) {
				Expect(c.IsAffirmative(input) && c.IsNegative(input)).To(BeFalse())
			},
			Entry("nein danke", "nein danke"),
			Entry("ja nein", "ja nein"),
			Entry("klar nicht", "klar, nicht jetzt"),
			Entry("gerne kein", "gerne, aber kein Termin"),
			Entry("okay", "okay"),
			Entry("empty", ""),
			Entry("colloquial article", "ja, ich hätte ne Frage"),
		)

		It("reads 'ne' as an article, not a no", func() {
			Expect(c.IsNegative("ich hätte ne Frage")).To(BeFalse())
			Expect(c.Sentiment("Ja, ich hätte ne Frage")).To(Equal(nlu.SentimentAffirmative))
		})

		It("lets every shipped negative phrase win over every affirmative one", func() {
			sentiment := knowledge.Default().Sentiment
			for _, yes := range sentiment.Affirmative {
				for _, no := range sentiment.Negative {
					input := yes + " " + strings.TrimSuffix(no, "*")
					Expect(c.IsNegative(input)).To(BeTrue(), input)
					Expect(c.IsAffirmative(input)).To(BeFalse(), input)
					Expect(c.Sentiment(input)).To(Equal(nlu.SentimentNegative), input)
				}
			}
		})
	})

	Describe("DetectIntent", func() {
		DescribeTable("classifies utterances",
			func(input string, intent nlu.Intent, reason string) {
				gotIntent, gotReason := c.DetectIntent(input)
				Expect(gotIntent).To(Equal(intent))
				Expect(gotReason).To(Equal(reason))
			},
			Entry("emergency", "Ich habe einen Notfall", nlu.IntentEmergency, "Notfall"),
			Entry("emergency compound", "Brauche einen Notfalltermin", nlu.IntentEmergency, "Notfall"),
			Entry("forward", "Verbinden Sie mich bitte mit einem Mitarbeiter", nlu.IntentForward, "Weiterleitung"),
			Entry("reschedule", "Ich möchte meinen Termin verschieben", nlu.IntentReschedule, "Termin verschieben"),
			Entry("cancel", "Ich muss meinen Termin absagen", nlu.IntentCancel, "Termin absagen"),
			Entry("faq topic", "Wie sind Ihre Öffnungszeiten?", nlu.IntentFAQ, "Öffnungszeiten"),
			Entry("faq address", "Wo finde ich die Praxis?", nlu.IntentFAQ, "Adresse"),
			Entry("faq generic", "Ich habe eine Frage", nlu.IntentFAQ, "Frage"),
			Entry("unclear", "Hallo hallo", nlu.IntentUnclear, ""),
			Entry("empty", "", nlu.IntentUnclear, ""),
			Entry("punctuation only", "...", nlu.IntentUnclear, ""),
		)

		It("gives emergency priority over reschedule", func() {
			intent, reason := c.DetectIntent("Notfall, ich muss meinen Termin verschieben")
			Expect(intent).To(Equal(nlu.IntentEmergency))
			Expect(reason).To(Equal("Notfall"))
		})

		It("gives forward priority over cancel", func() {
			intent, _ := c.DetectIntent("Termin absagen, verbinden Sie mich")
			Expect(intent).To(Equal(nlu.IntentForward))
		})

		It("is deterministic", func() {
			for range 20 {
				intent, reason := c.DetectIntent("Wo kann ich parken und was kostet das?")
				Expect(intent).To(Equal(nlu.IntentFAQ))
				Expect(reason).To(Equal("Parken"))
			}
		})

		It("ignores lexicon order in the knowledge file", func() {
			kb := knowledge.Default()
			reversed := make([]knowledge.Lexicon, len(kb.Intents))
			for i, lex := range kb.Intents {
				reversed[len(kb.Intents)-1-i] = lex
			}
			kb.Intents = reversed

			intent, _ := nlu.NewClassifier(kb).DetectIntent("Notfall und Termin verschieben")
			Expect(intent).To(Equal(nlu.IntentEmergency))
		})
	})

	Describe("FAQAnswer", func() {
		It("returns the first matching entry in declaration order", func() {
			answer, ok := c.FAQAnswer("Öffnungszeiten und Adresse bitte")
			Expect(ok).To(BeTrue())
			Expect(answer).To(Equal(knowledge.Default().FAQ[0].Answer))
		})

		It("returns false without a match", func() {
			_, ok := c.FAQAnswer("Ich habe eine Frage")
			Expect(ok).To(BeFalse())
		})
	})

	Describe("Classify", func() {
		It("bundles intent, sentiment and the extracted name", func() {
			cls := c.Classify("Ich möchte meinen Termin verschieben, mein Name ist Maria")
			Expect(cls.Intent).To(Equal(nlu.IntentReschedule))
			Expect(cls.ReasonShort).To(Equal("Termin verschieben"))
			Expect(cls.CandidateName).To(Equal("Maria"))
			Expect(cls.Normalized).To(Equal("ich mochte meinen termin verschieben, mein name ist maria"))
		})

		It("carries the FAQ answer", func() {
			cls := c.Classify("Gibt es Parkplätze?")
			Expect(cls.Intent).To(Equal(nlu.IntentFAQ))
			Expect(cls.FAQAnswer).NotTo(BeEmpty())
		})
	})
})
