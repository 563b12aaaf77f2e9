package nlu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/praxisvoice/pkg/nlu"
)

var _ = Describe("ExtractName", func() {
	DescribeTable("finds a name after an introduction marker",
		func(input, name string) {
			got, ok := nlu.ExtractName(input)
			Expect(ok).To(BeTrue())
			Expect(got).To(Equal(name))
		},
		Entry("mein Name ist", "Ich möchte meinen Termin verschieben, mein Name ist Maria", "Maria"),
		Entry("full name", "Mein Name ist Maria Müller und ich brauche Hilfe", "Maria Müller"),
		Entry("ich heiße", "Hallo, ich heiße Jürgen.", "Jürgen"),
		Entry("ich heisse", "ich heisse Anna Lena Schmidt Meier", "Anna Lena Schmidt"),
		Entry("hier ist", "Guten Tag, hier ist Frau Weber", "Frau Weber"),
		Entry("hier spricht", "hier spricht Klaus-Peter wegen meinem Termin", "Klaus-Peter"),
		Entry("leading article", "hier ist die Maria Müller", "Maria Müller"),
		Entry("article before a title", "hier ist der Herr Becker", "Herr Becker"),
		Entry("adverb ends the name", "hier spricht Anna heute wegen der Rechnung", "Anna"),
	)

	DescribeTable("returns false without a marker",
		func(input string) {
			_, ok := nlu.ExtractName(input)
			Expect(ok).To(BeFalse())
		},
		Entry("no marker", "Ich möchte einen Termin absagen"),
		Entry("capitalized word only", "Maria möchte verschieben"),
		Entry("marker without name", "mein Name ist"),
		Entry("marker followed by filler", "mein Name ist und"),
		Entry("marker followed by a time word", "Mein Termin hier ist morgen"),
		Entry("marker followed by an article only", "hier ist die"),
		Entry("empty", ""),
	)

	It("does not fire inside another word", func() {
		_, ok := nlu.ExtractName("Wohnortmein Name ist Maria")
		Expect(ok).To(BeFalse())
	})
})
