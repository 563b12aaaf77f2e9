package knowledge_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/praxisvoice/pkg/knowledge"
)

var _ = Describe("Markdown", func() {
	It("lists every intent and FAQ topic", func() {
		kb := knowledge.Default()
		md := kb.Markdown()

		Expect(md).To(HavePrefix("# Wissensbasis"))
		for _, lex := range kb.Intents {
			Expect(md).To(ContainSubstring("| " + lex.Intent + " | " + lex.Reason + " |"))
		}
		for _, entry := range kb.FAQ {
			Expect(md).To(ContainSubstring("### " + entry.Topic))
		}
	})

	It("quotes prefix phrases as code", func() {
		Expect(knowledge.Default().Markdown()).To(ContainSubstring("`notfall*`"))
	})
})
