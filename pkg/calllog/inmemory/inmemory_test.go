package inmemory_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/praxisvoice/pkg/calllog"
	"github.com/papercomputeco/praxisvoice/pkg/calllog/calllogtest"
	"github.com/papercomputeco/praxisvoice/pkg/calllog/inmemory"
)

var _ = Describe("Store", func() {
	calllogtest.StoreBehaviors(func() calllog.Store {
		return inmemory.NewStore()
	})

	It("rejects an empty call id", func() {
		Expect(inmemory.NewStore().Upsert(context.Background(), "", calllog.Patch{})).NotTo(Succeed())
	})

	It("returns copies that callers may modify", func() {
		ctx := context.Background()
		s := inmemory.NewStore()
		Expect(s.Upsert(ctx, "CA1", calllog.Patch{DurationSeconds: calllog.Int(10)})).To(Succeed())

		r, err := s.Get(ctx, "CA1")
		Expect(err).NotTo(HaveOccurred())
		*r.DurationSeconds = 99

		again, err := s.Get(ctx, "CA1")
		Expect(err).NotTo(HaveOccurred())
		Expect(*again.DurationSeconds).To(Equal(10))
	})
})
