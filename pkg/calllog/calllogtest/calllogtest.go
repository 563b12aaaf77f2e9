// Package calllogtest holds the behavior every calllog.Store must show,
// shared by the store test suites.
package calllogtest

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/praxisvoice/pkg/calllog"
)

// StoreBehaviors registers the shared store specs. newStore is called once
// per spec and must return an empty store.
func StoreBehaviors(newStore func() calllog.Store) {
	var (
		store calllog.Store
		ctx   context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = nil
		store = newStore()
	})

	AfterEach(func() {
		if store != nil {
			Expect(store.Close()).To(Succeed())
		}
	})

	It("creates a record on first upsert", func() {
		started := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
		Expect(store.Upsert(ctx, "CA1", calllog.Patch{
			CallerNumber: calllog.String("+4917612345"),
			StartedAt:    calllog.Time(started),
		})).To(Succeed())

		r, err := store.Get(ctx, "CA1")
		Expect(err).NotTo(HaveOccurred())
		Expect(r.CallID).To(Equal("CA1"))
		Expect(r.CallerNumber).To(Equal("+4917612345"))
		Expect(r.StartedAt).NotTo(BeNil())
		Expect(r.StartedAt.Equal(started)).To(BeTrue())
		Expect(r.EndedAt).To(BeNil())
		Expect(r.DurationSeconds).To(BeNil())
		Expect(r.UpdatedAt.IsZero()).To(BeFalse())
	})

	It("overwrites only the provided fields", func() {
		Expect(store.Upsert(ctx, "CA1", calllog.Patch{
			CallerNumber: calllog.String("+4917612345"),
			ReasonShort:  calllog.String("Notfall"),
		})).To(Succeed())
		Expect(store.Upsert(ctx, "CA1", calllog.Patch{
			ReasonLong:      calllog.String("ich habe einen notfall"),
			DurationSeconds: calllog.Int(30),
		})).To(Succeed())
		Expect(store.Upsert(ctx, "CA1", calllog.Patch{
			ReasonShort: calllog.String("Weiterleitung"),
		})).To(Succeed())

		r, err := store.Get(ctx, "CA1")
		Expect(err).NotTo(HaveOccurred())
		Expect(r.CallerNumber).To(Equal("+4917612345"))
		Expect(r.ReasonShort).To(Equal("Weiterleitung"))
		Expect(r.ReasonLong).To(Equal("ich habe einen notfall"))
		Expect(*r.DurationSeconds).To(Equal(30))
	})

	It("is idempotent for repeated patches", func() {
		patch := calllog.Patch{CandidateName: calllog.String("Maria")}
		Expect(store.Upsert(ctx, "CA1", patch)).To(Succeed())
		Expect(store.Upsert(ctx, "CA1", patch)).To(Succeed())

		records, err := store.List(ctx, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(HaveLen(1))
		Expect(records[0].CandidateName).To(Equal("Maria"))
	})

	It("reports missing calls as not found", func() {
		_, err := store.Get(ctx, "missing")
		var notFound calllog.NotFoundError
		Expect(errors.As(err, &notFound)).To(BeTrue())
		Expect(notFound.CallID).To(Equal("missing"))
	})

	It("lists the most recently updated records first", func() {
		Expect(store.Upsert(ctx, "CA1", calllog.Patch{ReasonShort: calllog.String("Notfall")})).To(Succeed())
		time.Sleep(5 * time.Millisecond)
		Expect(store.Upsert(ctx, "CA2", calllog.Patch{ReasonShort: calllog.String("Adresse")})).To(Succeed())
		time.Sleep(5 * time.Millisecond)
		Expect(store.Upsert(ctx, "CA3", calllog.Patch{ReasonShort: calllog.String("Parken")})).To(Succeed())
		time.Sleep(5 * time.Millisecond)
		Expect(store.Upsert(ctx, "CA1", calllog.Patch{CandidateName: calllog.String("Maria")})).To(Succeed())

		records, err := store.List(ctx, 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(HaveLen(2))
		Expect(records[0].CallID).To(Equal("CA1"))
		Expect(records[1].CallID).To(Equal("CA3"))

		all, err := store.List(ctx, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(all).To(HaveLen(3))
	})
}
