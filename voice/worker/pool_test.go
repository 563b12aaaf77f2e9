package worker

import (
	"bytes"
	"context"
	"errors"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/praxisvoice/pkg/calllog"
	"github.com/papercomputeco/praxisvoice/pkg/eventstream"
	"github.com/papercomputeco/praxisvoice/pkg/logger"
	testutils "github.com/papercomputeco/praxisvoice/pkg/utils/test"
)

// syncBuffer is a bytes.Buffer safe for the concurrent writes of the workers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// blockingStore holds every upsert until release is closed.
type blockingStore struct {
	*testutils.MockStore
	started chan struct{}
	release chan struct{}
}

func (b *blockingStore) Upsert(ctx context.Context, callID string, patch calllog.Patch) error {
	b.started <- struct{}{}
	<-b.release
	return b.MockStore.Upsert(ctx, callID, patch)
}

var _ = Describe("Worker Pool", func() {
	var (
		wp        *Pool
		store     *testutils.MockStore
		publisher *testutils.MockPublisher
		logs      *syncBuffer
		ctx       context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = testutils.NewMockStore()
		publisher = testutils.NewMockPublisher()
		logs = &syncBuffer{}

		var err error
		wp, err = NewPool(&Config{
			Store:     store,
			Publisher: publisher,
			Logger:    logger.New(logger.WithWriter(logs), logger.WithDebug(true)),
		})
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		wp.Close()
	})

	It("requires a store", func() {
		_, err := NewPool(&Config{})
		Expect(err).To(HaveOccurred())
	})

	It("applies defaults", func() {
		Expect(wp.config.NumWorkers).To(Equal(defaultNumWorkers))
		Expect(wp.config.QueueSize).To(Equal(defaultJobQueueSize))
		Expect(wp.config.Timeout).To(Equal(defaultTimeout))
	})

	Describe("Enqueue", func() {
		It("returns true when the queue has capacity", func() {
			Expect(wp.Enqueue(Job{CallID: "CA1", Patch: calllog.Patch{ReasonShort: calllog.String("Notfall")}})).To(BeTrue())
		})

		It("drops jobs when the queue is full", func() {
			blocking := &blockingStore{
				MockStore: testutils.NewMockStore(),
				started:   make(chan struct{}, 1),
				release:   make(chan struct{}),
			}
			full, err := NewPool(&Config{Store: blocking, NumWorkers: 1, QueueSize: 1})
			Expect(err).NotTo(HaveOccurred())

			patch := calllog.Patch{ReasonShort: calllog.String("Notfall")}
			Expect(full.Enqueue(Job{CallID: "CA1", Patch: patch})).To(BeTrue())
			Eventually(blocking.started).Should(Receive())

			Expect(full.Enqueue(Job{CallID: "CA2", Patch: patch})).To(BeTrue())
			Expect(full.Enqueue(Job{CallID: "CA3", Patch: patch})).To(BeFalse())

			close(blocking.release)
			full.Close()
			Expect(blocking.Upserts()).To(HaveLen(2))
		})

		It("returns false after the pool was closed", func() {
			wp.Close()
			Expect(wp.Enqueue(Job{CallID: "CA1"})).To(BeFalse())
		})
	})

	It("upserts the patch and publishes the event", func() {
		event := &eventstream.TurnProcessedEvent{EventID: "evt-1", Call: eventstream.CallMeta{CallID: "CA1"}}
		Expect(wp.Enqueue(Job{
			CallID: "CA1",
			Patch:  calllog.Patch{ReasonShort: calllog.String("Notfall")},
			Event:  event,
		})).To(BeTrue())
		wp.Close()

		rec, err := store.Get(ctx, "CA1")
		Expect(err).NotTo(HaveOccurred())
		Expect(rec.ReasonShort).To(Equal("Notfall"))
		Expect(publisher.Events()).To(ConsistOf(event))
	})

	It("skips the upsert for an empty patch", func() {
		Expect(wp.Enqueue(Job{CallID: "CA1", Event: &eventstream.TurnProcessedEvent{EventID: "evt-1"}})).To(BeTrue())
		wp.Close()

		Expect(store.Upserts()).To(BeEmpty())
		Expect(publisher.Events()).To(HaveLen(1))
	})

	It("swallows store failures and still publishes", func() {
		store.FailUpserts(true)
		Expect(wp.Enqueue(Job{
			CallID: "CA1",
			Patch:  calllog.Patch{ReasonShort: calllog.String("Notfall")},
			Event:  &eventstream.TurnProcessedEvent{EventID: "evt-1"},
		})).To(BeTrue())
		wp.Close()

		Expect(store.Upserts()).To(HaveLen(1))
		_, err := store.Get(ctx, "CA1")
		var notFound calllog.NotFoundError
		Expect(errors.As(err, &notFound)).To(BeTrue())
		Expect(publisher.Events()).To(HaveLen(1))
		Expect(logs.String()).To(ContainSubstring("call log upsert failed"))
	})

	It("swallows publish failures", func() {
		publisher.FailPublishes(true)
		Expect(wp.Enqueue(Job{
			CallID: "CA1",
			Patch:  calllog.Patch{ReasonShort: calllog.String("Notfall")},
			Event:  &eventstream.TurnProcessedEvent{EventID: "evt-1"},
		})).To(BeTrue())
		wp.Close()

		_, err := store.Get(ctx, "CA1")
		Expect(err).NotTo(HaveOccurred())
		Expect(logs.String()).To(ContainSubstring("turn event publish failed"))
	})

	It("merges successive patches of a call", func() {
		for _, p := range []calllog.Patch{
			{CallerNumber: calllog.String("+4917612345")},
			{ReasonShort: calllog.String("Termin absagen")},
		} {
			Expect(wp.Enqueue(Job{CallID: "CA1", Patch: p})).To(BeTrue())
		}
		wp.Close()

		rec, err := store.Get(ctx, "CA1")
		Expect(err).NotTo(HaveOccurred())
		Expect(rec.CallerNumber).To(Equal("+4917612345"))
		Expect(rec.ReasonShort).To(Equal("Termin absagen"))
	})
})
