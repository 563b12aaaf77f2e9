package kafka

import (
	"context"
	"encoding/json"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/papercomputeco/praxisvoice/pkg/eventstream"
)

type fakeWriter struct {
	messages []kafkago.Message
	err      error
	closed   bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

var _ = Describe("Publisher", func() {
	var (
		w *fakeWriter
		p *Publisher
	)

	BeforeEach(func() {
		w = &fakeWriter{}
		p = newPublisher(w)
	})

	It("requires brokers", func() {
		_, err := NewPublisher(Config{})
		Expect(err).To(HaveOccurred())
	})

	It("creates a writer for the default topic", func() {
		pub, err := NewPublisher(Config{Brokers: []string{"localhost:9092"}})
		Expect(err).NotTo(HaveOccurred())
		Expect(pub.writer.(*kafkago.Writer).Topic).To(Equal(DefaultTopic))
	})

	It("rejects nil events", func() {
		Expect(p.PublishTurn(context.Background(), nil)).To(MatchError(eventstream.ErrNilTurnEvent))
	})

	It("writes the event as JSON keyed by call id", func() {
		event := &eventstream.TurnProcessedEvent{
			SchemaVersion: eventstream.SchemaVersionV1,
			EventType:     eventstream.EventTypeTurnProcessed,
			EventID:       "evt_1",
			Call:          eventstream.CallMeta{CallID: "CA9"},
			Turn:          eventstream.TurnMeta{State: "main", NextState: "confirm_forward", Action: "ask"},
		}
		Expect(p.PublishTurn(context.Background(), event)).To(Succeed())

		Expect(w.messages).To(HaveLen(1))
		Expect(string(w.messages[0].Key)).To(Equal("CA9"))

		var got eventstream.TurnProcessedEvent
		Expect(json.Unmarshal(w.messages[0].Value, &got)).To(Succeed())
		Expect(got.Turn.NextState).To(Equal("confirm_forward"))
	})

	It("wraps write failures", func() {
		w.err = errors.New("broker down")
		err := p.PublishTurn(context.Background(), &eventstream.TurnProcessedEvent{EventID: "evt_2"})
		Expect(err).To(MatchError(ContainSubstring("broker down")))
	})

	It("closes the writer", func() {
		Expect(p.Close()).To(Succeed())
		Expect(w.closed).To(BeTrue())
	})
})
