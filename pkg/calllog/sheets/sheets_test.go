package sheets

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/praxisvoice/pkg/calllog"
	"github.com/papercomputeco/praxisvoice/pkg/calllog/calllogtest"
)

// fakeValues is an in-memory sheet that understands "Sheet!A:I" and
// "Sheet!A<n>:I<n>" ranges.
type fakeValues struct {
	mu   sync.Mutex
	rows [][]any
	err  error
}

func (f *fakeValues) Get(_ context.Context, rng string) ([][]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]any, len(f.rows))
	for i, row := range f.rows {
		out[i] = append([]any(nil), row...)
	}
	return out, nil
}

func (f *fakeValues) Update(_ context.Context, rng string, rows [][]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, cells, _ := strings.Cut(rng, "!")
	var from, to int
	if _, err := fmt.Sscanf(cells, "A%d:I%d", &from, &to); err != nil {
		return err
	}
	if from < 1 || from > len(f.rows) || len(rows) != to-from+1 {
		return fmt.Errorf("range %s out of bounds", rng)
	}
	for i, row := range rows {
		f.rows[from-1+i] = row
	}
	return nil
}

func (f *fakeValues) Append(_ context.Context, _ string, rows [][]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, rows...)
	return nil
}

var _ = Describe("Store", func() {
	calllogtest.StoreBehaviors(func() calllog.Store {
		return newStore(&fakeValues{}, "")
	})

	It("writes a header row into an empty sheet", func() {
		fake := &fakeValues{}
		s := newStore(fake, "Log")
		Expect(s.Upsert(context.Background(), "CA1", calllog.Patch{ReasonShort: calllog.String("Adresse")})).To(Succeed())

		Expect(fake.rows).To(HaveLen(2))
		Expect(fake.rows[0]).To(Equal(header))
		Expect(fake.rows[1][0]).To(Equal("CA1"))
		Expect(fake.rows[1][5]).To(Equal("Adresse"))
	})

	It("updates the existing row in place", func() {
		fake := &fakeValues{}
		s := newStore(fake, "")
		ctx := context.Background()
		Expect(s.Upsert(ctx, "CA1", calllog.Patch{})).To(Succeed())
		Expect(s.Upsert(ctx, "CA2", calllog.Patch{})).To(Succeed())
		Expect(s.Upsert(ctx, "CA1", calllog.Patch{DurationSeconds: calllog.Int(12)})).To(Succeed())

		Expect(fake.rows).To(HaveLen(3))
		Expect(fake.rows[1][0]).To(Equal("CA1"))
		Expect(fake.rows[1][4]).To(Equal("12"))
	})

	It("surfaces API failures", func() {
		s := newStore(&fakeValues{err: errors.New("quota exceeded")}, "")
		err := s.Upsert(context.Background(), "CA1", calllog.Patch{})
		Expect(err).To(MatchError(ContainSubstring("quota exceeded")))
	})

	It("requires a spreadsheet id", func() {
		_, err := NewStore(context.Background(), Config{})
		Expect(err).To(HaveOccurred())
	})
})
