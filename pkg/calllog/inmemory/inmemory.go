// Package inmemory provides a map-backed call log store. It is the default
// when no persistent backend is configured.
package inmemory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/papercomputeco/praxisvoice/pkg/calllog"
)

// Store implements calllog.Store using an in-memory map.
type Store struct {
	// mu guards records
	mu sync.RWMutex

	// records maps call ids to their logs
	records map[string]*calllog.Record

	now func() time.Time
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		records: make(map[string]*calllog.Record),
		now:     time.Now,
	}
}

// Upsert creates or merges the record for callID.
func (s *Store) Upsert(_ context.Context, callID string, patch calllog.Patch) error {
	if callID == "" {
		return errors.New("cannot upsert call log without call id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[callID]
	if !ok {
		r = &calllog.Record{CallID: callID}
		s.records[callID] = r
	}
	r.Apply(patch)
	r.UpdatedAt = s.now().UTC()
	return nil
}

// Get returns a copy of the record for callID.
func (s *Store) Get(_ context.Context, callID string) (*calllog.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[callID]
	if !ok {
		return nil, calllog.NotFoundError{CallID: callID}
	}
	return clone(r), nil
}

// List returns copies of the most recently updated records.
func (s *Store) List(_ context.Context, limit int) ([]*calllog.Record, error) {
	s.mu.RLock()
	out := make([]*calllog.Record, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, clone(r))
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].CallID < out[j].CallID
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}

func clone(r *calllog.Record) *calllog.Record {
	c := &calllog.Record{CallID: r.CallID, UpdatedAt: r.UpdatedAt}
	c.Apply(calllog.Patch{
		CallerNumber:    calllog.String(r.CallerNumber),
		StartedAt:       r.StartedAt,
		EndedAt:         r.EndedAt,
		DurationSeconds: r.DurationSeconds,
		ReasonShort:     calllog.String(r.ReasonShort),
		ReasonLong:      calllog.String(r.ReasonLong),
		CandidateName:   calllog.String(r.CandidateName),
	})
	return c
}
