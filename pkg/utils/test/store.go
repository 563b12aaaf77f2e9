// Package testutils holds test doubles shared across praxisvoice test suites.
package testutils

import (
	"context"
	"errors"
	"sync"

	"github.com/papercomputeco/praxisvoice/pkg/calllog"
	"github.com/papercomputeco/praxisvoice/pkg/calllog/inmemory"
)

// ErrMockStore is returned by MockStore when FailUpsert is set.
var ErrMockStore = errors.New("mock store failure")

// MockStore is a call log store that records every upsert and can be told
// to fail.
type MockStore struct {
	*inmemory.Store

	mu      sync.Mutex
	upserts []Upsert
	fail    bool
}

// Upsert is one recorded call to MockStore.Upsert.
type Upsert struct {
	CallID string
	Patch  calllog.Patch
}

func NewMockStore() *MockStore {
	return &MockStore{Store: inmemory.NewStore()}
}

// FailUpserts makes subsequent upserts return ErrMockStore.
func (m *MockStore) FailUpserts(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = fail
}

func (m *MockStore) Upsert(ctx context.Context, callID string, patch calllog.Patch) error {
	m.mu.Lock()
	m.upserts = append(m.upserts, Upsert{CallID: callID, Patch: patch})
	fail := m.fail
	m.mu.Unlock()

	if fail {
		return ErrMockStore
	}
	return m.Store.Upsert(ctx, callID, patch)
}

// Upserts returns a copy of the recorded upserts.
func (m *MockStore) Upserts() []Upsert {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Upsert(nil), m.upserts...)
}
