// Package calllog defines the per-call log record written during a phone call
// and the Store interface its backends implement.
package calllog

import (
	"context"
	"time"
)

// Record is the stored log of one call, keyed by CallID.
type Record struct {
	CallID          string     `json:"call_id"`
	CallerNumber    string     `json:"caller_number,omitempty"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
	EndedAt         *time.Time `json:"ended_at,omitempty"`
	DurationSeconds *int       `json:"duration_seconds,omitempty"`
	ReasonShort     string     `json:"reason_short,omitempty"`
	ReasonLong      string     `json:"reason_long,omitempty"`
	CandidateName   string     `json:"candidate_name,omitempty"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Patch is a sparse update of a Record. Nil fields are left untouched by
// an upsert.
type Patch struct {
	CallerNumber    *string    `json:"caller_number,omitempty"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
	EndedAt         *time.Time `json:"ended_at,omitempty"`
	DurationSeconds *int       `json:"duration_seconds,omitempty"`
	ReasonShort     *string    `json:"reason_short,omitempty"`
	ReasonLong      *string    `json:"reason_long,omitempty"`
	CandidateName   *string    `json:"candidate_name,omitempty"`
}

// Store persists call logs.
type Store interface {
	// Upsert creates the record for callID if absent, otherwise overwrites
	// only the fields provided in patch.
	Upsert(ctx context.Context, callID string, patch Patch) error

	// Get returns the record for callID or a NotFoundError.
	Get(ctx context.Context, callID string) (*Record, error)

	// List returns up to limit records, most recently updated first.
	// A limit <= 0 returns all records.
	List(ctx context.Context, limit int) ([]*Record, error)

	// Close releases any resources held by the store.
	Close() error
}

// IsEmpty reports whether the patch provides no field at all.
func (p Patch) IsEmpty() bool {
	return p.CallerNumber == nil &&
		p.StartedAt == nil &&
		p.EndedAt == nil &&
		p.DurationSeconds == nil &&
		p.ReasonShort == nil &&
		p.ReasonLong == nil &&
		p.CandidateName == nil
}

// Merge returns p overlaid with every field provided by o.
func (p Patch) Merge(o Patch) Patch {
	if o.CallerNumber != nil {
		p.CallerNumber = o.CallerNumber
	}
	if o.StartedAt != nil {
		p.StartedAt = o.StartedAt
	}
	if o.EndedAt != nil {
		p.EndedAt = o.EndedAt
	}
	if o.DurationSeconds != nil {
		p.DurationSeconds = o.DurationSeconds
	}
	if o.ReasonShort != nil {
		p.ReasonShort = o.ReasonShort
	}
	if o.ReasonLong != nil {
		p.ReasonLong = o.ReasonLong
	}
	if o.CandidateName != nil {
		p.CandidateName = o.CandidateName
	}
	return p
}

// Apply writes the provided fields of p onto r.
func (r *Record) Apply(p Patch) {
	if p.CallerNumber != nil {
		r.CallerNumber = *p.CallerNumber
	}
	if p.StartedAt != nil {
		t := *p.StartedAt
		r.StartedAt = &t
	}
	if p.EndedAt != nil {
		t := *p.EndedAt
		r.EndedAt = &t
	}
	if p.DurationSeconds != nil {
		d := *p.DurationSeconds
		r.DurationSeconds = &d
	}
	if p.ReasonShort != nil {
		r.ReasonShort = *p.ReasonShort
	}
	if p.ReasonLong != nil {
		r.ReasonLong = *p.ReasonLong
	}
	if p.CandidateName != nil {
		r.CandidateName = *p.CandidateName
	}
}

// String returns a pointer to s, or nil when s is empty. Empty strings are
// treated as "not provided" throughout the call flow.
func String(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Time returns a pointer to t in UTC.
func Time(t time.Time) *time.Time {
	u := t.UTC()
	return &u
}

// Int returns a pointer to n.
func Int(n int) *int {
	return &n
}
