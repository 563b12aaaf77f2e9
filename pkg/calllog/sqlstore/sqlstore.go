// Package sqlstore implements calllog.Store on top of database/sql. Queries
// are built with ent's dialect SQL builder so the same store serves every
// supported dialect.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/papercomputeco/praxisvoice/pkg/calllog"
)

// Table is the call log table name.
const Table = "call_logs"

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000Z"

const (
	colCallID          = "call_id"
	colCallerNumber    = "caller_number"
	colStartedAt       = "started_at"
	colEndedAt         = "ended_at"
	colDurationSeconds = "duration_seconds"
	colReasonShort     = "reason_short"
	colReasonLong      = "reason_long"
	colCandidateName   = "candidate_name"
	colUpdatedAt       = "updated_at"
)

var columns = []string{
	colCallID,
	colCallerNumber,
	colStartedAt,
	colEndedAt,
	colDurationSeconds,
	colReasonShort,
	colReasonLong,
	colCandidateName,
	colUpdatedAt,
}

const schema = `CREATE TABLE IF NOT EXISTS call_logs (
	call_id TEXT PRIMARY KEY,
	caller_number TEXT,
	started_at TEXT,
	ended_at TEXT,
	duration_seconds INTEGER,
	reason_short TEXT,
	reason_long TEXT,
	candidate_name TEXT,
	updated_at TEXT NOT NULL
)`

// Store implements calllog.Store for a SQL database.
type Store struct {
	// DB is the underlying connection pool, owned by the store.
	DB *sql.DB

	dialect string
	now     func() time.Time
}

// New wraps db for the given ent dialect (dialect.SQLite or dialect.Postgres)
// and creates the call log table if needed.
func New(ctx context.Context, db *sql.DB, d string) (*Store, error) {
	switch d {
	case dialect.SQLite, dialect.Postgres:
	default:
		return nil, fmt.Errorf("unsupported sql dialect: %s", d)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{DB: db, dialect: d, now: time.Now}, nil
}

// Upsert inserts the record for callID or updates the columns provided by patch.
func (s *Store) Upsert(ctx context.Context, callID string, patch calllog.Patch) error {
	if callID == "" {
		return errors.New("cannot upsert call log without call id")
	}

	cols := []string{colCallID, colUpdatedAt}
	vals := []any{callID, s.now().UTC().Format(timeLayout)}

	add := func(col string, v any) {
		cols = append(cols, col)
		vals = append(vals, v)
	}
	if patch.CallerNumber != nil {
		add(colCallerNumber, *patch.CallerNumber)
	}
	if patch.StartedAt != nil {
		add(colStartedAt, patch.StartedAt.UTC().Format(timeLayout))
	}
	if patch.EndedAt != nil {
		add(colEndedAt, patch.EndedAt.UTC().Format(timeLayout))
	}
	if patch.DurationSeconds != nil {
		add(colDurationSeconds, *patch.DurationSeconds)
	}
	if patch.ReasonShort != nil {
		add(colReasonShort, *patch.ReasonShort)
	}
	if patch.ReasonLong != nil {
		add(colReasonLong, *patch.ReasonLong)
	}
	if patch.CandidateName != nil {
		add(colCandidateName, *patch.CandidateName)
	}

	query, args := entsql.Dialect(s.dialect).
		Insert(Table).
		Columns(cols...).
		Values(vals...).
		OnConflict(
			entsql.ConflictColumns(colCallID),
			entsql.ResolveWithNewValues(),
		).
		Query()

	if _, err := s.DB.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to upsert call log %s: %w", callID, err)
	}
	return nil
}

// Get returns the record for callID.
func (s *Store) Get(ctx context.Context, callID string) (*calllog.Record, error) {
	b := entsql.Dialect(s.dialect)
	query, args := b.Select(columns...).
		From(b.Table(Table)).
		Where(entsql.EQ(colCallID, callID)).
		Query()

	records, err := s.query(ctx, query, args)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, calllog.NotFoundError{CallID: callID}
	}
	return records[0], nil
}

// List returns up to limit records, most recently updated first.
func (s *Store) List(ctx context.Context, limit int) ([]*calllog.Record, error) {
	b := entsql.Dialect(s.dialect)
	sel := b.Select(columns...).
		From(b.Table(Table)).
		OrderBy(entsql.Desc(colUpdatedAt), entsql.Asc(colCallID))
	if limit > 0 {
		sel = sel.Limit(limit)
	}

	query, args := sel.Query()
	return s.query(ctx, query, args)
}

// Close closes the database.
func (s *Store) Close() error {
	return s.DB.Close()
}

func (s *Store) query(ctx context.Context, query string, args []any) ([]*calllog.Record, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query call logs: %w", err)
	}
	defer rows.Close()

	var out []*calllog.Record
	for rows.Next() {
		r, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read call logs: %w", err)
	}
	return out, nil
}

func scan(rows *sql.Rows) (*calllog.Record, error) {
	var (
		r         calllog.Record
		caller    sql.NullString
		started   sql.NullString
		ended     sql.NullString
		duration  sql.NullInt64
		short     sql.NullString
		long      sql.NullString
		candidate sql.NullString
		updated   string
	)

	if err := rows.Scan(&r.CallID, &caller, &started, &ended, &duration, &short, &long, &candidate, &updated); err != nil {
		return nil, fmt.Errorf("failed to scan call log: %w", err)
	}

	r.CallerNumber = caller.String
	r.ReasonShort = short.String
	r.ReasonLong = long.String
	r.CandidateName = candidate.String

	var err error
	if r.StartedAt, err = parseTime(started); err != nil {
		return nil, err
	}
	if r.EndedAt, err = parseTime(ended); err != nil {
		return nil, err
	}
	if duration.Valid {
		d := int(duration.Int64)
		r.DurationSeconds = &d
	}

	u, err := time.Parse(timeLayout, updated)
	if err != nil {
		return nil, fmt.Errorf("failed to parse updated_at of %s: %w", r.CallID, err)
	}
	r.UpdatedAt = u

	return &r, nil
}

func parseTime(v sql.NullString) (*time.Time, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	t, err := time.Parse(timeLayout, v.String)
	if err != nil {
		return nil, fmt.Errorf("failed to parse timestamp %q: %w", v.String, err)
	}
	return &t, nil
}
