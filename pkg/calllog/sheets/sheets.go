// Package sheets provides a call log store backed by a Google Sheets
// spreadsheet, one row per call. Practice staff read the log directly in the
// spreadsheet.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"github.com/papercomputeco/praxisvoice/pkg/calllog"
	"github.com/papercomputeco/praxisvoice/pkg/utils"
)

// DefaultSheet is the sheet (tab) name used when none is configured.
const DefaultSheet = "Anrufe"

const timeLayout = "2006-01-02T15:04:05.000000Z"

// header is the first row of the sheet; columns A through I.
var header = []any{
	"call_id", "caller_number", "started_at", "ended_at", "duration_seconds",
	"reason_short", "reason_long", "candidate_name", "updated_at",
}

// Config configures a Store.
type Config struct {
	SpreadsheetID   string
	CredentialsFile string
	Sheet           string
}

// values is the subset of the Sheets values API the store uses.
type values interface {
	Get(ctx context.Context, rng string) ([][]any, error)
	Update(ctx context.Context, rng string, rows [][]any) error
	Append(ctx context.Context, rng string, rows [][]any) error
}

// Store implements calllog.Store on a spreadsheet. Upserts are
// read-modify-write on the sheet and are serialized by mu; concurrent
// writers from other processes are not coordinated.
type Store struct {
	mu     sync.Mutex
	values values
	sheet  string
	now    func() time.Time
}

// NewStore connects to the Sheets API with the service account credentials
// in c.CredentialsFile, or application default credentials when empty.
func NewStore(ctx context.Context, c Config) (*Store, error) {
	if c.SpreadsheetID == "" {
		return nil, errors.New("sheets store requires a spreadsheet id")
	}

	var opts []option.ClientOption
	if c.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(c.CredentialsFile))
	}
	opts = append(opts,
		option.WithScopes(gsheets.SpreadsheetsScope),
		option.WithUserAgent(utils.UserAgent()),
	)

	srv, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}

	return newStore(&serviceValues{srv: srv, spreadsheetID: c.SpreadsheetID}, c.Sheet), nil
}

func newStore(v values, sheet string) *Store {
	if sheet == "" {
		sheet = DefaultSheet
	}
	return &Store{values: v, sheet: sheet, now: time.Now}
}

// Upsert merges patch into the row of callID, appending a row for new calls.
func (s *Store) Upsert(ctx context.Context, callID string, patch calllog.Patch) error {
	if callID == "" {
		return errors.New("cannot upsert call log without call id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.values.Get(ctx, s.sheet+"!A:I")
	if err != nil {
		return fmt.Errorf("failed to read sheet %s: %w", s.sheet, err)
	}

	for i, row := range rows {
		if cell(row, 0) != callID {
			continue
		}

		r, err := decode(row)
		if err != nil {
			return err
		}
		r.Apply(patch)
		r.UpdatedAt = s.now().UTC()

		rng := fmt.Sprintf("%s!A%d:I%d", s.sheet, i+1, i+1)
		if err := s.values.Update(ctx, rng, [][]any{encode(r)}); err != nil {
			return fmt.Errorf("failed to update call log %s: %w", callID, err)
		}
		return nil
	}

	r := &calllog.Record{CallID: callID}
	r.Apply(patch)
	r.UpdatedAt = s.now().UTC()

	appendRows := [][]any{encode(r)}
	if len(rows) == 0 {
		appendRows = append([][]any{header}, appendRows...)
	}
	if err := s.values.Append(ctx, s.sheet+"!A:I", appendRows); err != nil {
		return fmt.Errorf("failed to append call log %s: %w", callID, err)
	}
	return nil
}

// Get returns the record for callID.
func (s *Store) Get(ctx context.Context, callID string) (*calllog.Record, error) {
	records, err := s.all(ctx)
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		if r.CallID == callID {
			return r, nil
		}
	}
	return nil, calllog.NotFoundError{CallID: callID}
}

// List returns up to limit records, most recently updated first.
func (s *Store) List(ctx context.Context, limit int) ([]*calllog.Record, error) {
	records, err := s.all(ctx)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(records, func(i, j int) bool {
		if records[i].UpdatedAt.Equal(records[j].UpdatedAt) {
			return records[i].CallID < records[j].CallID
		}
		return records[i].UpdatedAt.After(records[j].UpdatedAt)
	})

	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// Close is a no-op; the Sheets client holds no resources.
func (s *Store) Close() error {
	return nil
}

func (s *Store) all(ctx context.Context) ([]*calllog.Record, error) {
	rows, err := s.values.Get(ctx, s.sheet+"!A:I")
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", s.sheet, err)
	}

	var out []*calllog.Record
	for _, row := range rows {
		id := cell(row, 0)
		if id == "" || id == header[0] {
			continue
		}
		r, err := decode(row)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func cell(row []any, i int) string {
	if i >= len(row) || row[i] == nil {
		return ""
	}
	return fmt.Sprint(row[i])
}

func encode(r *calllog.Record) []any {
	formatTime := func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.UTC().Format(timeLayout)
	}
	duration := ""
	if r.DurationSeconds != nil {
		duration = strconv.Itoa(*r.DurationSeconds)
	}

	return []any{
		r.CallID,
		r.CallerNumber,
		formatTime(r.StartedAt),
		formatTime(r.EndedAt),
		duration,
		r.ReasonShort,
		r.ReasonLong,
		r.CandidateName,
		r.UpdatedAt.UTC().Format(timeLayout),
	}
}

func decode(row []any) (*calllog.Record, error) {
	r := &calllog.Record{
		CallID:        cell(row, 0),
		CallerNumber:  cell(row, 1),
		ReasonShort:   cell(row, 5),
		ReasonLong:    cell(row, 6),
		CandidateName: cell(row, 7),
	}

	parse := func(i int) (*time.Time, error) {
		v := cell(row, i)
		if v == "" {
			return nil, nil
		}
		t, err := time.Parse(timeLayout, v)
		if err != nil {
			return nil, fmt.Errorf("invalid timestamp %q for call %s: %w", v, r.CallID, err)
		}
		return &t, nil
	}

	var err error
	if r.StartedAt, err = parse(2); err != nil {
		return nil, err
	}
	if r.EndedAt, err = parse(3); err != nil {
		return nil, err
	}
	if v := cell(row, 4); v != "" {
		d, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid duration %q for call %s: %w", v, r.CallID, err)
		}
		r.DurationSeconds = &d
	}

	updated, err := parse(8)
	if err != nil {
		return nil, err
	}
	if updated != nil {
		r.UpdatedAt = *updated
	}
	return r, nil
}

// serviceValues adapts the generated Sheets client to values.
type serviceValues struct {
	srv           *gsheets.Service
	spreadsheetID string
}

func (v *serviceValues) Get(ctx context.Context, rng string) ([][]any, error) {
	resp, err := v.srv.Spreadsheets.Values.Get(v.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

func (v *serviceValues) Update(ctx context.Context, rng string, rows [][]any) error {
	_, err := v.srv.Spreadsheets.Values.Update(v.spreadsheetID, rng, &gsheets.ValueRange{Values: rows}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}

func (v *serviceValues) Append(ctx context.Context, rng string, rows [][]any) error {
	_, err := v.srv.Spreadsheets.Values.Append(v.spreadsheetID, rng, &gsheets.ValueRange{Values: rows}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return err
}
