// Package storage persists per-user expense logs. Implementations work
// on the whole log: Load returns every record for a user, Append assigns
// the next ID and adds one record, Overwrite replaces the full log. All
// views recompute from a fresh Load, nothing is cached between calls.
package storage

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"max.ks1230/expense-tracker/internal/entity/expense"
)

var csvHeader = []string{"ID", "Date", "Category", "Amount", "Description"}

// legacy files have no ID column
var legacyHeader = []string{"Date", "Category", "Amount", "Description"}

// FileStorage keeps one flat CSV file per user under dir, named
// expenses_<user>.csv. A missing file is the expected first-use state
// and loads as an empty log.
type FileStorage struct {
	dir string
}

func NewFileStorage(dir string) (*FileStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create storage dir")
	}
	return &FileStorage{dir: dir}, nil
}

func (s *FileStorage) fileName(user string) string {
	return filepath.Join(s.dir, fmt.Sprintf("expenses_%s.csv", user))
}

func (s *FileStorage) Load(_ context.Context, user string) (expense.Log, error) {
	f, err := os.Open(s.fileName(user))
	if os.IsNotExist(err) {
		return expense.Log{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "open log file")
	}
	defer func() {
		_ = f.Close()
	}()

	reader := csv.NewReader(bufio.NewReader(f))
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "read log file")
	}
	if len(rows) == 0 {
		return expense.Log{}, nil
	}

	withIDs, err := matchHeader(rows[0])
	if err != nil {
		return nil, err
	}
	log := make(expense.Log, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rec, err := parseRow(row, withIDs)
		if err != nil {
			return nil, errors.Wrapf(err, "parse log row %d", i+1)
		}
		if !withIDs {
			rec.ID = int64(i + 1)
		}
		log = append(log, rec)
	}
	return log, nil
}

func (s *FileStorage) Append(ctx context.Context, user string, rec expense.Record) (expense.Record, error) {
	log, err := s.Load(ctx, user)
	if err != nil {
		return expense.Record{}, errors.Wrap(err, "append expense")
	}
	rec.ID = log.NextID()
	log = append(log, rec)
	if err = s.writeAll(user, log); err != nil {
		return expense.Record{}, errors.Wrap(err, "append expense")
	}
	return rec, nil
}

func (s *FileStorage) Overwrite(_ context.Context, user string, log expense.Log) error {
	return errors.Wrap(s.writeAll(user, log), "overwrite log")
}

// writeAll rewrites the whole file through a temp file and rename so a
// failed write never leaves a truncated log behind.
func (s *FileStorage) writeAll(user string, log expense.Log) error {
	tmp, err := os.CreateTemp(s.dir, "expenses_*.tmp")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	writer := csv.NewWriter(tmp)
	if err = writer.Write(csvHeader); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "write header")
	}
	for _, rec := range log {
		if err = writer.Write(formatRow(rec)); err != nil {
			_ = tmp.Close()
			return errors.Wrap(err, "write row")
		}
	}
	writer.Flush()
	if err = writer.Error(); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "flush rows")
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrap(err, "close temp file")
	}
	return errors.Wrap(os.Rename(tmp.Name(), s.fileName(user)), "replace log file")
}

// matchHeader decides the file layout by the header text itself, so a
// file that starts with a data row errors instead of losing that row.
func matchHeader(row []string) (withIDs bool, err error) {
	if sameRow(row, csvHeader) {
		return true, nil
	}
	if sameRow(row, legacyHeader) {
		return false, nil
	}
	return false, errors.Errorf("unrecognized header row: %v", row)
}

func sameRow(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func formatRow(rec expense.Record) []string {
	return []string{
		strconv.FormatInt(rec.ID, 10),
		rec.Date.Format(expense.DateLayout),
		rec.Category,
		strconv.FormatFloat(rec.Amount, 'f', -1, 64),
		rec.Description,
	}
}

func parseRow(row []string, withID bool) (expense.Record, error) {
	want := len(legacyHeader)
	if withID {
		want = len(csvHeader)
	}
	if len(row) != want {
		return expense.Record{}, errors.Errorf("expected %d columns, got %d", want, len(row))
	}

	var rec expense.Record
	var err error
	if withID {
		rec.ID, err = strconv.ParseInt(row[0], 10, 64)
		if err != nil {
			return expense.Record{}, errors.Wrap(err, "parse id")
		}
		row = row[1:]
	}
	rec.Date, err = time.Parse(expense.DateLayout, row[0])
	if err != nil {
		return expense.Record{}, errors.Wrap(err, "parse date")
	}
	rec.Category = row[1]
	rec.Amount, err = strconv.ParseFloat(row[2], 64)
	if err != nil {
		return expense.Record{}, errors.Wrap(err, "parse amount")
	}
	rec.Description = row[3]
	return rec, nil
}
