package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"max.ks1230/expense-tracker/internal/entity/expense"
)

func newFileStorage(t *testing.T) *FileStorage {
	t.Helper()
	s, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)
	return s
}

func testRecord(date time.Time, category string, amount float64, desc string) expense.Record {
	return expense.Record{Date: date, Category: category, Amount: amount, Description: desc}
}

func Test_Load_MissingFileIsEmptyLog(t *testing.T) {
	s := newFileStorage(t)

	log, err := s.Load(context.Background(), "snegab")
	require.NoError(t, err)
	assert.Empty(t, log)
}

func Test_AppendThenLoad_RoundTrips(t *testing.T) {
	s := newFileStorage(t)
	ctx := context.Background()
	date := time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC)

	saved, err := s.Append(ctx, "snegab", testRecord(date, "Groceries", 500, "veggies"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), saved.ID)

	log, err := s.Load(ctx, "snegab")
	require.NoError(t, err)
	require.Len(t, log, 1)
	assert.Equal(t, saved, log[len(log)-1])

	// logs are scoped per user
	other, err := s.Load(ctx, "harshitb")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func Test_Overwrite_ReplacesRecordInPlace(t *testing.T) {
	s := newFileStorage(t)
	ctx := context.Background()
	date := time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC)

	for _, amount := range []float64{100, 200, 300} {
		_, err := s.Append(ctx, "snegab", testRecord(date, "Groceries", amount, ""))
		require.NoError(t, err)
	}

	log, err := s.Load(ctx, "snegab")
	require.NoError(t, err)
	log[1] = testRecord(date.AddDate(0, 0, 1), "Shopping", 999, "gift")
	log[1].ID = 2
	require.NoError(t, s.Overwrite(ctx, "snegab", log))

	reloaded, err := s.Load(ctx, "snegab")
	require.NoError(t, err)
	require.Len(t, reloaded, 3)
	assert.Equal(t, 100.0, reloaded[0].Amount)
	assert.Equal(t, "Shopping", reloaded[1].Category)
	assert.Equal(t, 999.0, reloaded[1].Amount)
	assert.Equal(t, "gift", reloaded[1].Description)
	assert.Equal(t, 300.0, reloaded[2].Amount)
}

func Test_Delete_ShiftsFollowingRecordsKeepsIDs(t *testing.T) {
	s := newFileStorage(t)
	ctx := context.Background()
	date := time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC)

	for _, amount := range []float64{100, 200, 300} {
		_, err := s.Append(ctx, "snegab", testRecord(date, "Groceries", amount, ""))
		require.NoError(t, err)
	}

	log, err := s.Load(ctx, "snegab")
	require.NoError(t, err)
	log = append(log[:0], log[1:]...)
	require.NoError(t, s.Overwrite(ctx, "snegab", log))

	reloaded, err := s.Load(ctx, "snegab")
	require.NoError(t, err)
	require.Len(t, reloaded, 2)
	// positions shift, durable IDs do not
	assert.Equal(t, int64(2), reloaded[0].ID)
	assert.Equal(t, int64(3), reloaded[1].ID)

	saved, err := s.Append(ctx, "snegab", testRecord(date, "Transport", 50, ""))
	require.NoError(t, err)
	assert.Equal(t, int64(4), saved.ID)
}

func Test_Load_AcceptsLegacyLayoutWithoutIDs(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStorage(dir)
	require.NoError(t, err)

	legacy := "Date,Category,Amount,Description\n" +
		"2024-01-05,Groceries,500,veggies\n" +
		"2024-01-20,Transport,49.5,\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "expenses_snegab.csv"), []byte(legacy), 0o644))

	log, err := s.Load(context.Background(), "snegab")
	require.NoError(t, err)
	require.Len(t, log, 2)
	assert.Equal(t, int64(1), log[0].ID)
	assert.Equal(t, int64(2), log[1].ID)
	assert.Equal(t, 49.5, log[1].Amount)
	assert.Equal(t, "Transport", log[1].Category)
}

func Test_Load_RejectsUnrecognizedHeader(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStorage(dir)
	require.NoError(t, err)

	// a file that starts with a data row must error, not eat the row
	headerless := "1,2024-01-05,Groceries,500,veggies\n" +
		"2,2024-01-20,Transport,49.5,\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "expenses_snegab.csv"), []byte(headerless), 0o644))

	_, err = s.Load(context.Background(), "snegab")
	assert.Error(t, err)
}

func Test_Load_RejectsMalformedRows(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStorage(dir)
	require.NoError(t, err)

	bad := "ID,Date,Category,Amount,Description\n" +
		"1,not-a-date,Groceries,500,\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "expenses_snegab.csv"), []byte(bad), 0o644))

	_, err = s.Load(context.Background(), "snegab")
	assert.Error(t, err)
}
