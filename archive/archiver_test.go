package archive

import (
	"bufio"
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"asset_borrow_tracker/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	rows      []models.BorrowRequest
	deleteErr error
	calls     int
}

func (f *fakeSource) ReturnedBefore(_ context.Context, cutoff time.Time, limit int) ([]models.BorrowRequest, error) {
	f.calls++
	var out []models.BorrowRequest
	for _, r := range f.rows {
		if r.Status == models.BorrowReturned && r.UpdatedAt.Before(cutoff) && len(out) < limit {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeSource) DeleteBorrowRequests(_ context.Context, ids []string) (int64, error) {
	if f.deleteErr != nil {
		return 0, f.deleteErr
	}
	before := len(f.rows)
	f.rows = slices.DeleteFunc(f.rows, func(r models.BorrowRequest) bool { return slices.Contains(ids, r.ID) })
	return int64(before - len(f.rows)), nil
}

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func returned(id string, age time.Duration) models.BorrowRequest {
	at := now.Add(-age)
	return models.BorrowRequest{ID: id, ItemID: "i", UserID: "u", Status: models.BorrowReturned, ReturnDate: &at, UpdatedAt: at}
}

func readLines(t *testing.T, path string) []Record {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var out []Record
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var r Record
		require.NoError(t, json.Unmarshal(sc.Bytes(), &r))
		out = append(out, r)
	}
	require.NoError(t, sc.Err())
	return out
}

func TestRunArchivesOnlyOldReturnedRequests(t *testing.T) {
	year := 365 * 24 * time.Hour
	src := &fakeSource{rows: []models.BorrowRequest{
		returned("old-1", year+time.Hour),
		returned("old-2", 2*year),
		returned("old-3", year+24*time.Hour),
		returned("recent", time.Hour),
		{ID: "open", Status: models.BorrowApproved, UpdatedAt: now.Add(-2 * year)},
	}}
	dir := t.TempDir()
	a := New(src, dir, year, WithBatchSize(2), WithNow(func() time.Time { return now }))

	res, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 3, res.Archived)
	assert.Equal(t, filepath.Join(dir, "borrow-archive-2025-06-01.jsonl"), res.File)

	lines := readLines(t, res.File)
	require.Len(t, lines, 3)
	var ids []string
	for _, l := range lines {
		ids = append(ids, l.ID)
		assert.Equal(t, "returned", l.Status)
		assert.NotNil(t, l.ReturnDate)
	}
	assert.ElementsMatch(t, []string{"old-1", "old-2", "old-3"}, ids)

	var left []string
	for _, r := range src.rows {
		left = append(left, r.ID)
	}
	assert.ElementsMatch(t, []string{"recent", "open"}, left)
}

func TestRunWithNothingToArchiveWritesNoFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "archives")
	a := New(&fakeSource{}, dir, time.Hour, WithNow(func() time.Time { return now }))

	res, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, res.Archived)
	assert.Empty(t, res.File)
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

func TestRunKeepsRowsWhenDeleteFails(t *testing.T) {
	src := &fakeSource{
		rows:      []models.BorrowRequest{returned("old", 48*time.Hour)},
		deleteErr: errors.New("db down"),
	}
	a := New(src, t.TempDir(), 24*time.Hour, WithNow(func() time.Time { return now }))

	res, err := a.Run(context.Background())
	require.Error(t, err)
	assert.Zero(t, res.Archived)
	assert.Len(t, src.rows, 1)
	assert.Len(t, readLines(t, res.File), 1)
}
