package archive

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/sbgaming/cafedesk/internal/session"
)

type mockRepo struct {
	entries []session.Entry
	deleted []session.EntryID

	listErr   error
	deleteErr error
}

func (m *mockRepo) ListStartedBefore(ctx context.Context, cutoff time.Time) ([]session.Entry, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []session.Entry
	for _, e := range m.entries {
		if e.StartedAt.Before(cutoff) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockRepo) DeleteByIDs(ctx context.Context, ids []session.EntryID) (int64, error) {
	if m.deleteErr != nil {
		return 0, m.deleteErr
	}
	m.deleted = append(m.deleted, ids...)
	return int64(len(ids)), nil
}

func staleEntry(now time.Time, monthsAgo int) session.Entry {
	return session.Entry{
		ID:            uuid.New(),
		CustomerName:  "Old Timer",
		PhoneNumber:   "+91 9876543210",
		PartySize:     1,
		DurationHours: 1,
		SubTotal:      50,
		StartedAt:     now.AddDate(0, -monthsAgo, 0),
	}
}

func TestSweepNoData(t *testing.T) {
	now := time.Date(2026, 3, 14, 3, 0, 0, 0, time.UTC)
	repo := &mockRepo{entries: []session.Entry{staleEntry(now, 2)}}
	s := NewSweeper(repo, t.TempDir(), DefaultRetentionMonths, nil, nil)

	got, err := s.Sweep(context.Background(), now)
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	if got.Status != StatusNoData {
		t.Errorf("Status = %q, want %q", got.Status, StatusNoData)
	}
	if len(repo.deleted) != 0 {
		t.Errorf("deleted %d entries on an empty sweep", len(repo.deleted))
	}
}

func TestSweepExportsThenPurges(t *testing.T) {
	now := time.Date(2026, 3, 14, 3, 0, 0, 0, time.UTC)
	old := staleEntry(now, 7)
	older := staleEntry(now, 12)
	fresh := staleEntry(now, 1)
	repo := &mockRepo{entries: []session.Entry{old, older, fresh}}

	dir := t.TempDir()
	var purgedCount int
	s := NewSweeper(repo, dir, DefaultRetentionMonths, func(ctx context.Context, count int) {
		purgedCount = count
	}, nil)

	got, err := s.Sweep(context.Background(), now)
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	if got.Status != StatusSuccess {
		t.Errorf("Status = %q, want %q", got.Status, StatusSuccess)
	}
	if got.ExportedCount != 2 {
		t.Errorf("ExportedCount = %d, want 2", got.ExportedCount)
	}
	if got.FileName != "archive_2026-03-14.xlsx" {
		t.Errorf("FileName = %q, want archive_2026-03-14.xlsx", got.FileName)
	}

	if _, err := os.Stat(filepath.Join(dir, got.FileName)); err != nil {
		t.Errorf("archive artifact missing: %v", err)
	}

	if len(repo.deleted) != 2 {
		t.Fatalf("deleted %d entries, want 2", len(repo.deleted))
	}
	deleted := map[session.EntryID]bool{repo.deleted[0]: true, repo.deleted[1]: true}
	if !deleted[old.ID] || !deleted[older.ID] {
		t.Errorf("deleted ids %v do not match the exported batch", repo.deleted)
	}
	if deleted[fresh.ID] {
		t.Error("entry inside the retention window was deleted")
	}

	if purgedCount != 2 {
		t.Errorf("onPurged called with %d, want 2", purgedCount)
	}
}

func TestSweepExportFailureSkipsDelete(t *testing.T) {
	now := time.Date(2026, 3, 14, 3, 0, 0, 0, time.UTC)
	repo := &mockRepo{entries: []session.Entry{staleEntry(now, 7)}}

	// A file where the archive dir should be makes MkdirAll fail.
	dir := filepath.Join(t.TempDir(), "blocked")
	if err := os.WriteFile(dir, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewSweeper(repo, dir, DefaultRetentionMonths, nil, nil)

	_, err := s.Sweep(context.Background(), now)
	var exportErr *ExportError
	if !errors.As(err, &exportErr) {
		t.Fatalf("Sweep() error = %v, want *ExportError", err)
	}
	if len(repo.deleted) != 0 {
		t.Errorf("deleted %d entries despite export failure, want 0", len(repo.deleted))
	}
}

func TestSweepDeleteFailureKeepsArtifact(t *testing.T) {
	now := time.Date(2026, 3, 14, 3, 0, 0, 0, time.UTC)
	repo := &mockRepo{
		entries:   []session.Entry{staleEntry(now, 7)},
		deleteErr: errors.New("connection reset"),
	}

	dir := t.TempDir()
	s := NewSweeper(repo, dir, DefaultRetentionMonths, nil, nil)

	got, err := s.Sweep(context.Background(), now)
	if err == nil {
		t.Fatal("Sweep() = nil error, want delete failure")
	}
	if got.ExportedCount != 1 || got.FileName == "" {
		t.Errorf("Result = %+v, want exported count and file name reported", got)
	}
	if _, statErr := os.Stat(filepath.Join(dir, got.FileName)); statErr != nil {
		t.Errorf("artifact missing after delete failure: %v", statErr)
	}
}

func TestSweepListFailure(t *testing.T) {
	repo := &mockRepo{listErr: errors.New("cursor timeout")}
	s := NewSweeper(repo, t.TempDir(), DefaultRetentionMonths, nil, nil)

	if _, err := s.Sweep(context.Background(), time.Now()); err == nil {
		t.Fatal("Sweep() = nil error, want list failure")
	}
}
