package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/appetiteclub/apt"

	"github.com/sbgaming/cafedesk/internal/excel"
	"github.com/sbgaming/cafedesk/internal/session"
)

// DefaultRetentionMonths is how long sessions stay queryable before the
// sweep exports and purges them.
const DefaultRetentionMonths = 6

type Status string

const (
	StatusNoData  Status = "no_data"
	StatusSuccess Status = "success"
)

// Result reports what a sweep did.
type Result struct {
	Status        Status `json:"status"`
	ExportedCount int    `json:"exported_count"`
	FileName      string `json:"file_name,omitempty"`
}

// ExportError wraps a failure to produce the archive artifact. When it
// occurs, no delete has been issued and the store is untouched.
type ExportError struct {
	Err error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("archive export: %v", e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// Repo is the slice of the entry store the sweep needs.
type Repo interface {
	ListStartedBefore(ctx context.Context, cutoff time.Time) ([]session.Entry, error)
	DeleteByIDs(ctx context.Context, ids []session.EntryID) (int64, error)
}

// Sweeper exports sessions older than the retention threshold to a
// spreadsheet and then deletes them. The ordering is load-bearing: the
// artifact must be durably on disk before the batch delete is issued, so a
// partial failure can only ever leave extra data behind, never lose it.
type Sweeper struct {
	repo            Repo
	dir             string
	retentionMonths int
	onPurged        func(ctx context.Context, count int)
	logger          apt.Logger
}

// NewSweeper builds a sweeper writing artifacts into dir. onPurged, if not
// nil, runs after a successful purge so the store adapter can announce the
// batch removal.
func NewSweeper(repo Repo, dir string, retentionMonths int, onPurged func(ctx context.Context, count int), logger apt.Logger) *Sweeper {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	if retentionMonths <= 0 {
		retentionMonths = DefaultRetentionMonths
	}
	return &Sweeper{
		repo:            repo,
		dir:             dir,
		retentionMonths: retentionMonths,
		onPurged:        onPurged,
		logger:          logger,
	}
}

// Sweep runs one export-then-purge pass against sessions started before
// now minus the retention window. A failed delete after a successful export
// leaves the artifact in place and the records eligible for the next run.
func (s *Sweeper) Sweep(ctx context.Context, now time.Time) (Result, error) {
	cutoff := now.AddDate(0, -s.retentionMonths, 0)

	stale, err := s.repo.ListStartedBefore(ctx, cutoff)
	if err != nil {
		return Result{}, fmt.Errorf("cannot select stale sessions: %w", err)
	}
	if len(stale) == 0 {
		return Result{Status: StatusNoData}, nil
	}

	fileName := fmt.Sprintf("archive_%s.xlsx", now.Format("2006-01-02"))
	if err := s.export(stale, fileName); err != nil {
		return Result{}, &ExportError{Err: err}
	}

	ids := make([]session.EntryID, len(stale))
	for i := range stale {
		ids[i] = stale[i].ID
	}

	deleted, err := s.repo.DeleteByIDs(ctx, ids)
	if err != nil {
		// The export already exists, so nothing is lost; the records stay
		// behind and the next run picks them up again.
		return Result{ExportedCount: len(stale), FileName: fileName},
			fmt.Errorf("cannot purge exported sessions: %w", err)
	}

	s.logger.Infof("Archived %d sessions to %s (deleted %d)", len(stale), fileName, deleted)

	if s.onPurged != nil {
		s.onPurged(ctx, len(stale))
	}

	return Result{
		Status:        StatusSuccess,
		ExportedCount: len(stale),
		FileName:      fileName,
	}, nil
}

func (s *Sweeper) export(entries []session.Entry, fileName string) error {
	if s.dir != "" {
		if err := os.MkdirAll(s.dir, 0o755); err != nil {
			return fmt.Errorf("cannot create archive dir: %w", err)
		}
	}

	f, err := excel.BuildWorkbook(entries, "Archive")
	if err != nil {
		return err
	}
	defer f.Close()

	path := filepath.Join(s.dir, fileName)
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("cannot save archive workbook: %w", err)
	}
	return nil
}
