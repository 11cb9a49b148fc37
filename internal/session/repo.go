package session

import (
	"context"
	"time"
)

// EntryRepo is the persistence contract for the entries collection. List
// always returns entries ordered by start time descending (newest first).
type EntryRepo interface {
	Create(ctx context.Context, e *Entry) error
	Get(ctx context.Context, id EntryID) (*Entry, error)
	List(ctx context.Context) ([]Entry, error)
	Save(ctx context.Context, e *Entry) error
	// SetNotified flips smsSent to true. It must be a no-op, not an error,
	// when the id has already been archived away.
	SetNotified(ctx context.Context, id EntryID) error
	// ListStartedBefore returns entries whose start time is older than the
	// cutoff, oldest first.
	ListStartedBefore(ctx context.Context, cutoff time.Time) ([]Entry, error)
	// DeleteByIDs removes the given entries as one batch.
	DeleteByIDs(ctx context.Context, ids []EntryID) (int64, error)
}
