package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/appetiteclub/apt"
	aptevents "github.com/appetiteclub/apt/events"
	"github.com/google/uuid"

	"github.com/sbgaming/cafedesk/internal/events"
)

// phoneCountryPrefix is prepended to the 10 digits staff enter before the
// number is persisted.
const phoneCountryPrefix = "+91 "

// OnChange receives the full current session list, newest first, every time
// the underlying store changes. It is a latest-known-state push, not an
// event log; handlers must tolerate being called with a complete snapshot
// they have already seen.
type OnChange func(entries []Entry)

// Unsubscribe detaches a previously registered OnChange handler.
type Unsubscribe func()

// Store is the session store adapter. It owns all writes to the entries
// collection, keeps the latest snapshot current, and fans change
// notifications out to subscribers. Reads served from the snapshot never
// block on the database.
type Store struct {
	repo       EntryRepo
	publisher  aptevents.Publisher
	subscriber aptevents.Subscriber
	snapshot   *Snapshot
	rate       int
	logger     apt.Logger

	mu       sync.Mutex
	handlers map[int]OnChange
	nextID   int
}

func NewStore(repo EntryRepo, publisher aptevents.Publisher, subscriber aptevents.Subscriber, rate int, logger apt.Logger) *Store {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &Store{
		repo:       repo,
		publisher:  publisher,
		subscriber: subscriber,
		snapshot:   NewSnapshot(),
		rate:       rate,
		logger:     logger,
		handlers:   make(map[int]OnChange),
	}
}

// Snapshot exposes the latest-known-state cell shared with the monitor and
// the HTTP layer.
func (s *Store) Snapshot() *Snapshot {
	return s.snapshot
}

// Start subscribes to change notifications and warms the snapshot. A failed
// warm is logged, not fatal; the first change event repairs it.
func (s *Store) Start(ctx context.Context) error {
	if s.subscriber != nil {
		err := s.subscriber.Subscribe(ctx, events.SessionsTopic, func(ctx context.Context, msg []byte) error {
			s.refresh(ctx)
			return nil
		})
		if err != nil {
			return &PersistenceError{Op: "subscribe", Err: err}
		}
	}

	if err := s.reload(ctx); err != nil {
		s.logger.Error("cannot warm session snapshot", "error", err)
	}
	return nil
}

func (s *Store) Stop(ctx context.Context) error {
	return nil
}

// CreateSession validates the input, prices the session and writes one new
// record. No partial session is ever persisted: validation failures return
// before any write, and write failures surface as PersistenceError with no
// retry.
func (s *Store) CreateSession(ctx context.Context, in CreateInput) (EntryID, error) {
	if verr := ValidateCreate(in); verr != nil {
		return uuid.Nil, verr
	}

	for i := range in.Snacks {
		in.Snacks[i].Recompute()
	}

	entry := &Entry{
		CustomerName:  in.CustomerName,
		PhoneNumber:   phoneCountryPrefix + in.PhoneNumber,
		PartySize:     in.PartySize,
		DurationHours: in.DurationHours,
		Snacks:        in.Snacks,
		AgeYears:      in.AgeYears,
		PaymentMode:   in.PaymentMode,
	}
	entry.SubTotal = ComputeSubtotal(entry.DurationHours, entry.PartySize, s.rate, entry.Snacks)
	entry.BeforeCreate()

	if err := s.repo.Create(ctx, entry); err != nil {
		return uuid.Nil, &PersistenceError{Op: "create", Err: err}
	}

	s.publishChange(ctx, events.EventSessionCreated, entry.ID.String(), 1)
	s.refresh(ctx)
	return entry.ID, nil
}

// UpdateSession recomputes the subtotal from the new duration, party size
// and snack lines. Renewed is monotonic: it latches true the first time an
// update extends the duration and is never cleared afterwards.
func (s *Store) UpdateSession(ctx context.Context, id EntryID, durationHours float64, partySize int, snacks SnackOrders) error {
	if verr := ValidateUpdate(durationHours, partySize, snacks); verr != nil {
		return verr
	}

	entry, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return &PersistenceError{Op: "get", Err: err}
	}

	for i := range snacks {
		snacks[i].Recompute()
	}

	entry.Renewed = entry.Renewed || durationHours > entry.DurationHours
	entry.DurationHours = durationHours
	entry.PartySize = partySize
	entry.Snacks = snacks
	entry.SubTotal = ComputeSubtotal(durationHours, partySize, s.rate, snacks)

	if err := s.repo.Save(ctx, entry); err != nil {
		return &PersistenceError{Op: "update", Err: err}
	}

	s.publishChange(ctx, events.EventSessionUpdated, id.String(), 1)
	s.refresh(ctx)
	return nil
}

// MarkNotified flips the smsSent gate. It is idempotent, tolerates ids that
// were archived away mid-tick, and never propagates store failures: it runs
// inside the monitor's best-effort loop, so failures are logged and the
// session simply stays eligible for the next tick.
func (s *Store) MarkNotified(ctx context.Context, id EntryID) {
	if err := s.repo.SetNotified(ctx, id); err != nil {
		s.logger.Error("cannot mark session notified", "id", id.String(), "error", err)
		return
	}
	s.publishChange(ctx, events.EventSessionNotified, id.String(), 1)
	s.refresh(ctx)
}

// Subscribe registers a change handler. The handler immediately receives the
// current snapshot, then the full list again on every subsequent change.
func (s *Store) Subscribe(handler OnChange) Unsubscribe {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.handlers[id] = handler
	s.mu.Unlock()

	handler(s.snapshot.Entries())

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.handlers, id)
	}
}

// NotifyPurged lets the archival sweep announce a batch removal so every
// consumer reloads.
func (s *Store) NotifyPurged(ctx context.Context, count int) {
	s.publishChange(ctx, events.EventSessionsPurged, "", count)
	s.refresh(ctx)
}

func (s *Store) publishChange(ctx context.Context, eventType, sessionID string, count int) {
	if s.publisher == nil {
		return
	}
	payload, _ := json.Marshal(events.SessionChangedEvent{
		EventType:  eventType,
		OccurredAt: time.Now().UTC(),
		SessionID:  sessionID,
		Count:      count,
	})
	if err := s.publisher.Publish(ctx, events.SessionsTopic, payload); err != nil {
		s.logger.Error("cannot publish session change", "event", eventType, "error", err)
	}
}

func (s *Store) refresh(ctx context.Context) {
	if err := s.reload(ctx); err != nil {
		s.logger.Error("cannot refresh session snapshot", "error", err)
	}
}

// reload replaces the snapshot wholesale with the store's current ordered
// set and fans it out to every subscriber.
func (s *Store) reload(ctx context.Context) error {
	entries, err := s.repo.List(ctx)
	if err != nil {
		return &PersistenceError{Op: "list", Err: err}
	}

	s.snapshot.Replace(entries)

	s.mu.Lock()
	handlers := make([]OnChange, 0, len(s.handlers))
	for _, h := range s.handlers {
		handlers = append(handlers, h)
	}
	s.mu.Unlock()

	for _, h := range handlers {
		h(entries)
	}
	return nil
}
