package session

import (
	"context"
	"sync"
	"time"

	aptevents "github.com/appetiteclub/apt/events"
)

// MockEntryRepo is an in-memory EntryRepo with overridable behavior.
type MockEntryRepo struct {
	mu      sync.RWMutex
	entries map[EntryID]*Entry

	CreateFunc      func(ctx context.Context, e *Entry) error
	GetFunc         func(ctx context.Context, id EntryID) (*Entry, error)
	ListFunc        func(ctx context.Context) ([]Entry, error)
	SaveFunc        func(ctx context.Context, e *Entry) error
	SetNotifiedFunc func(ctx context.Context, id EntryID) error
}

func NewMockEntryRepo() *MockEntryRepo {
	return &MockEntryRepo{
		entries: make(map[EntryID]*Entry),
	}
}

func (m *MockEntryRepo) Create(ctx context.Context, e *Entry) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, e)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *e
	m.entries[e.ID] = &clone
	return nil
}

func (m *MockEntryRepo) Get(ctx context.Context, id EntryID) (*Entry, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *e
	return &clone, nil
}

func (m *MockEntryRepo) List(ctx context.Context) ([]Entry, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Entry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, *e)
	}
	// Newest first, like the real repo's sort.
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].StartedAt.After(out[i].StartedAt) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (m *MockEntryRepo) Save(ctx context.Context, e *Entry) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, e)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[e.ID]; !ok {
		return ErrNotFound
	}
	clone := *e
	m.entries[e.ID] = &clone
	return nil
}

func (m *MockEntryRepo) SetNotified(ctx context.Context, id EntryID) error {
	if m.SetNotifiedFunc != nil {
		return m.SetNotifiedFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[id]; ok {
		e.SMSSent = true
	}
	return nil
}

func (m *MockEntryRepo) ListStartedBefore(ctx context.Context, cutoff time.Time) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Entry
	for _, e := range m.entries {
		if e.StartedAt.Before(cutoff) {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (m *MockEntryRepo) DeleteByIDs(ctx context.Context, ids []EntryID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var deleted int64
	for _, id := range ids {
		if _, ok := m.entries[id]; ok {
			delete(m.entries, id)
			deleted++
		}
	}
	return deleted, nil
}

// Stored returns a copy of the stored entry, or nil.
func (m *MockEntryRepo) Stored(id EntryID) *Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[id]
	if !ok {
		return nil
	}
	clone := *e
	return &clone
}

func (m *MockEntryRepo) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// MockPublisher is a mock implementation of events.Publisher for testing
type MockPublisher struct {
	mu        sync.Mutex
	Published [][]byte

	PublishFunc func(ctx context.Context, topic string, msg []byte) error
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, msg []byte) error {
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, topic, msg)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Published = append(m.Published, msg)
	return nil
}

// MockSubscriber is a mock implementation of events.Subscriber for testing
type MockSubscriber struct {
	SubscribeFunc func(ctx context.Context, topic string, handler aptevents.HandlerFunc) error
}

func NewMockSubscriber() *MockSubscriber {
	return &MockSubscriber{}
}

func (m *MockSubscriber) Subscribe(ctx context.Context, topic string, handler aptevents.HandlerFunc) error {
	if m.SubscribeFunc != nil {
		return m.SubscribeFunc(ctx, topic, handler)
	}
	return nil
}

// MockNotifier records dispatch attempts.
type MockNotifier struct {
	mu    sync.Mutex
	calls int

	NotifyFunc func(ctx context.Context, digits, customerName string, now time.Time) error
}

func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

func (m *MockNotifier) Notify(ctx context.Context, digits, customerName string, now time.Time) error {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.NotifyFunc != nil {
		return m.NotifyFunc(ctx, digits, customerName, now)
	}
	return nil
}

func (m *MockNotifier) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MockMarker records MarkNotified calls without a real store.
type MockMarker struct {
	mu  sync.Mutex
	ids []EntryID
}

func NewMockMarker() *MockMarker {
	return &MockMarker{}
}

func (m *MockMarker) MarkNotified(ctx context.Context, id EntryID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ids = append(m.ids, id)
}

func (m *MockMarker) Marked() []EntryID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]EntryID(nil), m.ids...)
}
