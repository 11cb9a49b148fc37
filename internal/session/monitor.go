package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/appetiteclub/apt"
)

// DefaultMonitorInterval is the expiry check cadence. The tick itself is the
// only throttle; there is no backoff between dispatch attempts.
const DefaultMonitorInterval = 10 * time.Second

// NotifiedMarker is the slice of the store the monitor needs to record a
// finished dispatch. Marking never returns an error to the tick loop.
type NotifiedMarker interface {
	MarkNotified(ctx context.Context, id EntryID)
}

// Monitor re-evaluates every known session on a fixed tick and drives the
// one critical failure-handling contract of the system: for each expired
// session whose notification has not gone out, dispatch once this tick;
// mark on success, mark on permanently-invalid numbers, leave eligible on
// transient failure so the next tick retries.
type Monitor struct {
	snapshot *Snapshot
	marker   NotifiedMarker
	notifier Notifier
	interval time.Duration
	logger   apt.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

func NewMonitor(snapshot *Snapshot, marker NotifiedMarker, notifier Notifier, interval time.Duration, logger apt.Logger) *Monitor {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	if interval <= 0 {
		interval = DefaultMonitorInterval
	}
	return &Monitor{
		snapshot: snapshot,
		marker:   marker,
		notifier: notifier,
		interval: interval,
		logger:   logger,
	}
}

// Start launches the tick loop. An immediate check runs before the first
// interval elapses, matching the original dashboard behavior on load.
func (m *Monitor) Start(ctx context.Context) error {
	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})

	go m.run(ctx)
	m.logger.Infof("Expiry monitor started, interval %s", m.interval)
	return nil
}

func (m *Monitor) Stop(ctx context.Context) error {
	if m.cancel != nil {
		m.cancel()
		<-m.done
	}
	m.logger.Info("Expiry monitor stopped")
	return nil
}

func (m *Monitor) run(ctx context.Context) {
	defer close(m.done)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Tick(ctx, time.Now())
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Tick(ctx, time.Now())
		}
	}
}

// Tick scans the current snapshot and scatters one independent dispatch
// goroutine per eligible session. Attempts complete or fail on their own
// schedule with no ordering between sessions: a stuck gateway call for one
// customer never stalls the rest. The returned WaitGroup is settled when
// every attempt started by this tick has finished; the run loop does not
// wait on it.
func (m *Monitor) Tick(ctx context.Context, now time.Time) *sync.WaitGroup {
	var wg sync.WaitGroup
	for _, entry := range m.snapshot.Entries() {
		if entry.SMSSent || !IsExpired(&entry, now) {
			continue
		}
		wg.Add(1)
		go func(e Entry) {
			defer wg.Done()
			m.dispatch(ctx, e, now)
		}(entry)
	}
	return &wg
}

func (m *Monitor) dispatch(ctx context.Context, e Entry, now time.Time) {
	digits := SanitizePhone(e.PhoneNumber)
	if len(digits) != phoneDigits {
		// Test records and typos can never be delivered; mark immediately so
		// they stop occupying the tick.
		m.logger.Infof("Skipping SMS for invalid number: %s", e.PhoneNumber)
		m.marker.MarkNotified(ctx, e.ID)
		return
	}

	err := m.notifier.Notify(ctx, digits, e.CustomerName, now)
	switch {
	case err == nil:
		m.logger.Infof("Sent thank-you SMS to %s", e.CustomerName)
		m.marker.MarkNotified(ctx, e.ID)
	case errors.Is(err, ErrInvalidNumber):
		m.logger.Info("number rejected by gateway, not retrying", "id", e.ID.String(), "error", err)
		m.marker.MarkNotified(ctx, e.ID)
	default:
		// Transient: leave smsSent false so the next tick retries.
		m.logger.Error("cannot send SMS", "id", e.ID.String(), "error", err)
	}
}

// SanitizePhone strips everything but digits and keeps the trailing 10,
// dropping any country prefix. Callers check the length.
func SanitizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) > phoneDigits {
		digits = digits[len(digits)-phoneDigits:]
	}
	return digits
}
