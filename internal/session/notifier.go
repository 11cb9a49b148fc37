package session

import (
	"context"
	"errors"
	"time"
)

// ErrInvalidNumber classifies a dispatch failure that will never succeed on
// retry. Implementations wrap it so the monitor can stop retrying with
// errors.Is instead of matching message text.
var ErrInvalidNumber = errors.New("invalid phone number")

// Notifier sends the post-session thank-you message. One call is one
// dispatch attempt against the gateway; retry policy lives entirely in the
// expiry monitor's tick loop.
type Notifier interface {
	Notify(ctx context.Context, digits string, customerName string, now time.Time) error
}
