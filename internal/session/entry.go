package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type EntryID = uuid.UUID

// Payment modes as stored in the entries collection. Offline means cash at
// the counter; the export renders it as "cash".
const (
	PaymentModeOffline = "offline"
	PaymentModeOnline  = "online"
)

// Entry represents one customer's timed visit. The bson tags match the
// historical entries collection schema, which predates this service.
type Entry struct {
	ID            EntryID     `bson:"_id" json:"id"`
	CustomerName  string      `bson:"customerName" json:"customer_name"`
	PhoneNumber   string      `bson:"phoneNumber" json:"phone_number"`
	PartySize     int         `bson:"numberOfPeople" json:"party_size"`
	DurationHours float64     `bson:"duration" json:"duration_hours"`
	Snacks        SnackOrders `bson:"snacks" json:"snacks"`
	SubTotal      int         `bson:"subTotal" json:"sub_total"`
	StartedAt     time.Time   `bson:"timestamp" json:"started_at"`
	Renewed       bool        `bson:"isRenewed" json:"renewed"`
	SMSSent       bool        `bson:"smsSent" json:"sms_sent"`
	AgeYears      int         `bson:"age,omitempty" json:"age_years,omitempty"`
	PaymentMode   string      `bson:"paymentMode,omitempty" json:"payment_mode,omitempty"`
}

// EnsureID generates a new UUID if ID is nil
func (e *Entry) EnsureID() {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
}

// GetID returns the entry ID
func (e *Entry) GetID() uuid.UUID {
	return e.ID
}

// SetID sets the entry ID
func (e *Entry) SetID(id uuid.UUID) {
	e.ID = id
}

// ResourceType returns the resource type for URL generation
func (e *Entry) ResourceType() string {
	return "session"
}

// BeforeCreate fixes the fields a new session starts with. StartedAt is set
// once here and never changes afterwards.
func (e *Entry) BeforeCreate() {
	e.EnsureID()
	e.StartedAt = time.Now()
	e.Renewed = false
	e.SMSSent = false
	if e.PartySize < 1 {
		e.PartySize = 1
	}
	if e.PaymentMode == "" {
		e.PaymentMode = PaymentModeOffline
	}
}

// EndsAt returns the moment the session's allotted duration elapses, derived
// from the latest persisted duration.
func (e *Entry) EndsAt() time.Time {
	return e.StartedAt.Add(time.Duration(e.DurationHours * float64(time.Hour)))
}

// SnacksDescription renders the order lines the way the spreadsheet and the
// activity feed show them, e.g. "Chips (x2), Water (x1)".
func (e *Entry) SnacksDescription() string {
	parts := make([]string, len(e.Snacks))
	for i, line := range e.Snacks {
		parts[i] = fmt.Sprintf("%s (x%d)", line.Name, line.Quantity)
	}
	return strings.Join(parts, ", ")
}
