package session

import (
	"math"
	"strings"
)

const phoneDigits = 10

// CreateInput carries the fields the front desk submits for a new session.
type CreateInput struct {
	CustomerName  string
	PhoneNumber   string
	PartySize     int
	DurationHours float64
	Snacks        SnackOrders
	AgeYears      int
	PaymentMode   string
}

// ValidateCreate checks a new session's fields. It returns the first failing
// field so the form can point at it.
func ValidateCreate(in CreateInput) *ValidationError {
	if strings.TrimSpace(in.CustomerName) == "" {
		return &ValidationError{Field: "customer_name", Message: "customer name is required"}
	}
	if err := validatePhone(in.PhoneNumber); err != nil {
		return err
	}
	if err := validateDuration(in.DurationHours); err != nil {
		return err
	}
	if in.PartySize < 1 {
		return &ValidationError{Field: "party_size", Message: "party size must be at least 1"}
	}
	if in.AgeYears < 0 {
		return &ValidationError{Field: "age_years", Message: "age cannot be negative"}
	}
	if in.PaymentMode != "" && in.PaymentMode != PaymentModeOffline && in.PaymentMode != PaymentModeOnline {
		return &ValidationError{Field: "payment_mode", Message: "payment mode must be online or offline"}
	}
	return validateSnacks(in.Snacks)
}

// ValidateUpdate checks the mutable fields of an existing session.
func ValidateUpdate(durationHours float64, partySize int, snacks SnackOrders) *ValidationError {
	if err := validateDuration(durationHours); err != nil {
		return err
	}
	if partySize < 1 {
		return &ValidationError{Field: "party_size", Message: "party size must be at least 1"}
	}
	return validateSnacks(snacks)
}

func validatePhone(phone string) *ValidationError {
	if len(phone) != phoneDigits {
		return &ValidationError{Field: "phone_number", Message: "phone number must be exactly 10 digits"}
	}
	for _, r := range phone {
		if r < '0' || r > '9' {
			return &ValidationError{Field: "phone_number", Message: "phone number must contain only digits"}
		}
	}
	return nil
}

// Sessions are billed in half-hour steps; anything finer is a form bug.
func validateDuration(hours float64) *ValidationError {
	if hours <= 0 {
		return &ValidationError{Field: "duration_hours", Message: "duration must be greater than zero"}
	}
	steps := hours * 2
	if math.Abs(steps-math.Round(steps)) > 1e-9 {
		return &ValidationError{Field: "duration_hours", Message: "duration must be a multiple of 0.5 hours"}
	}
	return nil
}

func validateSnacks(snacks SnackOrders) *ValidationError {
	for i := range snacks {
		if snacks[i].Quantity < 1 {
			return &ValidationError{Field: "snacks", Message: "snack quantity must be at least 1"}
		}
		if snacks[i].UnitPrice < 0 {
			return &ValidationError{Field: "snacks", Message: "snack unit price cannot be negative"}
		}
	}
	return nil
}
