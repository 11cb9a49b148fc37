package session

import "math"

// ComputeSubtotal computes the charge for a session: time billed per person
// at the hourly rate, plus the snack lines. It is pure and safe to call on
// every keystroke of the entry form; negative or missing numerics are
// treated as zero rather than rejected, because live estimates run against
// half-typed input. Persistence-worthy writes validate first.
//
// The time component rounds down to whole rupees.
func ComputeSubtotal(durationHours float64, partySize int, rate int, snacks SnackOrders) int {
	if durationHours < 0 {
		durationHours = 0
	}
	if partySize < 1 {
		partySize = 1
	}
	timeCharge := int(math.Floor(durationHours * float64(partySize) * float64(rate)))
	return timeCharge + snacks.Total()
}
