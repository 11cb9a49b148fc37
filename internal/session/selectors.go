package session

import (
	"fmt"
	"time"
)

// Selectors over the canonical session list. Every view (dashboard, table,
// analytics) derives its slice through these so the today/lifetime and
// active/completed rules exist in exactly one place.

// SelectToday returns entries whose session started on now's calendar day.
func SelectToday(entries []Entry, now time.Time) []Entry {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	var out []Entry
	for _, e := range entries {
		if !e.StartedAt.Before(start) {
			out = append(out, e)
		}
	}
	return out
}

// SelectActive returns entries still inside their allotted duration.
func SelectActive(entries []Entry, now time.Time) []Entry {
	var out []Entry
	for _, e := range entries {
		if !IsExpired(&e, now) {
			out = append(out, e)
		}
	}
	return out
}

// SelectCompleted returns entries whose allotted duration has elapsed.
func SelectCompleted(entries []Entry, now time.Time) []Entry {
	var out []Entry
	for _, e := range entries {
		if IsExpired(&e, now) {
			out = append(out, e)
		}
	}
	return out
}

// SelectByPaymentMode filters on the stored payment mode. Entries written
// before the field existed count as offline.
func SelectByPaymentMode(entries []Entry, mode string) []Entry {
	var out []Entry
	for _, e := range entries {
		got := e.PaymentMode
		if got == "" {
			got = PaymentModeOffline
		}
		if got == mode {
			out = append(out, e)
		}
	}
	return out
}

// Summary are the headline numbers shown above every view.
type Summary struct {
	TotalRevenue    int     `json:"total_revenue"`
	TotalCustomers  int     `json:"total_customers"`
	AvgSessionValue float64 `json:"avg_session_value"`
	TotalHours      float64 `json:"total_hours"`
	TotalCash       int     `json:"total_cash"`
	TotalOnline     int     `json:"total_online"`
}

// Summarize aggregates the given slice. Callers choose the scope (today or
// lifetime) via the selectors above.
func Summarize(entries []Entry) Summary {
	s := Summary{}
	for _, e := range entries {
		s.TotalRevenue += e.SubTotal
		s.TotalCustomers++
		s.TotalHours += e.DurationHours
		if e.PaymentMode == PaymentModeOnline {
			s.TotalOnline += e.SubTotal
		} else {
			s.TotalCash += e.SubTotal
		}
	}
	if s.TotalCustomers > 0 {
		s.AvgSessionValue = float64(s.TotalRevenue) / float64(s.TotalCustomers)
	}
	return s
}

// DailyRevenue is one day of the revenue trend series.
type DailyRevenue struct {
	Date      string `json:"date"`
	Revenue   int    `json:"revenue"`
	Customers int    `json:"customers"`
}

// RevenueByDay buckets the last `days` calendar days ending at now's day,
// oldest first. Days with no sessions still appear with zeros.
func RevenueByDay(entries []Entry, now time.Time, days int) []DailyRevenue {
	out := make([]DailyRevenue, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, -i)
		next := day.AddDate(0, 0, 1)

		bucket := DailyRevenue{Date: day.Format("Mon Jan 2")}
		for _, e := range entries {
			if !e.StartedAt.Before(day) && e.StartedAt.Before(next) {
				bucket.Revenue += e.SubTotal
				bucket.Customers++
			}
		}
		out = append(out, bucket)
	}
	return out
}

// HourlyBucket is traffic and revenue for one hour of the day.
type HourlyBucket struct {
	Hour      string `json:"hour"`
	Customers int    `json:"customers"`
	Revenue   int    `json:"revenue"`
}

// HourlyDistribution buckets entries by their start hour, dropping hours
// with no traffic.
func HourlyDistribution(entries []Entry) []HourlyBucket {
	var counts [24]HourlyBucket
	for _, e := range entries {
		h := e.StartedAt.Hour()
		counts[h].Customers++
		counts[h].Revenue += e.SubTotal
	}

	var out []HourlyBucket
	for h := range counts {
		if counts[h].Customers == 0 && counts[h].Revenue == 0 {
			continue
		}
		counts[h].Hour = fmt.Sprintf("%d:00", h)
		out = append(out, counts[h])
	}
	return out
}

// SnackCount is one slice of the snack distribution chart.
type SnackCount struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// SnackDistribution totals snack quantities by display name, in first-seen
// order across the entry list.
func SnackDistribution(entries []Entry) []SnackCount {
	totals := make(map[string]int)
	var order []string
	for _, e := range entries {
		for _, line := range e.Snacks {
			if _, seen := totals[line.Name]; !seen {
				order = append(order, line.Name)
			}
			totals[line.Name] += line.Quantity
		}
	}

	out := make([]SnackCount, 0, len(order))
	for _, name := range order {
		out = append(out, SnackCount{Name: name, Value: totals[name]})
	}
	return out
}
