// Package report builds the read-only summaries shown next to the calendar:
// appointment counts by month and type, a contact's schedule, customer
// engagement and the appointments about to begin.
package report

import (
	"sort"
	"strings"
	"time"

	"appointment-scheduler/internal/model"
)

// UpcomingLead is how far ahead Upcoming looks by default.
const UpcomingLead = 15 * time.Minute

// TypeCount is one row of the month/type totals. Months from different
// years are counted together.
type TypeCount struct {
	Month time.Month
	Type  string
	Count int
}

// MonthTypeCounts totals appointments by the month of their local start
// and their type, ordered by month then type.
func MonthTypeCounts(appts []model.Appointment, loc *time.Location) []TypeCount {
	if loc == nil {
		loc = time.Local
	}
	type key struct {
		month time.Month
		typ   string
	}
	counts := make(map[key]int)
	for _, a := range appts {
		counts[key{a.Start.In(loc).Month(), a.Type}]++
	}
	out := make([]TypeCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, TypeCount{Month: k.month, Type: k.typ, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Month != out[j].Month {
			return out[i].Month < out[j].Month
		}
		return strings.Compare(out[i].Type, out[j].Type) < 0
	})
	return out
}

// ContactSchedule keeps the appointments assigned to contactID, ordered by
// start.
func ContactSchedule(appts []model.Appointment, contactID int64) []model.Appointment {
	out := make([]model.Appointment, 0)
	for _, a := range appts {
		if a.ContactID == contactID {
			out = append(out, a)
		}
	}
	SortByStart(out)
	return out
}

// Engagement is a customer's most recent past and nearest future
// appointment start. Either may be nil.
type Engagement struct {
	CustomerID   int64
	CustomerName string
	Last         *time.Time
	Next         *time.Time
}

// Engagements computes one row per customer relative to now, in the order
// customers are given. The second result counts customers with nothing
// scheduled after now.
func Engagements(customers []model.Customer, appts []model.Appointment, now time.Time) ([]Engagement, int) {
	byCustomer := make(map[int64][]model.Appointment)
	for _, a := range appts {
		byCustomer[a.CustomerID] = append(byCustomer[a.CustomerID], a)
	}

	rows := make([]Engagement, 0, len(customers))
	noFollowUp := 0
	for _, c := range customers {
		row := Engagement{CustomerID: c.ID, CustomerName: c.Name}
		for _, a := range byCustomer[c.ID] {
			start := a.Start
			switch {
			case start.Before(now):
				if row.Last == nil || start.After(*row.Last) {
					row.Last = &start
				}
			case start.After(now):
				if row.Next == nil || start.Before(*row.Next) {
					row.Next = &start
				}
			}
		}
		if row.Next == nil {
			noFollowUp++
		}
		rows = append(rows, row)
	}
	return rows, noFollowUp
}

// Upcoming keeps appointments starting in [now, now+lead], soonest first.
func Upcoming(appts []model.Appointment, now time.Time, lead time.Duration) []model.Appointment {
	limit := now.Add(lead)
	out := make([]model.Appointment, 0)
	for _, a := range appts {
		if !a.Start.Before(now) && !a.Start.After(limit) {
			out = append(out, a)
		}
	}
	SortByStart(out)
	return out
}

// SortByStart orders appts by start, then id.
func SortByStart(appts []model.Appointment) {
	sort.SliceStable(appts, func(i, j int) bool {
		if !appts[i].Start.Equal(appts[j].Start) {
			return appts[i].Start.Before(appts[j].Start)
		}
		return appts[i].ID < appts[j].ID
	})
}
