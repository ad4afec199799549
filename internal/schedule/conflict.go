package schedule

import (
	"context"
	"time"

	"appointment-scheduler/internal/model"
)

// Rule is the overlap test that matched.
type Rule int

const (
	// RuleLookAhead: the candidate runs into an existing start.
	RuleLookAhead Rule = iota + 1
	// RuleLookBehind: an existing appointment is in progress at the candidate start.
	RuleLookBehind
	// RuleLookAt: an existing appointment starts at the same instant.
	RuleLookAt
)

func (r Rule) String() string {
	switch r {
	case RuleLookAhead:
		return "look-ahead"
	case RuleLookBehind:
		return "look-behind"
	case RuleLookAt:
		return "look-at"
	}
	return "none"
}

// Describe is the user-facing explanation of the rule.
func (r Rule) Describe() string {
	switch r {
	case RuleLookAhead:
		return "appointment runs into an existing appointment's start time"
	case RuleLookBehind:
		return "another appointment is in progress at the intended start time"
	case RuleLookAt:
		return "another appointment starts at this time"
	}
	return "no overlap"
}

// Conflict describes the existing appointment a candidate collides with.
type Conflict struct {
	ID    int64
	Title string
	Rule  Rule
	Start time.Time
	End   time.Time
}

// Repository is the slice of the appointment store the core reads from.
type Repository interface {
	AppointmentsInRange(ctx context.Context, from, to time.Time) ([]model.Appointment, error)
}

// ConflictWindow is the range fetched to check a candidate: from local
// midnight of the day before start up to (excluding) local midnight two
// days after end's date, so the whole day after end is covered.
func ConflictWindow(start, end time.Time, loc *time.Location) (from, to time.Time) {
	if loc == nil {
		loc = time.Local
	}
	s, e := start.In(loc), end.In(loc)
	from = time.Date(s.Year(), s.Month(), s.Day()-1, 0, 0, 0, 0, loc)
	to = time.Date(e.Year(), e.Month(), e.Day()+2, 0, 0, 0, 0, loc)
	return from, to
}

// DetectConflict scans existing in order and returns the first appointment
// the interval [start, end) collides with. The record with excludeID is
// skipped so an appointment can be saved over itself.
//
// An appointment ending exactly when another begins is not a conflict. The
// end of the candidate is only tested against existing starts, never
// against existing ends.
func DetectConflict(start, end time.Time, excludeID int64, existing []model.Appointment) (Conflict, bool) {
	for _, e := range existing {
		if e.ID == excludeID {
			continue
		}
		var rule Rule
		switch {
		case e.Start.After(start) && e.Start.Before(end):
			rule = RuleLookAhead
		case e.Start.Before(start) && e.End.After(start):
			rule = RuleLookBehind
		case e.Start.Equal(start):
			rule = RuleLookAt
		default:
			continue
		}
		return Conflict{ID: e.ID, Title: e.Title, Rule: rule, Start: e.Start, End: e.End}, true
	}
	return Conflict{}, false
}

// Detector fetches the conflict window for a span and scans it.
type Detector struct {
	loc *time.Location
}

func NewDetector(loc *time.Location) *Detector {
	if loc == nil {
		loc = time.Local
	}
	return &Detector{loc: loc}
}

// Detect returns a *ConflictError on overlap, a *RepositoryError when the
// window could not be read, and nil otherwise.
func (d *Detector) Detect(ctx context.Context, repo Repository, span Span, excludeID int64) error {
	from, to := ConflictWindow(span.Start, span.End, d.loc)
	existing, err := repo.AppointmentsInRange(ctx, from, to)
	if err != nil {
		return &RepositoryError{Op: "appointments in range", Err: err}
	}
	if c, ok := DetectConflict(span.Start, span.End, excludeID, existing); ok {
		return &ConflictError{Conflict: c}
	}
	return nil
}
