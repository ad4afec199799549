// Package schedule holds the appointment rules: field completeness, ordering,
// business hours and overlap with existing appointments.
package schedule

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"appointment-scheduler/internal/timeslot"
)

// Candidate is an appointment as entered by a user, before it has been
// resolved to instants. Optional selections are pointers so that slot 0
// (midnight) is distinguishable from "not chosen".
type Candidate struct {
	Title       string         `json:"title" validate:"required"`
	Description string         `json:"description" validate:"required"`
	Location    string         `json:"location" validate:"required"`
	Type        string         `json:"type" validate:"required"`
	StartDate   *timeslot.Date `json:"start_date" validate:"required"`
	EndDate     *timeslot.Date `json:"end_date" validate:"required"`
	StartSlot   *timeslot.Slot `json:"start_time" validate:"required,min=0,max=95"`
	EndSlot     *timeslot.Slot `json:"end_time" validate:"required,min=0,max=95"`
	CustomerID  int64          `json:"customer_id" validate:"required,gt=0"`
	UserID      int64          `json:"user_id" validate:"required,gt=0"`
	ContactID   int64          `json:"contact_id" validate:"required,gt=0"`
}

// Span is a resolved appointment interval.
type Span struct {
	Start time.Time
	End   time.Time
}

func (s Span) Duration() time.Duration { return s.End.Sub(s.Start) }

// Validator applies the appointment rules in a fixed order and reports the
// first one that fails.
type Validator struct {
	hours    timeslot.BusinessHours
	loc      *time.Location
	detector *Detector
	check    *validator.Validate
}

// NewValidator checks candidates entered in loc against hours.
func NewValidator(hours timeslot.BusinessHours, loc *time.Location) *Validator {
	if loc == nil {
		loc = time.Local
	}
	return &Validator{hours: hours, loc: loc, detector: NewDetector(loc), check: NewFieldCheck()}
}

// NewFieldCheck returns a struct validator that names fields by their json
// tags.
func NewFieldCheck() *validator.Validate {
	check := validator.New()
	check.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return check
}

// CheckFields validates s and reports the first failing field as an
// *EmptyFieldError. whole names the struct when no single field is at fault.
func CheckFields(check *validator.Validate, s any, whole string) error {
	err := check.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return &EmptyFieldError{Field: verrs[0].Field()}
	}
	return &EmptyFieldError{Field: whole}
}

func (v *Validator) Location() *time.Location      { return v.loc }
func (v *Validator) Hours() timeslot.BusinessHours { return v.hours }

// Validate runs every rule. A nil error means the candidate is accepted and
// the returned span is what should be persisted. repo is only consulted
// once the local rules pass; excludeID is the record being overwritten, or
// model.NoID for a new appointment.
func (v *Validator) Validate(ctx context.Context, repo Repository, c Candidate, excludeID int64) (Span, error) {
	span, err := v.CheckRules(c)
	if err != nil {
		return Span{}, err
	}
	if err := v.detector.Detect(ctx, repo, span, excludeID); err != nil {
		return Span{}, err
	}
	return span, nil
}

// CheckRules applies everything except the conflict check.
func (v *Validator) CheckRules(c Candidate) (Span, error) {
	if err := v.fields(c); err != nil {
		return Span{}, err
	}
	start, _ := timeslot.Resolve(*c.StartDate, *c.StartSlot, v.loc)
	end, _ := timeslot.Resolve(*c.EndDate, *c.EndSlot, v.loc)

	switch {
	case start.After(end):
		return Span{}, &OrderingError{Start: start, End: end}
	case start.Equal(end):
		return Span{}, &MinimumDurationError{At: start}
	}

	open, close := v.hours.Bounds(*c.StartDate, v.loc)
	if err := within(EndpointStart, start, open, close); err != nil {
		return Span{}, err
	}
	if err := within(EndpointEnd, end, open, close); err != nil {
		return Span{}, err
	}
	return Span{Start: start, End: end}, nil
}

func within(ep Endpoint, t, open, close time.Time) error {
	if t.Before(open) {
		return &BusinessHoursError{Endpoint: ep, Bound: BoundOpen, Limit: open}
	}
	if t.After(close) {
		return &BusinessHoursError{Endpoint: ep, Bound: BoundClose, Limit: close}
	}
	return nil
}

func (v *Validator) fields(c Candidate) error {
	return CheckFields(v.check, c, "candidate")
}
