package schedule

import (
	"fmt"
	"time"
)

// Reason names a rejection category.
type Reason string

const (
	ReasonEmptyField      Reason = "EMPTY_FIELD"
	ReasonOrdering        Reason = "ORDERING"
	ReasonBusinessHours   Reason = "BUSINESS_HOURS"
	ReasonMinimumDuration Reason = "MINIMUM_DURATION"
	ReasonConflict        Reason = "CONFLICT"
	ReasonRepository      Reason = "REPOSITORY"
)

// Violation is implemented by every error the validator returns.
type Violation interface {
	error
	Reason() Reason
}

type EmptyFieldError struct {
	Field string
}

func (e *EmptyFieldError) Error() string  { return fmt.Sprintf("field %s may not be empty", e.Field) }
func (e *EmptyFieldError) Reason() Reason { return ReasonEmptyField }

type OrderingError struct {
	Start, End time.Time
}

func (e *OrderingError) Error() string {
	return fmt.Sprintf("start %s must be before end %s", e.Start.Format(time.RFC3339), e.End.Format(time.RFC3339))
}
func (e *OrderingError) Reason() Reason { return ReasonOrdering }

// Endpoint says which side of the appointment broke a rule.
type Endpoint string

const (
	EndpointStart Endpoint = "start"
	EndpointEnd   Endpoint = "end"
)

// Bound is the business-hours edge that was crossed.
type Bound string

const (
	BoundOpen  Bound = "open"
	BoundClose Bound = "close"
)

type BusinessHoursError struct {
	Endpoint Endpoint
	Bound    Bound
	// Limit is the violated bound in the caller's zone.
	Limit time.Time
}

func (e *BusinessHoursError) Error() string {
	rel := "before"
	if e.Bound == BoundClose {
		rel = "after"
	}
	return fmt.Sprintf("%s time may not be %s %s", e.Endpoint, rel, e.Limit.Format("3:04:05 PM MST"))
}
func (e *BusinessHoursError) Reason() Reason { return ReasonBusinessHours }

type MinimumDurationError struct {
	At time.Time
}

func (e *MinimumDurationError) Error() string {
	return "appointments must be at least 15 minutes long"
}
func (e *MinimumDurationError) Reason() Reason { return ReasonMinimumDuration }

type ConflictError struct {
	Conflict Conflict
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("overlap: %s: id %d title %q", e.Conflict.Rule.Describe(), e.Conflict.ID, e.Conflict.Title)
}
func (e *ConflictError) Reason() Reason { return ReasonConflict }

// RepositoryError is a storage failure surfaced as is. It is never retried.
type RepositoryError struct {
	Op  string
	Err error
}

func (e *RepositoryError) Error() string  { return fmt.Sprintf("repository %s: %v", e.Op, e.Err) }
func (e *RepositoryError) Unwrap() error  { return e.Err }
func (e *RepositoryError) Reason() Reason { return ReasonRepository }
