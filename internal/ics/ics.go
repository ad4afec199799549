// Package ics renders appointments as an iCalendar feed.
package ics

import (
	"fmt"
	"io"
	"time"

	ical "github.com/arran4/golang-ical"

	"appointment-scheduler/internal/model"
)

const ProductID = "-//appointment-scheduler//calendar//EN"

// UID is the stable event id of an appointment.
func UID(id int64) string {
	return fmt.Sprintf("appointment-%d@appointment-scheduler", id)
}

// Build turns appts into a PUBLISH calendar named name. Times are written
// in UTC; stamp is the DTSTAMP of every event.
func Build(name string, appts []model.Appointment, stamp time.Time) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(ProductID)
	if name != "" {
		cal.SetXWRCalName(name)
	}
	for _, a := range appts {
		ev := cal.AddEvent(UID(a.ID))
		ev.SetDtStampTime(stamp.UTC())
		ev.SetStartAt(a.Start.UTC())
		ev.SetEndAt(a.End.UTC())
		ev.SetSummary(a.Title)
		if a.Description != "" {
			ev.SetDescription(a.Description)
		}
		if a.Location != "" {
			ev.SetLocation(a.Location)
		}
		if a.Type != "" {
			ev.SetProperty(ical.ComponentPropertyCategories, a.Type)
		}
		if !a.CreatedAt.IsZero() {
			ev.SetCreatedTime(a.CreatedAt.UTC())
		}
		if !a.UpdatedAt.IsZero() {
			ev.SetModifiedAt(a.UpdatedAt.UTC())
		}
	}
	return cal
}

// Write serializes the calendar built from appts to w.
func Write(w io.Writer, name string, appts []model.Appointment, stamp time.Time) error {
	_, err := io.WriteString(w, Build(name, appts, stamp).Serialize())
	return err
}
