// Package timeslot turns (date, slot) pairs picked from the 15-minute grid
// into absolute instants and owns the business-hours window.
package timeslot

import (
	"errors"
	"fmt"
	"time"
)

const (
	// SlotCount is the number of selectable times in a day.
	SlotCount = 96
	// SlotLength is the grid resolution.
	SlotLength = 15 * time.Minute
)

var (
	ErrSlotRange = errors.New("slot out of range")
	ErrOffGrid   = errors.New("time is not on the 15 minute grid")
)

// Slot is an index into the daily grid: slot k starts 15*k minutes after midnight.
type Slot int

func (s Slot) Valid() bool { return s >= 0 && s < SlotCount }

// Offset is the distance from local midnight.
func (s Slot) Offset() time.Duration { return time.Duration(s) * SlotLength }

func (s Slot) Clock() (hour, min int) {
	m := int(s) * 15
	return m / 60, m % 60
}

// String renders the slot as 24h "HH:MM".
func (s Slot) String() string {
	h, m := s.Clock()
	return fmt.Sprintf("%02d:%02d", h, m)
}

func (s Slot) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("slot %d: %w", int(s), ErrSlotRange)
	}
	return []byte(s.String()), nil
}

func (s *Slot) UnmarshalText(b []byte) error {
	v, err := ParseClock(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Grid returns every slot of the day in order.
func Grid() []Slot {
	out := make([]Slot, SlotCount)
	for i := range out {
		out[i] = Slot(i)
	}
	return out
}

// ParseClock maps "HH:MM" onto the grid.
func ParseClock(s string) (Slot, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("parse clock %q: %w", s, err)
	}
	return FromTime(t)
}

// FromTime returns the slot of t's wall clock in t's own location.
func FromTime(t time.Time) (Slot, error) {
	if t.Second() != 0 || t.Nanosecond() != 0 || t.Minute()%15 != 0 {
		return 0, ErrOffGrid
	}
	return Slot(t.Hour()*4 + t.Minute()/15), nil
}

// Date is a calendar day with no zone attached.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// DateOf returns the calendar day of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Date) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Date) UnmarshalText(b []byte) error {
	v, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// Midnight is the start of d in loc.
func (d Date) Midnight(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// Resolve produces the instant of the wall-clock time (d, s) in loc.
func Resolve(d Date, s Slot, loc *time.Location) (time.Time, error) {
	if !s.Valid() {
		return time.Time{}, fmt.Errorf("slot %d: %w", int(s), ErrSlotRange)
	}
	if loc == nil {
		loc = time.Local
	}
	h, m := s.Clock()
	return time.Date(d.Year, d.Month, d.Day, h, m, 0, 0, loc), nil
}

// Label is the display string for s shown to a user in loc, e.g.
// "8:00 AM (EST-05:00)". The offset is the one in effect at the instant at.
func Label(s Slot, loc *time.Location, at time.Time) string {
	if loc == nil {
		loc = time.Local
	}
	h, m := s.Clock()
	clock := time.Date(2000, 1, 1, h, m, 0, 0, time.UTC).Format("3:04 PM")
	local := at.In(loc)
	zone, _ := local.Zone()
	return fmt.Sprintf("%s (%s%s)", clock, zone, local.Format("-07:00"))
}
