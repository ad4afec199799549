package timeslot

import (
	"fmt"
	"time"
)

// BusinessZone is the zone in which the business owns its hours.
const BusinessZone = "America/New_York"

const (
	DefaultOpen  Slot = 32 // 08:00
	DefaultClose Slot = 88 // 22:00
)

// BusinessHours is the daily window, defined in Zone, that every
// appointment endpoint has to fall into.
type BusinessHours struct {
	Zone  *time.Location
	Open  Slot
	Close Slot
}

// DefaultBusinessHours is 08:00-22:00 US Eastern.
func DefaultBusinessHours() (BusinessHours, error) {
	return NewBusinessHours(BusinessZone, DefaultOpen, DefaultClose)
}

func NewBusinessHours(zone string, open, close Slot) (BusinessHours, error) {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return BusinessHours{}, fmt.Errorf("business zone %q: %w", zone, err)
	}
	if !open.Valid() || !close.Valid() {
		return BusinessHours{}, fmt.Errorf("business hours %d-%d: %w", int(open), int(close), ErrSlotRange)
	}
	if close <= open {
		return BusinessHours{}, fmt.Errorf("business hours close %s not after open %s", close, open)
	}
	return BusinessHours{Zone: loc, Open: open, Close: close}, nil
}

// Bounds returns the opening and closing instants of day d, where d is read
// as a calendar day in the business zone. Both are expressed in loc so the
// caller can display them next to the user's own times.
func (b BusinessHours) Bounds(d Date, loc *time.Location) (open, close time.Time) {
	if loc == nil {
		loc = time.Local
	}
	open, _ = Resolve(d, b.Open, b.Zone)
	close, _ = Resolve(d, b.Close, b.Zone)
	return open.In(loc), close.In(loc)
}

func (b BusinessHours) String() string {
	return fmt.Sprintf("%s-%s %s", b.Open, b.Close, b.Zone)
}
