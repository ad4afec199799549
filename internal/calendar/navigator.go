package calendar

import (
	"fmt"
	"time"
)

// Navigator holds the active view: a mode plus the year and index the user
// navigated to. Selecting a mode resets the index to the one covering today.
type Navigator struct {
	loc   *time.Location
	now   func() time.Time
	mode  Mode
	year  int
	index int
}

// NewNavigator starts in month view on the current month.
func NewNavigator(loc *time.Location, now func() time.Time) *Navigator {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	n := &Navigator{loc: loc, now: now, year: now().In(loc).Year()}
	n.Select(ModeMonth)
	return n
}

func (n *Navigator) Mode() Mode { return n.mode }
func (n *Navigator) Year() int  { return n.year }
func (n *Navigator) Index() int { return n.index }

// Select switches the view mode.
func (n *Navigator) Select(m Mode) {
	today := n.now().In(n.loc)
	n.mode = m
	switch m {
	case ModeMonth:
		n.index = int(today.Month())
	case ModeWeek:
		n.index = today.YearDay()/7 + 1
		if last := WeeksInYear(n.year); n.index > last {
			n.index = last
		}
	default:
		n.index = 0
	}
}

// SetYear moves to another year, clamping a week index the new year lacks.
func (n *Navigator) SetYear(year int) {
	n.year = year
	if n.mode == ModeWeek {
		if last := WeeksInYear(year); n.index > last {
			n.index = last
		}
	}
}

func (n *Navigator) SetIndex(i int) error {
	switch n.mode {
	case ModeMonth:
		if i < 1 || i > 12 {
			return fmt.Errorf("month %d: %w", i, ErrIndex)
		}
	case ModeWeek:
		if last := WeeksInYear(n.year); i < 1 || i > last {
			return fmt.Errorf("week %d of %d: %w", i, last, ErrIndex)
		}
	default:
		return nil
	}
	n.index = i
	return nil
}

// Options lists what the index selector offers in the current mode.
func (n *Navigator) Options() []string {
	return Options(n.mode, n.year)
}

func (n *Navigator) Window() (Window, error) {
	return Compute(n.mode, n.index, n.year, n.loc)
}

// Resolve computes the window a request names. A zero year means the
// current one and a zero index the month or week covering now.
func Resolve(mode Mode, index, year int, loc *time.Location, now func() time.Time) (Window, error) {
	n := NewNavigator(loc, now)
	if year != 0 {
		n.SetYear(year)
	}
	n.Select(mode)
	if index != 0 {
		if err := n.SetIndex(index); err != nil {
			return Window{}, err
		}
	}
	return n.Window()
}

// Options lists the index choices for mode in year: month names, "Week N"
// entries, or a single empty entry for the year and all views.
func Options(mode Mode, year int) []string {
	switch mode {
	case ModeMonth:
		return append([]string(nil), MonthNames[:]...)
	case ModeWeek:
		n := WeeksInYear(year)
		out := make([]string, n)
		for i := range out {
			out[i] = fmt.Sprintf("Week %d", i+1)
		}
		return out
	default:
		return []string{""}
	}
}
