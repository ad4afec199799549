// Package calendar computes the date ranges behind the month, week, year
// and all-records views.
package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Mode int

const (
	ModeMonth Mode = iota
	ModeWeek
	ModeYear
	ModeAll
)

var modeNames = [...]string{"month", "week", "year", "all"}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

func ParseMode(s string) (Mode, error) {
	for i, n := range modeNames {
		if strings.EqualFold(s, n) {
			return Mode(i), nil
		}
	}
	return 0, fmt.Errorf("unknown view mode %q", s)
}

// MonthNames in calendar order; index i is month i+1.
var MonthNames = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

const (
	// MinYear and MaxYear bound the data the store keeps valid. Any window
	// reaching outside them falls back to the unfiltered view.
	MinYear = 2000
	MaxYear = 2050

	AllLabel = "All Records"
)

var ErrIndex = errors.New("view index out of range")

var (
	lowerBound = time.Date(MinYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	upperBound = time.Date(MaxYear, time.December, 31, 0, 0, 0, 0, time.UTC)
)

// Window is a resolved date range for one view. Start and End are local
// midnights; End is inclusive when EndInclusive is set.
type Window struct {
	Mode         Mode
	Start        time.Time
	End          time.Time
	EndInclusive bool
	// Unfiltered tells the repository to skip the date predicate.
	Unfiltered bool
	Label      string
}

// Bounds is the half-open instant range [from, to) covered by the window.
// An inclusive end date covers that whole day.
func (w Window) Bounds() (from, to time.Time) {
	if w.EndInclusive {
		return w.Start, w.End.AddDate(0, 0, 1)
	}
	return w.Start, w.End
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	if w.Unfiltered {
		return true
	}
	from, to := w.Bounds()
	return !t.Before(from) && t.Before(to)
}

// Compute resolves the window for a view. index is the month (1-12) for
// ModeMonth, the week (1-WeeksInYear) for ModeWeek and ignored otherwise.
func Compute(mode Mode, index, year int, loc *time.Location) (Window, error) {
	if loc == nil {
		loc = time.Local
	}
	var w Window
	switch mode {
	case ModeMonth:
		if index < 1 || index > 12 {
			return Window{}, fmt.Errorf("month %d: %w", index, ErrIndex)
		}
		first := time.Date(year, time.Month(index), 1, 0, 0, 0, 0, loc)
		w = Window{
			Mode:  ModeMonth,
			Start: first,
			End:   first.AddDate(0, 1, 0),
			Label: fmt.Sprintf("%s, %d", MonthNames[index-1], year),
		}
	case ModeWeek:
		if n := WeeksInYear(year); index < 1 || index > n {
			return Window{}, fmt.Errorf("week %d of %d: %w", index, n, ErrIndex)
		}
		start := time.Date(year, time.January, 1, 0, 0, 0, 0, loc).AddDate(0, 0, 7*(index-1))
		end := start.AddDate(0, 0, 6)
		w = Window{
			Mode:         ModeWeek,
			Start:        start,
			End:          end,
			EndInclusive: true,
			Label: fmt.Sprintf("Week %d - [%s - %s]", index,
				start.Format("January 2, 2006"), end.Format("January 2, 2006")),
		}
	case ModeYear:
		w = Window{
			Mode:         ModeYear,
			Start:        time.Date(year, time.January, 1, 0, 0, 0, 0, loc),
			End:          time.Date(year, time.December, 31, 0, 0, 0, 0, loc),
			EndInclusive: true,
			Label:        fmt.Sprint(year),
		}
	case ModeAll:
		return All(loc), nil
	default:
		return Window{}, fmt.Errorf("compute window: unknown mode %d", int(mode))
	}
	if outOfRange(w.Start) || outOfRange(w.End) {
		return All(loc), nil
	}
	return w, nil
}

// All is the sentinel window meaning "no filtering".
func All(loc *time.Location) Window {
	if loc == nil {
		loc = time.Local
	}
	return Window{
		Mode:       ModeAll,
		Start:      time.Date(MinYear-1, time.January, 1, 0, 0, 0, 0, loc),
		End:        time.Date(MaxYear+1, time.January, 1, 0, 0, 0, 0, loc),
		Unfiltered: true,
		Label:      AllLabel,
	}
}

// outOfRange compares calendar dates, ignoring the zone.
func outOfRange(t time.Time) bool {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return day.Before(lowerBound) || day.After(upperBound)
}

// WeeksInYear is the ISO-8601 week count of year: 53 when the year starts on
// a Thursday, or on a Wednesday in a leap year; 52 otherwise.
func WeeksInYear(year int) int {
	_, w := time.Date(year, time.December, 28, 0, 0, 0, 0, time.UTC).ISOWeek()
	return w
}
