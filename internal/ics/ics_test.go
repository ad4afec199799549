package ics

import (
	"bytes"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"appointment-scheduler/internal/model"
)

func TestWriteParsesBack(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	start := time.Date(2024, time.March, 15, 10, 0, 0, 0, ny)
	appts := []model.Appointment{
		{ID: 1, Title: "Planning", Description: "quarterly", Location: "Room 4", Type: "Planning Session",
			Start: start, End: start.Add(time.Hour)},
		{ID: 2, Title: "Debrief", Start: start.Add(2 * time.Hour), End: start.Add(150 * time.Minute)},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "March, 2024", appts, start))

	cal, err := ical.ParseCalendar(&buf)
	require.NoError(t, err)
	events := cal.Events()
	require.Len(t, events, 2)

	ev := events[0]
	assert.Equal(t, UID(1), ev.GetProperty(ical.ComponentPropertyUniqueId).Value)
	assert.Equal(t, "Planning", ev.GetProperty(ical.ComponentPropertySummary).Value)
	assert.Equal(t, "Room 4", ev.GetProperty(ical.ComponentPropertyLocation).Value)
	assert.Equal(t, "Planning Session", ev.GetProperty(ical.ComponentPropertyCategories).Value)

	got, err := ev.GetStartAt()
	require.NoError(t, err)
	assert.True(t, got.Equal(start), "got %s", got)
	got, err = ev.GetEndAt()
	require.NoError(t, err)
	assert.True(t, got.Equal(start.Add(time.Hour)))

	assert.Nil(t, events[1].GetProperty(ical.ComponentPropertyLocation))
}

func TestEmptyCalendar(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "", nil, time.Now()))
	assert.Contains(t, buf.String(), "BEGIN:VCALENDAR")
	assert.Contains(t, buf.String(), ProductID)
	assert.NotContains(t, buf.String(), "BEGIN:VEVENT")
}
