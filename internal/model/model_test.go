package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	d, err := ParseClock("10:30")
	require.NoError(t, err)
	assert.Equal(t, 10*time.Hour+30*time.Minute, d)

	for _, bad := range []string{"", "25:00", "10:70", "10am", "10"} {
		_, err := ParseClock(bad)
		assert.Error(t, err, "%q should not parse", bad)
	}
}

func TestWeekdayValid(t *testing.T) {
	assert.True(t, WeekdayMonday.Valid())
	assert.True(t, WeekdayFriday.Valid())
	assert.False(t, Weekday("saturday").Valid())
	assert.False(t, Weekday("").Valid())
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to AppointmentStatus
		ok       bool
	}{
		{AppointmentStatusPending, AppointmentStatusConfirmed, true},
		{AppointmentStatusPending, AppointmentStatusCancelled, true},
		{AppointmentStatusPending, AppointmentStatusCompleted, false},
		{AppointmentStatusConfirmed, AppointmentStatusCompleted, true},
		{AppointmentStatusConfirmed, AppointmentStatusCancelled, true},
		{AppointmentStatusConfirmed, AppointmentStatusPending, false},
		{AppointmentStatusCompleted, AppointmentStatusCancelled, false},
		{AppointmentStatusCancelled, AppointmentStatusConfirmed, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.ok, CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestAppointmentOverlaps(t *testing.T) {
	start := time.Date(2026, 9, 2, 10, 0, 0, 0, time.UTC)
	appt := &Appointment{StartAt: start, EndAt: start.Add(30 * time.Minute)}

	assert.True(t, appt.Overlaps(start.Add(15*time.Minute), start.Add(45*time.Minute)))
	assert.True(t, appt.Overlaps(start.Add(-15*time.Minute), start.Add(15*time.Minute)))
	// Touching boundaries do not overlap.
	assert.False(t, appt.Overlaps(start.Add(30*time.Minute), start.Add(time.Hour)))
	assert.False(t, appt.Overlaps(start.Add(-time.Hour), start))
}

func TestNoticeTargeting(t *testing.T) {
	studentID := uuid.New()

	centerWide := &Notice{CenterID: uuid.New()}
	assert.True(t, centerWide.CenterWide())
	assert.True(t, centerWide.Targets(studentID))

	targeted := &Notice{CenterID: uuid.New(), StudentIDs: []uuid.UUID{studentID}}
	assert.False(t, targeted.CenterWide())
	assert.True(t, targeted.Targets(studentID))
	assert.False(t, targeted.Targets(uuid.New()))
}

func TestNextVisit(t *testing.T) {
	sched := &VisitSchedule{
		Weekday:   WeekdayWednesday,
		StartTime: "10:00",
		EndTime:   "11:00",
		Location:  "Nurse room",
	}

	// Monday before the visit: same week.
	monday := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	assert.Contains(t, sched.NextVisit(monday), "2026-09-02")

	// Wednesday after the visit started: next week.
	wednesdayNoon := time.Date(2026, 9, 2, 12, 0, 0, 0, time.UTC)
	assert.Contains(t, sched.NextVisit(wednesdayNoon), "2026-09-09")
}

func TestDateRangeContains(t *testing.T) {
	at := time.Date(2026, 9, 2, 10, 0, 0, 0, time.UTC)

	assert.True(t, DateRange{}.Contains(at))
	assert.True(t, DateRange{From: at.Add(-time.Hour), To: at.Add(time.Hour)}.Contains(at))
	assert.False(t, DateRange{From: at.Add(time.Hour)}.Contains(at))
	assert.False(t, DateRange{To: at.Add(-time.Hour)}.Contains(at))
}
