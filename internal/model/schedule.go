package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Weekday enumerates the school days a visit schedule may fall on.
type Weekday string

const (
	WeekdayMonday    Weekday = "monday"
	WeekdayTuesday   Weekday = "tuesday"
	WeekdayWednesday Weekday = "wednesday"
	WeekdayThursday  Weekday = "thursday"
	WeekdayFriday    Weekday = "friday"
)

var weekdays = map[Weekday]time.Weekday{
	WeekdayMonday:    time.Monday,
	WeekdayTuesday:   time.Tuesday,
	WeekdayWednesday: time.Wednesday,
	WeekdayThursday:  time.Thursday,
	WeekdayFriday:    time.Friday,
}

func (w Weekday) Valid() bool {
	_, ok := weekdays[w]
	return ok
}

func (w Weekday) Time() time.Weekday {
	return weekdays[w]
}

// ClockTime is a wall-clock "HH:MM" value within a visit day.
const ClockLayout = "15:04"

func ParseClock(s string) (time.Duration, error) {
	t, err := time.Parse(ClockLayout, s)
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q: %w", s, err)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// VisitSchedule is the recurring day/time/location plan for a center's
// consultations. At most one active schedule exists per center; updates
// supersede the previous row instead of deleting it.
type VisitSchedule struct {
	Base
	CenterID     uuid.UUID  `db:"center_id" json:"center_id"`
	Weekday      Weekday    `db:"weekday" json:"weekday"`
	StartTime    string     `db:"start_time" json:"start_time"`
	EndTime      string     `db:"end_time" json:"end_time"`
	Location     string     `db:"location" json:"location"`
	Active       bool       `db:"active" json:"active"`
	SupersededAt *time.Time `db:"superseded_at" json:"superseded_at,omitempty"`
}

// NextVisit returns the next occurrence of the schedule after now,
// formatted for display ("Wednesday 10:00-11:00, Nurse room").
func (s *VisitSchedule) NextVisit(now time.Time) string {
	days := (int(s.Weekday.Time()) - int(now.Weekday()) + 7) % 7
	start, err := ParseClock(s.StartTime)
	if err == nil && days == 0 {
		midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		if now.Sub(midnight) >= start {
			days = 7
		}
	}
	next := now.AddDate(0, 0, days)
	return fmt.Sprintf("%s %s-%s, %s (%s)",
		s.Weekday.Time().String(), s.StartTime, s.EndTime, s.Location,
		next.Format("2006-01-02"))
}

type UpdateScheduleRequest struct {
	Weekday   Weekday `json:"weekday" binding:"required,weekday"`
	StartTime string  `json:"start_time" binding:"required,clock"`
	EndTime   string  `json:"end_time" binding:"required,clock"`
	Location  string  `json:"location" binding:"required,max=200"`
	Reason    string  `json:"reason" binding:"max=500"`
}
