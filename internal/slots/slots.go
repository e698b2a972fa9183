// Package slots holds the calendar arithmetic behind doctor bookings: the
// date/time keys stored in a doctor's slots_booked map and the 7-day display
// grid offered to patients.
package slots

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "03:04 PM"

	Interval  = 30 * time.Minute
	OpenHour  = 10
	CloseHour = 19
	Days      = 7
)

var (
	ErrInvalidDate = errors.New("slot date must be YYYY-MM-DD")
	ErrInvalidTime = errors.New("slot time must be hh:mm AM/PM")
)

// Booked maps a slot date to the times already taken on that date.
type Booked map[string][]string

type Slot struct {
	DateTime time.Time `json:"dateTime"`
	Time     string    `json:"time"`
	IsBooked bool      `json:"isBooked"`
}

type Day struct {
	Date  string `json:"dateStr"`
	Slots []Slot `json:"slots"`
}

func DateKey(t time.Time) string { return t.Format(DateLayout) }

func TimeLabel(t time.Time) string { return t.Format(TimeLayout) }

// Validate checks that date and time are in the stored key formats. Both are
// used verbatim as document field paths and values, so nothing else may pass.
func Validate(date, tm string) error {
	d, err := time.Parse(DateLayout, date)
	if err != nil || d.Format(DateLayout) != date {
		return fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	t, err := time.Parse(TimeLayout, tm)
	if err != nil || t.Format(TimeLayout) != tm {
		return fmt.Errorf("%w: %q", ErrInvalidTime, tm)
	}
	return nil
}

func Contains(b Booked, date, tm string) bool {
	return slices.Contains(b[date], tm)
}

// Week lays out Days consecutive days starting at now's calendar day, in
// now's location.
func Week(now time.Time, booked Booked) []Day {
	days := make([]Day, 0, Days)
	y, m, d := now.Date()
	loc := now.Location()

	for i := 0; i < Days; i++ {
		start := time.Date(y, m, d+i, OpenHour, 0, 0, 0, loc)
		end := time.Date(y, m, d+i, CloseHour, 0, 0, 0, loc)
		if i == 0 {
			// Late in the evening next may fall on tomorrow; the day then has no slots.
			if next := nextHalfHour(now); next.After(start) {
				start = next
			}
		}

		day := Day{Date: DateKey(time.Date(y, m, d+i, 0, 0, 0, 0, loc)), Slots: []Slot{}}
		for cur := start; cur.Before(end); cur = cur.Add(Interval) {
			label := TimeLabel(cur)
			day.Slots = append(day.Slots, Slot{
				DateTime: cur,
				Time:     label,
				IsBooked: Contains(booked, day.Date, label),
			})
		}
		days = append(days, day)
	}
	return days
}

// nextHalfHour returns the first :00 or :30 boundary strictly after now.
func nextHalfHour(now time.Time) time.Time {
	y, m, d := now.Date()
	mins := now.Hour()*60 + now.Minute()
	next := (mins/30 + 1) * 30
	return time.Date(y, m, d, next/60, next%60, 0, 0, now.Location())
}
