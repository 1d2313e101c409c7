// Package availability computes which dates and one-hour slots of a doctor's
// weekly opening hours are still bookable.
package availability

import (
	"time"

	"docbook/pkg/model"
)

// Window is the [Start, End) range of float hours a doctor accepts bookings.
type Window struct {
	Start float64
	End   float64
}

func (w Window) IsZero() bool {
	return w.End <= w.Start
}

func (w Window) Contains(hour float64) bool {
	return hour >= w.Start && hour < w.End
}

// UnavailableDates lists, as YYYY-MM-DD, every date from today to
// today+horizon inclusive that falls on a closed weekday.
func UnavailableDates(hours []model.OpeningHour, today time.Time, horizon int) []string {
	closed := make(map[model.Weekday]struct{})
	for _, h := range hours {
		if h.IsClosed {
			closed[h.Day] = struct{}{}
		}
	}

	dates := []string{}
	for _, day := range enumerate(today, horizon) {
		if _, ok := closed[model.WeekdayOf(day)]; ok {
			dates = append(dates, model.FormatDate(day))
		}
	}
	return dates
}

// SelectableDates lists the dates of the same range that have an opening
// window.
func SelectableDates(hours []model.OpeningHour, today time.Time, horizon int) []string {
	dates := []string{}
	for _, day := range enumerate(today, horizon) {
		if _, ok := WindowForDate(hours, day); ok {
			dates = append(dates, model.FormatDate(day))
		}
	}
	return dates
}

// WindowForDate returns the opening window for date's weekday. ok is false
// when the weekday has no entry or is closed.
func WindowForDate(hours []model.OpeningHour, date time.Time) (Window, bool) {
	day := model.WeekdayOf(date)
	for _, h := range hours {
		if h.Day != day {
			continue
		}
		if h.IsClosed {
			return Window{}, false
		}
		return Window{Start: h.Start.Hours(), End: h.End.Hours()}, true
	}
	return Window{}, false
}

func enumerate(today time.Time, horizon int) []time.Time {
	start := model.StartOfDay(today)
	days := make([]time.Time, 0, horizon+1)
	for i := 0; i <= horizon; i++ {
		days = append(days, start.AddDate(0, 0, i))
	}
	return days
}
