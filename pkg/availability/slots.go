package availability

import (
	"math"
	"time"

	"docbook/pkg/model"
	"docbook/pkg/timeofday"
)

type Slots struct {
	Possible    []string
	Unavailable []string
	// Default is the first possible time that is not unavailable; empty
	// when nothing can be booked.
	Default string
}

func (s Slots) IsAvailable(clock string) bool {
	found := false
	for _, p := range s.Possible {
		if p == clock {
			found = true
			break
		}
	}
	if !found {
		return false
	}
	for _, u := range s.Unavailable {
		if u == clock {
			return false
		}
	}
	return true
}

// AvailableSlots lists the whole-hour slot starts inside window for date and
// marks those overlapping a confirmed booking or already started today.
func AvailableSlots(date time.Time, window Window, bookings []model.Booking, now time.Time) Slots {
	slots := Slots{Possible: []string{}, Unavailable: []string{}}
	if window.IsZero() {
		return slots
	}

	target := model.FormatDate(date)
	bookedStarts := make([]float64, 0, len(bookings))
	for _, b := range bookings {
		if b.IsConfirmed() && b.Date == target {
			bookedStarts = append(bookedStarts, b.Start)
		}
	}

	isToday := target == model.FormatDate(now.In(date.Location()))
	current := timeofday.CurrentHour(now.In(date.Location()))
	slotLength := model.SlotDuration.Hours()

	for _, t := range candidates(window) {
		clock := timeofday.ToTimeString(t)
		slots.Possible = append(slots.Possible, clock)

		taken := false
		for _, booked := range bookedStarts {
			if t >= booked && t < booked+slotLength {
				taken = true
				break
			}
		}
		if taken || (isToday && t <= current) {
			slots.Unavailable = append(slots.Unavailable, clock)
		} else if slots.Default == "" {
			slots.Default = clock
		}
	}
	return slots
}

// MinSelectableDate is today, or tomorrow once today's last slot has started
// (or today has no window at all).
func MinSelectableDate(hours []model.OpeningHour, now time.Time) time.Time {
	today := model.StartOfDay(now)
	tomorrow := today.AddDate(0, 0, 1)

	window, ok := WindowForDate(hours, today)
	if !ok {
		// A closed day is also in the unavailable dates, so skipping it here
		// only moves the picker's lower bound.
		return tomorrow
	}
	starts := candidates(window)
	if len(starts) == 0 {
		return tomorrow
	}
	last := timeofday.At(today, starts[len(starts)-1])
	if !now.Before(last) {
		return tomorrow
	}
	return today
}

func candidates(window Window) []float64 {
	if window.IsZero() {
		return nil
	}
	step := model.SlotDuration.Hours()
	out := []float64{}
	for t := math.Ceil(window.Start); t < window.End; t += step {
		out = append(out, t)
	}
	return out
}
