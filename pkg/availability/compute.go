package availability

import (
	"time"

	"docbook/pkg/model"
)

// Availability is everything a booking form needs for one selected date.
type Availability struct {
	Date             string
	Window           Window
	Open             bool
	Slots            Slots
	UnavailableDates []string
	MinDate          string
	MaxDate          string
}

// Compute resolves the window for date and runs the slot calculator over
// bookings, which must already be filtered to the doctor.
func Compute(hours []model.OpeningHour, date time.Time, bookings []model.Booking, now time.Time, horizon int) Availability {
	window, open := WindowForDate(hours, date)
	today := model.StartOfDay(now)

	return Availability{
		Date:             model.FormatDate(date),
		Window:           window,
		Open:             open,
		Slots:            AvailableSlots(date, window, bookings, now),
		UnavailableDates: UnavailableDates(hours, today, horizon),
		MinDate:          model.FormatDate(MinSelectableDate(hours, now)),
		MaxDate:          model.FormatDate(today.AddDate(0, 0, horizon)),
	}
}

// InRange reports whether date lies between MinDate and MaxDate inclusive and
// is not a closed date.
func (a Availability) InRange(date string) bool {
	if date < a.MinDate || date > a.MaxDate {
		return false
	}
	for _, d := range a.UnavailableDates {
		if d == date {
			return false
		}
	}
	return true
}
