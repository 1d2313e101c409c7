package presentation

import (
	"time"

	"docbook/pkg/model"
	"docbook/pkg/timeofday"
)

type BookingView struct {
	Booking     model.Booking
	Status      model.Status
	Start       string
	End         string
	DoctorName  string
	FullAddress string
	Cancellable bool
}

// DisplayStatus reports a confirmed booking whose start has passed as
// finished. The stored status is not touched.
func DisplayStatus(b model.Booking, now time.Time) model.Status {
	if !b.IsConfirmed() {
		return b.Status
	}
	startsAt, err := b.StartsAt(now.Location())
	if err != nil {
		return b.Status
	}
	if !startsAt.After(now) {
		return model.StatusFinished
	}
	return model.StatusConfirmed
}

// NewBookingView renders b. doctor may be nil when the doctor could not be
// resolved.
func NewBookingView(b model.Booking, doctor *DoctorProfile, now time.Time) BookingView {
	status := DisplayStatus(b, now)
	view := BookingView{
		Booking:     b,
		Status:      status,
		Start:       timeofday.ToTimeString(b.Start),
		End:         timeofday.ToTimeString(b.End()),
		Cancellable: status == model.StatusConfirmed,
	}
	if doctor != nil {
		view.DoctorName = doctor.Doctor.Name
		view.FullAddress = doctor.FullAddress
	}
	return view
}
