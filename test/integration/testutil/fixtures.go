package testutil

import (
	"time"

	"docbook/pkg/model"
)

type DoctorBuilder struct {
	doctor model.Doctor
}

// NewDoctorBuilder starts from a doctor open every day 08:00-18:00.
func NewDoctorBuilder(id string) *DoctorBuilder {
	hours := make([]model.OpeningHour, 0, 7)
	for d := model.Sunday; d <= model.Saturday; d++ {
		hours = append(hours, model.OpeningHour{Day: d, Start: 8, End: 18})
	}
	return &DoctorBuilder{
		doctor: model.Doctor{
			ID:           id,
			Name:         "Dr. Test",
			Description:  "Integration test doctor",
			Address:      model.Address{Line1: "1 Test Street", District: "Central"},
			OpeningHours: hours,
		},
	}
}

func (b *DoctorBuilder) WithName(name string) *DoctorBuilder {
	b.doctor.Name = name
	return b
}

func (b *DoctorBuilder) ClosedOn(day model.Weekday) *DoctorBuilder {
	for i := range b.doctor.OpeningHours {
		if b.doctor.OpeningHours[i].Day == day {
			b.doctor.OpeningHours[i] = model.OpeningHour{Day: day, IsClosed: true}
		}
	}
	return b
}

func (b *DoctorBuilder) Build() model.Doctor {
	return b.doctor
}

// DaysAhead returns the YYYY-MM-DD date n days from today.
func DaysAhead(n int) string {
	return model.FormatDate(time.Now().AddDate(0, 0, n))
}

func NewBookingRequest(doctorID, date string, start float64) model.NewBookingRequest {
	return model.NewBookingRequest{
		Name:     "Integration Patient",
		DoctorID: doctorID,
		Date:     date,
		Start:    start,
	}
}
