package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"docbook/pkg/timeofday"
)

// DateLayout is the wire format of a calendar date.
const DateLayout = "2006-01-02"

// SlotDuration is fixed; every booking occupies one hour.
const SlotDuration = time.Hour

type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancel"
	// StatusFinished is derived for display and never stored.
	StatusFinished Status = "finished"
)

func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("status must be a string: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "confirmed":
		*s = StatusConfirmed
	case "cancel", "cancelled", "canceled":
		*s = StatusCancelled
	case "finished":
		*s = StatusFinished
	case "":
		*s = ""
	default:
		*s = Status(raw)
	}
	return nil
}

type Booking struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	Name      string    `json:"name" bson:"name"`
	DoctorID  string    `json:"doctorId" bson:"doctor_id"`
	Date      string    `json:"date" bson:"date"`
	Start     float64   `json:"start" bson:"start"`
	Status    Status    `json:"status" bson:"status"`
	CreatedAt time.Time `json:"-" bson:"created_at"`
}

func (b *Booking) End() float64 {
	return b.Start + SlotDuration.Hours()
}

func (b *Booking) IsConfirmed() bool {
	return b.Status == StatusConfirmed
}

// StartsAt resolves the booking's date and start hour in loc.
func (b *Booking) StartsAt(loc *time.Location) (time.Time, error) {
	date, err := ParseDate(b.Date, loc)
	if err != nil {
		return time.Time{}, err
	}
	return timeofday.At(date, b.Start), nil
}

type NewBookingRequest struct {
	Name     string  `json:"name" validate:"required,min=1,max=100"`
	DoctorID string  `json:"doctorId" validate:"required"`
	Date     string  `json:"date" validate:"required,datetime=2006-01-02"`
	Start    float64 `json:"start" validate:"min=0,max=23,whole_hour"`
}

type BookingStatusUpdate struct {
	Status Status `json:"status" validate:"required"`
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
