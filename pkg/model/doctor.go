package model

import (
	"encoding/json"
	"fmt"
	"strconv"

	"docbook/pkg/timeofday"
)

// TimeOfDay is a float hour on a 24h scale, 9.5 == 09:30.
type TimeOfDay float64

func (t TimeOfDay) Hours() float64 {
	return float64(t)
}

func (t TimeOfDay) String() string {
	return timeofday.ToTimeString(float64(t))
}

// UnmarshalJSON takes a number, or a string in either "HH:MM" or the
// doctor-record "H.MM" form.
func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*t = TimeOfDay(f)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("time of day must be a string or number: %w", err)
	}
	if s == "" {
		*t = 0
		return nil
	}
	h, err := timeofday.Normalize(s)
	if err != nil {
		return err
	}
	*t = TimeOfDay(h)
	return nil
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(float64(t), 'f', -1, 64)), nil
}

type OpeningHour struct {
	Day      Weekday   `json:"day" bson:"day" validate:"min=0,max=6"`
	Start    TimeOfDay `json:"start" bson:"start" validate:"min=0,max=24"`
	End      TimeOfDay `json:"end" bson:"end" validate:"min=0,max=24"`
	IsClosed bool      `json:"isClosed" bson:"is_closed"`
}

type Address struct {
	Line1    string `json:"line_1" bson:"line_1" validate:"required,max=200"`
	Line2    string `json:"line_2" bson:"line_2" validate:"max=200"`
	District string `json:"district" bson:"district" validate:"required,max=100"`
}

type Doctor struct {
	ID           string        `json:"id" bson:"_id,omitempty"`
	Name         string        `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Description  string        `json:"description" bson:"description" validate:"max=1000"`
	Address      Address       `json:"address" bson:"address"`
	OpeningHours []OpeningHour `json:"opening_hours" bson:"opening_hours" validate:"max=7,dive"`
}

// OpeningHourFor returns the entry for day, if the doctor has one.
func (d *Doctor) OpeningHourFor(day Weekday) (OpeningHour, bool) {
	for _, h := range d.OpeningHours {
		if h.Day == day {
			return h, true
		}
	}
	return OpeningHour{}, false
}
