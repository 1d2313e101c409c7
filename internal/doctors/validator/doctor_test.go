package validator

import (
	"errors"
	"strings"
	"testing"

	"docbook/pkg/model"
	"docbook/pkg/validation"
)

func validDoctor() *model.Doctor {
	return &model.Doctor{
		ID:   "d1",
		Name: "Dr. Ada Park",
		Address: model.Address{
			Line1:    "1 Harbour Road",
			District: "Central",
		},
		OpeningHours: []model.OpeningHour{
			{Day: model.Sunday, IsClosed: true},
			{Day: model.Monday, Start: 9, End: 17},
		},
	}
}

func TestDoctorValidator_Valid(t *testing.T) {
	v := NewDoctorValidator()
	if err := v.Validate(validDoctor()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestDoctorValidator_Rules(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(d *model.Doctor)
		message string
	}{
		{
			name:    "missing name",
			mutate:  func(d *model.Doctor) { d.Name = "" },
			message: "Name is required",
		},
		{
			name:    "missing district",
			mutate:  func(d *model.Doctor) { d.Address.District = "" },
			message: "District is required",
		},
		{
			name: "end before start",
			mutate: func(d *model.Doctor) {
				d.OpeningHours[1] = model.OpeningHour{Day: model.Monday, Start: 17, End: 9}
			},
			message: "End must be after Start",
		},
		{
			name: "duplicate weekday",
			mutate: func(d *model.Doctor) {
				d.OpeningHours = append(d.OpeningHours, model.OpeningHour{Day: model.Monday, Start: 10, End: 12})
			},
			message: "lists MON more than once",
		},
		{
			name: "hour out of range",
			mutate: func(d *model.Doctor) {
				d.OpeningHours[1].End = 25
			},
			message: "End must be at most 24",
		},
	}

	v := NewDoctorValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDoctor()
			tt.mutate(d)

			err := v.Validate(d)
			var verrs validation.Errors
			if !errors.As(err, &verrs) {
				t.Fatalf("expected validation.Errors, got %v", err)
			}
			if !strings.Contains(verrs.Error(), tt.message) {
				t.Errorf("error %q does not mention %q", verrs.Error(), tt.message)
			}
		})
	}
}

func TestDoctorValidator_ClosedDayIgnoresWindow(t *testing.T) {
	d := validDoctor()
	d.OpeningHours[0] = model.OpeningHour{Day: model.Sunday, IsClosed: true, Start: 0, End: 0}
	if err := NewDoctorValidator().Validate(d); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
