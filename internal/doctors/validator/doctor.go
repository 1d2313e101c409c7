package validator

import (
	"fmt"

	"docbook/pkg/model"
	"docbook/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type DoctorValidator struct {
	v *validation.Validator
}

func NewDoctorValidator() *DoctorValidator {
	v := validation.New(
		validation.WithMessage("gtfield", func(fe validator.FieldError) string {
			return fmt.Sprintf("%s must be after %s on open days", fe.Field(), fe.Param())
		}),
		validation.WithMessage("unique_day", func(fe validator.FieldError) string {
			return fmt.Sprintf("%s lists %s more than once", fe.Field(), fe.Param())
		}),
	)
	v.Engine().RegisterStructValidation(openingHourRules, model.OpeningHour{})
	v.Engine().RegisterStructValidation(doctorRules, model.Doctor{})
	return &DoctorValidator{v: v}
}

// openingHourRules requires a non-empty window on open days.
func openingHourRules(sl validator.StructLevel) {
	h := sl.Current().Interface().(model.OpeningHour)
	if !h.IsClosed && h.End <= h.Start {
		sl.ReportError(h.End, "End", "End", "gtfield", "Start")
	}
}

// doctorRules rejects two entries for the same weekday.
func doctorRules(sl validator.StructLevel) {
	d := sl.Current().Interface().(model.Doctor)
	seen := make(map[model.Weekday]bool, len(d.OpeningHours))
	for _, h := range d.OpeningHours {
		if seen[h.Day] {
			sl.ReportError(d.OpeningHours, "OpeningHours", "OpeningHours", "unique_day", h.Day.String())
			return
		}
		seen[h.Day] = true
	}
}

func (d *DoctorValidator) Validate(doctor *model.Doctor) error {
	return d.v.Struct(doctor)
}
