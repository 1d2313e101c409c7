package validator

import (
	"fmt"
	"math"

	"docbook/pkg/logger"
	"docbook/pkg/model"
	"docbook/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type BookingValidator struct {
	v *validation.Validator
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	v := validation.New(
		validation.WithJSONNames(),
		validation.WithMessage("datetime", func(fe validator.FieldError) string {
			return fmt.Sprintf("%s must be a date in YYYY-MM-DD format", fe.Field())
		}),
		validation.WithMessage("whole_hour", func(fe validator.FieldError) string {
			return fmt.Sprintf("%s must be a whole hour", fe.Field())
		}),
	)
	if err := v.Engine().RegisterValidation("whole_hour", wholeHour); err != nil {
		log.Fatal("Failed to register 'whole_hour' validator", "error", err)
	}
	return &BookingValidator{v: v}
}

func wholeHour(fl validator.FieldLevel) bool {
	f := fl.Field().Float()
	return f == math.Trunc(f)
}

func (b *BookingValidator) Validate(req *model.NewBookingRequest) error {
	return b.v.Struct(req)
}

// ValidateStatusUpdate accepts cancel as the only patient-driven transition.
func (b *BookingValidator) ValidateStatusUpdate(update *model.BookingStatusUpdate) error {
	if err := b.v.Struct(update); err != nil {
		return err
	}
	if update.Status != model.StatusCancelled {
		return validation.Errors{{
			Field:   "status",
			Message: fmt.Sprintf("status %q is not allowed, only %q", update.Status, model.StatusCancelled),
		}}
	}
	return nil
}
