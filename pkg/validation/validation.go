// Package validation wraps go-playground/validator so every feature reports
// field errors the same way.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Errors is returned for any struct that fails its rules. Its text is the
// joined messages, ready to show to a user.
type Errors []FieldError

func (e Errors) Error() string {
	messages := make([]string, len(e))
	for i, fe := range e {
		messages[i] = fe.Message
	}
	return strings.Join(messages, "; ")
}

// MessageFunc renders one failed rule.
type MessageFunc func(fe validator.FieldError) string

var baseMessages = map[string]MessageFunc{
	"required": func(fe validator.FieldError) string {
		return fmt.Sprintf("%s is required", fe.Field())
	},
	"min": func(fe validator.FieldError) string {
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	},
	"max": func(fe validator.FieldError) string {
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	},
}

type Validator struct {
	validate *validator.Validate
	messages map[string]MessageFunc
}

type Option func(*Validator)

// WithJSONNames reports fields by their json tag instead of the Go name.
func WithJSONNames() Option {
	return func(v *Validator) {
		v.validate.RegisterTagNameFunc(jsonFieldName)
	}
}

// WithMessage renders tag failures with fn, replacing any default.
func WithMessage(tag string, fn MessageFunc) Option {
	return func(v *Validator) {
		v.messages[tag] = fn
	}
}

func New(opts ...Option) *Validator {
	v := &Validator{
		validate: validator.New(),
		messages: make(map[string]MessageFunc, len(baseMessages)),
	}
	for tag, fn := range baseMessages {
		v.messages[tag] = fn
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Engine exposes the underlying validator for registering custom rules.
func (v *Validator) Engine() *validator.Validate {
	return v.validate
}

// Struct checks s and returns Errors when any rule fails.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := make(Errors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		message := fe.Error()
		if fn, ok := v.messages[fe.Tag()]; ok {
			message = fn(fe)
		}
		out = append(out, FieldError{Field: fieldPath(fe), Message: message})
	}
	return out
}

// fieldPath drops the root struct name: "Doctor.Address.District" becomes
// "Address.District".
func fieldPath(fe validator.FieldError) string {
	_, path, found := strings.Cut(fe.Namespace(), ".")
	if !found {
		return fe.Field()
	}
	return path
}

func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" || name == "" {
		return fld.Name
	}
	return name
}
