package http

import (
	"errors"
	"reflect"
	"strconv"
	"strings"

	domain "water-chiller-check/internal/domain/check"

	"github.com/go-playground/validator/v10"
)

// Reusable error payload
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
type ErrorResponse struct {
	Error   string       `json:"error"`
	Details []FieldError `json:"details,omitempty"`
}

type CustomValidator struct{ v *validator.Validate }

func NewValidator() *CustomValidator {
	v := validator.New()

	// report fields by their json/form name
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	// temperature: blank, or a finite decimal within the column range (comma accepted)
	_ = v.RegisterValidation("temperature", func(fl validator.FieldLevel) bool {
		_, ok := domain.ParseReading(fl.Field().String())
		return ok
	})
	// positive integer key (machine index or row id)
	_ = v.RegisterValidation("posint", func(fl validator.FieldLevel) bool {
		n, err := strconv.ParseUint(fl.Field().String(), 10, 64)
		return err == nil && n > 0
	})

	v.RegisterStructValidation(machineKeys, checkRequest{})

	return &CustomValidator{v: v}
}

// machineKeys rejects create readings addressed to a machine that does not
// exist. Update keys are row ids and are checked by the use case.
func machineKeys(sl validator.StructLevel) {
	req := sl.Current().Interface().(checkRequest)
	if req.update {
		return
	}
	for k, r := range req.Readings {
		n, err := strconv.ParseUint(k, 10, 64)
		if err != nil || n == 0 {
			continue // reported by posint
		}
		if n > domain.MachineCount {
			sl.ReportError(r, "readings["+k+"]", "Readings["+k+"]", "machine", strconv.Itoa(domain.MachineCount))
		}
	}
}

func (cv *CustomValidator) Validate(i any) error { return cv.v.Struct(i) }

// Map validator.ValidationErrors → []FieldError with readable messages.
func ToFieldErrors(err error) []FieldError {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return []FieldError{{Field: "_", Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(ve))
	for _, e := range ve {
		field := fieldName(e.Namespace())
		switch e.Tag() {
		case "required":
			out = append(out, FieldError{Field: field, Message: "is required"})
		case "temperature":
			out = append(out, FieldError{Field: field, Message: "must be a number between -9999.99 and 9999.99"})
		case "posint":
			out = append(out, FieldError{Field: field, Message: "must be a positive integer"})
		case "machine":
			out = append(out, FieldError{Field: field, Message: "must be a machine number from 1 to " + e.Param()})
		case "datetime":
			out = append(out, FieldError{Field: field, Message: "must be a date in YYYY-MM-DD format"})
		case "max":
			out = append(out, FieldError{Field: field, Message: "must be at most " + e.Param() + " characters"})
		default:
			out = append(out, FieldError{Field: field, Message: e.Tag() + " validation failed"})
		}
	}
	return out
}

// fieldName drops the root struct from a namespace:
// "checkRequest.readings[3].cable_temp" → "readings[3].cable_temp".
func fieldName(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
