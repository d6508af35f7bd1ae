// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package domain

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/linuxfoundation/lfx-v2-booking-client/internal/domain/models"
)

// EmailPattern is the address syntax accepted by the booking form.
var EmailPattern = regexp.MustCompile(`(?i)^[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON field names so messages match the wire format.
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	mustRegister(v, "booking_email", func(fl validator.FieldLevel) bool {
		return EmailPattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "clock", func(fl validator.FieldLevel) bool {
		_, _, err := models.ParseClock(fl.Field().String())
		return err == nil
	})

	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("failed to register %q validation: %v", tag, err))
	}
}

// ValidateEmail reports whether email matches EmailPattern.
func ValidateEmail(email string) bool {
	return EmailPattern.MatchString(email)
}

// ValidateDate checks a "YYYY-MM-DD" calendar date.
func ValidateDate(date string) error {
	if date == "" {
		return NewValidationError("date is required")
	}
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		return NewValidationError(fmt.Sprintf("date %q must be formatted as YYYY-MM-DD", date))
	}
	return nil
}

// ValidateBookingForm checks the booking form. Name and email are required and
// the email must match EmailPattern; notes are free text.
func ValidateBookingForm(f models.BookingFormInputs) error {
	return validateStruct(f)
}

// ValidateBookingRequest checks the booking request before it is sent.
func ValidateBookingRequest(r models.BookingRequest) error {
	return validateStruct(r)
}

// ValidateTimeSlot checks the slot's fields and that End is Duration minutes after Start.
func ValidateTimeSlot(s models.TimeSlot) error {
	if err := validateStruct(s); err != nil {
		return err
	}
	start, err := time.Parse(time.RFC3339, s.Start)
	if err != nil {
		return NewValidationError("start must be an RFC 3339 instant", err)
	}
	end, err := time.Parse(time.RFC3339, s.End)
	if err != nil {
		return NewValidationError("end must be an RFC 3339 instant", err)
	}
	if !end.Equal(start.Add(time.Duration(s.Duration) * time.Minute)) {
		return NewValidationError(fmt.Sprintf("slot end %s does not match start %s plus %d minutes", s.End, s.Start, s.Duration))
	}
	return nil
}

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return NewValidationError("validation failed", err)
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, fieldMessage(fe))
	}
	return NewValidationError(strings.Join(messages, "; "), err)
}

// fieldMessage renders a field error using the wire name of the field,
// e.g. "attendees[0].email: invalid email address".
func fieldMessage(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}

	switch fe.Tag() {
	case "required":
		return field + ": is required"
	case "booking_email":
		return field + ": invalid email address"
	case "clock":
		return field + ": must be formatted as HH:MM"
	case "datetime":
		return fmt.Sprintf("%s: must match layout %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s: must contain at least %s item(s)", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s: must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s: must be at least %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s: failed %s validation", field, fe.Tag())
	}
}
