// Package validation checks a student record's field rules before it is
// persisted.
//
// The rules live as validate:"..." tags on types.Student and are run by
// go-playground/validator. Only the first failing field is reported, and
// fields are checked in declaration order, so the message a caller sees is
// deterministic.
package validation

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/FrederickAmakye/SMSPlus/internal/apperr"
	"github.com/FrederickAmakye/SMSPlus/internal/types"
)

// Messages returned for each rule, in check order.
const (
	MsgNilStudent   = "Student cannot be nil"
	MsgIDRequired   = "Student ID is required"
	MsgNameRequired = "Full name is required"
	MsgProgramme    = "Programme is required"
	MsgInvalidLevel = "Invalid level"
	MsgScoreRange   = "GPA must be between 0.0 and 4.0"
	MsgInvalidEmail = "Invalid email format"
)

// fieldMessages maps a struct field name to the message for its rule.
var fieldMessages = map[string]string{
	"ID":        MsgIDRequired,
	"Name":      MsgNameRequired,
	"Programme": MsgProgramme,
	"Level":     MsgInvalidLevel,
	"Score":     MsgScoreRange,
	"Email":     MsgInvalidEmail,
}

// validate is safe for concurrent use and caches struct metadata, so one
// instance serves the whole process.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// nonblank: the string is not empty after trimming whitespace.
	_ = v.RegisterValidation("nonblank", func(fl validator.FieldLevel) bool {
		return !isBlank(fl.Field().String())
	})

	// looseemail: blank is allowed; otherwise the value must contain "@" and ".".
	_ = v.RegisterValidation("looseemail", func(fl validator.FieldLevel) bool {
		email := fl.Field().String()
		if isBlank(email) {
			return true
		}
		return strings.Contains(email, "@") && strings.Contains(email, ".")
	})

	return v
}

// Student validates s and returns a Validation error naming the first
// violated rule, or nil.
func Student(s *types.Student) error {
	if s == nil {
		return apperr.Invalid(MsgNilStudent)
	}

	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperr.Wrap(apperr.Validation, "", "invalid student", err)
	}

	first := fieldErrs[0]
	if msg, ok := fieldMessages[first.StructField()]; ok {
		return apperr.Invalid(msg)
	}
	return apperr.Invalid("Invalid " + strings.ToLower(first.Field()))
}

// Query rejects a blank search query.
func Query(q string) error {
	if isBlank(q) {
		return apperr.Invalid("Search query cannot be empty")
	}
	return nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
