package marketplace

import (
	"errors"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("jobtype", func(fl validator.FieldLevel) bool {
		return JobType(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("status", func(fl validator.FieldLevel) bool {
		return Status(fl.Field().String()).Valid()
	})
	return v
}

// validateStruct runs tag validation and reports the first failure as ErrValidation.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return &ErrValidation{Field: "input", Message: err.Error()}
	}
	fe := validationErrors[0]
	return &ErrValidation{Field: lowerFirst(fe.Field()), Message: tagMessage(fe)}
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "jobtype":
		return "must be one of " + joinJobTypes()
	case "status":
		return "must be one of " + joinStatuses()
	case "url":
		return "must be a valid URL"
	case "max":
		return "is too long"
	default:
		return "failed " + fe.Tag() + " check"
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

// trimFields trims surrounding whitespace from each string pointer.
func trimFields(fields ...*string) {
	for _, f := range fields {
		*f = strings.TrimSpace(*f)
	}
}
