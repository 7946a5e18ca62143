// Package validate wraps go-playground/validator with field names taken
// from json tags and messages fit for showing next to a form field.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	validate *validator.Validate
)

// FieldError is a single field validation failure.
type FieldError struct {
	Field string
	Tag   string
	Param string
}

// Message renders the failure for display, e.g. "Title is required".
func (e FieldError) Message() string {
	label := strings.ToUpper(e.Field[:1]) + e.Field[1:]
	switch e.Tag {
	case "required":
		return label + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", label, e.Param)
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", label, e.Param)
	default:
		return label + " is invalid"
	}
}

// Errors collects the failures of one struct.
type Errors []FieldError

func (v Errors) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}

	parts := make([]string, len(v))
	for i, err := range v {
		parts[i] = err.Message()
	}
	return strings.Join(parts, "; ")
}

// Field returns the message for the named field, or "" if it passed.
func (v Errors) Field(name string) string {
	for _, err := range v {
		if err.Field == name {
			return err.Message()
		}
	}
	return ""
}

// Struct validates s against its validate tags. A failure is returned as
// Errors.
func Struct(s any) error {
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		failures := make(Errors, 0, len(ve))
		for _, fe := range ve {
			failures = append(failures, FieldError{
				Field: fe.Field(),
				Tag:   fe.Tag(),
				Param: fe.Param(),
			})
		}
		return failures
	}

	return err
}

// FieldErrors returns the Errors inside err, or nil.
func FieldErrors(err error) Errors {
	var v Errors
	if errors.As(err, &v) {
		return v
	}
	return nil
}

func getValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := fld.Tag.Get("json")
			if comma := strings.Index(name, ","); comma != -1 {
				name = name[:comma]
			}
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}
