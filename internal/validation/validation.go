// Package validation checks request and configuration structs against their
// validate tags.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dezmenn/Konfem-RSVP-sub001/internal/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON name.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	v.RegisterStructValidation(constraintsRange, models.Constraints{})
	return v
}

// constraintsRange rejects a minimum above the per-table maximum.
func constraintsRange(sl validator.StructLevel) {
	c := sl.Current().Interface().(models.Constraints)
	if c.MinGuestsPerTable > 0 && c.MaxGuestsPerTable > 0 && c.MinGuestsPerTable > c.MaxGuestsPerTable {
		sl.ReportError(c.MinGuestsPerTable, "minGuestsPerTable", "MinGuestsPerTable", "ltefield", "maxGuestsPerTable")
	}
}

// Struct validates s based on its validate tags.
func Struct(s any) error {
	if err := validate.Struct(s); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// formatValidationError formats validation errors into readable messages.
func formatValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		msgs := make([]string, 0, len(validationErrors))
		for _, e := range validationErrors {
			msgs = append(msgs, formatFieldError(e))
		}
		return errors.New(strings.Join(msgs, "; "))
	}
	return err
}

// formatFieldError formats a single field validation error.
func formatFieldError(e validator.FieldError) string {
	field := e.Field()

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "ltefield":
		return fmt.Sprintf("%s must not exceed %s", field, e.Param())
	case "dive":
		return fmt.Sprintf("%s contains invalid values", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
