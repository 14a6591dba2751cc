package validator

import (
	"errors"
	"strings"

	val "github.com/go-playground/validator/v10"
)

// Human-readable templates for the validation tags the request DTOs use.
// Tags without a template fall back to the library's own message.
var messages = map[string]string{
	"required": "{field} is required",
	"gte":      "{field} must be greater than or equal to {param}",
	"lte":      "{field} must be less than or equal to {param}",
	"oneof":    "{field} must be one of {param}",
	"max":      "{field} must be less than or equal to {param}",
	"min":      "{field} must be greater than or equal to {param}",
	"email":    "{field} must be a valid email address",
}

// message renders the first violation as a client-facing string.
func message(err error) string {
	var valErrors val.ValidationErrors

	if !errors.As(err, &valErrors) {
		return err.Error()
	}

	for _, valErr := range valErrors {
		template := messages[valErr.Tag()]
		if template == "" {
			continue
		}

		rendered := strings.ReplaceAll(template, "{field}", valErr.Field())

		return strings.ReplaceAll(rendered, "{param}", valErr.Param())
	}

	return valErrors.Error()
}
