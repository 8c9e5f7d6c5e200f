package dto

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Check runs struct validation and returns field-level details suitable for
// a VALIDATION_FAILED response, or nil when the payload is valid.
func Check(payload any) map[string]any {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}

	details := map[string]any{}
	var fieldErrs validator.ValidationErrors
	if ok := errorsAs(err, &fieldErrs); ok {
		for _, fe := range fieldErrs {
			details[strings.ToLower(fe.Field())] = fe.Tag()
		}
	} else {
		details["payload"] = "invalid"
	}
	return details
}

func errorsAs(err error, target *validator.ValidationErrors) bool {
	fe, ok := err.(validator.ValidationErrors)
	if ok {
		*target = fe
	}
	return ok
}
