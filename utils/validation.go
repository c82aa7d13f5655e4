package utils

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateStruct runs validator tags on a request struct and returns a
// human-readable message for the first failing field.
func ValidateStruct(s interface{}) error {
	if err := validate.Struct(s); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			fe := errs[0]
			field := strings.ToLower(fe.Field())
			switch fe.Tag() {
			case "required":
				return fmt.Errorf("%s is required", field)
			case "oneof":
				return fmt.Errorf("%s must be one of: %s", field, fe.Param())
			case "email":
				return fmt.Errorf("%s must be a valid email address", field)
			case "min":
				return fmt.Errorf("%s must be at least %s characters", field, fe.Param())
			case "max":
				return fmt.Errorf("%s must be at most %s characters", field, fe.Param())
			default:
				return fmt.Errorf("%s is invalid", field)
			}
		}
		return err
	}
	return nil
}
