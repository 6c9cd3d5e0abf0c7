package api

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate checks payload structs with go-playground/validator tags
// before they go on the wire.
var validate = validator.New()

// checkPayload validates a request payload and converts the first
// failure into a readable error.
func checkPayload(payload interface{}) error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}

	if validationErrors, ok := err.(validator.ValidationErrors); ok &&
		len(validationErrors) > 0 {
		fe := validationErrors[0]
		return fmt.Errorf(
			"invalid payload: field %s failed on '%s' validation",
			fe.Field(), fe.Tag(),
		)
	}
	return fmt.Errorf("invalid payload: %w", err)
}
