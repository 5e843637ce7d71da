package validators

import (
	"errors"
	"fmt"
	"strings"

	"coffeeRelay/internal/errs"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateStruct checks validate tags and reports every failing field in one
// error wrapping errs.ErrInvalidPayload.
func ValidateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("%w: %v", errs.ErrInvalidPayload, err)
	}
	fields := make([]string, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		fields = append(fields, fmt.Sprintf("%s failed on %s", fieldErr.Field(), fieldErr.Tag()))
	}
	return fmt.Errorf("%w: %s", errs.ErrInvalidPayload, strings.Join(fields, ", "))
}

// ValidateRoom accepts any non-blank room name.
func ValidateRoom(room string) error {
	if strings.TrimSpace(room) == "" {
		return fmt.Errorf("%w: room name is empty", errs.ErrInvalidPayload)
	}
	return nil
}
