package validator

import (
	"errors"
	"fmt"

	"go-ombor/internal/model"

	"github.com/go-playground/validator/v10"
)

type ErrorResponse struct {
	FailedField string
	Tag         string
	Value       string
}

var validate = validator.New()

func init() {
	validate.RegisterValidation("unit", func(fl validator.FieldLevel) bool {
		return model.Unit(fl.Field().String()).Valid()
	})
	validate.RegisterValidation("permission", func(fl validator.FieldLevel) bool {
		return model.Permission(fl.Field().String()).Valid()
	})
}

func ValidateStruct(data interface{}) []*ErrorResponse {
	var errors []*ErrorResponse
	err := validate.Struct(data)
	if err != nil {
		for _, err := range err.(validator.ValidationErrors) {
			var element ErrorResponse
			element.FailedField = err.StructNamespace()
			element.Tag = err.Tag()
			element.Value = err.Param()
			errors = append(errors, &element)
		}
	}
	return errors
}

// ErrValidation wraps every error returned by Check so callers can map it to a 400.
var ErrValidation = errors.New("validation failed")

// Check validates data and reports the first failing field, or nil.
func Check(data interface{}) error {
	errs := ValidateStruct(data)
	if len(errs) == 0 {
		return nil
	}
	first := errs[0]
	return fmt.Errorf("%w: field '%s' failed on tag '%s'", ErrValidation, first.FailedField, first.Tag)
}
