package httputil

import (
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/pharmacare/pharmacare-backend/pkg/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// decimal.Decimal fields validate as their canonical string form
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})

	if err := v.RegisterValidation("money", isMoney); err != nil {
		panic(err)
	}
	return v
}

// isMoney accepts a non-negative decimal amount
func isMoney(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.String {
		return false
	}
	d, err := decimal.NewFromString(fl.Field().String())
	return err == nil && !d.IsNegative()
}

// Validate runs the struct's validate tags and maps failures to a
// VALIDATION_ERROR keyed by field name.
func Validate(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.BadRequest(err.Error())
	}

	details := make(map[string]string, len(fieldErrs))
	for _, e := range fieldErrs {
		details[e.Field()] = describe(e)
	}
	return errors.Validation(details)
}

var tagMessages = map[string]string{
	"required": "this field is required",
	"email":    "must be a valid email address",
	"uuid":     "must be a valid UUID",
	"money":    "must be a non-negative decimal",
	"dive":     "contains an invalid element",
}

var paramMessages = map[string]string{
	"min":     "must be at least ",
	"max":     "must be at most ",
	"gt":      "must be greater than ",
	"gte":     "must be greater than or equal to ",
	"oneof":   "must be one of: ",
	"nefield": "must differ from ",
}

func describe(e validator.FieldError) string {
	if msg, ok := tagMessages[e.Tag()]; ok {
		return msg
	}
	if prefix, ok := paramMessages[e.Tag()]; ok {
		return prefix + e.Param()
	}
	return "invalid value"
}
