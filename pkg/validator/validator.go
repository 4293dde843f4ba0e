// Package validator wraps go-playground struct validation for request
// inputs. Decimal amounts are resolved to floats so the numeric tags (gte,
// gt) apply to prices and totals, and uuid_required rejects the zero UUID
// that a plain required tag would let through.
package validator

import (
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FieldError reports one failed field: the struct path, the violated tag and
// its parameter.
type FieldError struct {
	Field string
	Tag   string
	Param string
}

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New()

	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	v.RegisterValidation("uuid_required", func(fl validator.FieldLevel) bool {
		id, ok := fl.Field().Interface().(uuid.UUID)
		return ok && id != uuid.Nil
	})

	return v
}

// ValidateStruct validates data and returns every failed field, or nil.
func ValidateStruct(data interface{}) []FieldError {
	err := validate.Struct(data)
	if err == nil {
		return nil
	}
	var out []FieldError
	for _, fe := range err.(validator.ValidationErrors) {
		out = append(out, FieldError{
			Field: fe.StructNamespace(),
			Tag:   fe.Tag(),
			Param: fe.Param(),
		})
	}
	return out
}
