package validator

import (
	"reflect"

	"github.com/gin-gonic/gin/binding"
)

// GinValidator adapts Validator to gin's binding.StructValidator.
type GinValidator struct {
	v *Validator
}

var _ binding.StructValidator = (*GinValidator)(nil)

// NewGinValidator wraps v for gin.
func NewGinValidator(v *Validator) *GinValidator {
	return &GinValidator{v: v}
}

// ValidateStruct validates structs and pointers to structs. Anything else passes.
func (g *GinValidator) ValidateStruct(obj any) error {
	if obj == nil {
		return nil
	}
	val := reflect.ValueOf(obj)
	for val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return nil
		}
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return nil
	}
	return g.v.Validate(obj)
}

// Engine returns the underlying go-playground validator.
func (g *GinValidator) Engine() any {
	return g.v.Engine()
}

// Install makes v the validator behind gin's ShouldBind* calls.
func Install(v *Validator) {
	binding.Validator = NewGinValidator(v)
}
