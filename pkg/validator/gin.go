package validator

import (
	"reflect"

	"github.com/gin-gonic/gin/binding"
)

var _ binding.StructValidator = (*GinValidator)(nil)

// GinValidator adapts Validator to gin's binding.StructValidator.
type GinValidator struct {
	v *Validator
}

// InstallGin makes gin's binding validate with the process-wide validator.
func InstallGin() {
	binding.Validator = NewGinValidator(Global())
}

// NewGinValidator creates a gin binding validator backed by v.
func NewGinValidator(v *Validator) *GinValidator {
	return &GinValidator{v: v}
}

// ValidateStruct validates structs and pointers to structs; other kinds pass.
func (g *GinValidator) ValidateStruct(obj interface{}) error {
	if obj == nil {
		return nil
	}
	t := reflect.TypeOf(obj)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}
	if err := g.v.Validate(obj); err != nil {
		return g.v.Translate(err, LangEN)
	}
	return nil
}

// Engine returns the underlying validator engine.
func (g *GinValidator) Engine() interface{} {
	return g.v.Engine()
}
