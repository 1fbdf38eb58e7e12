// Package validator validates request structs with go-playground/validator.
// Field names in messages come from json tags, messages are translated to
// English or Chinese, and the same engine backs gin's binding layer.
package validator

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
)

// Supported message languages.
const (
	LangEN = "en"
	LangZH = "zh"
)

// Validator is safe for concurrent use once created.
type Validator struct {
	validate *validator.Validate
	trans    map[string]ut.Translator
}

var global = sync.OnceValue(New)

// Global returns the process-wide validator.
func Global() *Validator {
	return global()
}

// New creates a validator with the embedding API rules registered.
func New() *Validator {
	v := &Validator{validate: validator.New(), trans: map[string]ut.Translator{}}
	v.validate.RegisterTagNameFunc(jsonFieldName)

	uni := ut.New(en.New(), en.New(), zh.New())
	registrars := map[string]func(*validator.Validate, ut.Translator) error{
		LangEN: en_translations.RegisterDefaultTranslations,
		LangZH: zh_translations.RegisterDefaultTranslations,
	}
	for lang, register := range registrars {
		t, _ := uni.GetTranslator(lang)
		_ = register(v.validate, t)
		v.trans[lang] = t
	}

	v.registerCustomRules()
	v.registerCustomTranslations()
	return v
}

func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return f.Name
	}
	return name
}

// Validate returns the raw validator error of s.
func (v *Validator) Validate(s interface{}) error {
	return v.validate.Struct(s)
}

// ValidateWithLang validates s and returns translated errors, nil when valid.
func (v *Validator) ValidateWithLang(s interface{}, lang string) *ValidationErrors {
	return v.Translate(v.validate.Struct(s), lang)
}

// Translate converts err into ValidationErrors in lang. A nil err yields nil.
func (v *Validator) Translate(err error, lang string) *ValidationErrors {
	if err == nil {
		return nil
	}
	fes, ok := err.(validator.ValidationErrors)
	if !ok {
		return NewValidationError("", "invalid", err.Error())
	}

	t := v.GetTranslator(lang)
	out := &ValidationErrors{Errors: make([]FieldError, len(fes))}
	for i, fe := range fes {
		out.Errors[i] = FieldError{Field: fe.Field(), Tag: fe.Tag(), Param: fe.Param(), Message: fe.Translate(t)}
	}
	return out
}

// GetTranslator returns the translator of lang, English when unknown.
func (v *Validator) GetTranslator(lang string) ut.Translator {
	if t, ok := v.trans[lang]; ok {
		return t
	}
	return v.trans[LangEN]
}

// Engine exposes the go-playground engine.
func (v *Validator) Engine() *validator.Validate {
	return v.validate
}
