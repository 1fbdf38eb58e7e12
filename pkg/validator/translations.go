package validator

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
)

// registerCustomTranslations registers translations for custom validation rules.
func (v *Validator) registerCustomTranslations() {
	if enTrans := v.GetTranslator(LangEN); enTrans != nil {
		registerTranslations(v.validate, enTrans, map[string]string{
			TagDistance:   "{0} must be one of COSINE, EUCLID or DOT",
			TagCollection: "{0} must contain only letters, numbers, '_' and '-' (1-255 characters)",
			TagLanguage:   "{0} is not a supported language",
		})
	}

	if zhTrans := v.GetTranslator(LangZH); zhTrans != nil {
		registerTranslations(v.validate, zhTrans, map[string]string{
			TagDistance:   "{0}必须是 COSINE、EUCLID 或 DOT",
			TagCollection: "{0}只能包含字母、数字、'_' 和 '-'（1-255个字符）",
			TagLanguage:   "{0}不是支持的语言",
		})
	}
}

func registerTranslations(validate *validator.Validate, trans ut.Translator, translations map[string]string) {
	for tag, message := range translations {
		tag, message := tag, message
		_ = validate.RegisterTranslation(tag, trans,
			func(ut ut.Translator) error {
				return ut.Add(tag, message, true)
			},
			func(ut ut.Translator, fe validator.FieldError) string {
				t, _ := ut.T(tag, fe.Field())
				return t
			},
		)
	}
}
