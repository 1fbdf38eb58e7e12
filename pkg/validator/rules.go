package validator

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Custom validation tags
const (
	TagDistance   = "distance"   // Vector distance metric (COSINE, EUCLID, DOT)
	TagCollection = "collection" // Collection name (letters, digits, '_' and '-', 1-255 chars)
	TagLanguage   = "language"   // Normalizer language
)

var (
	collectionRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,254}$`)

	distances = map[string]bool{
		"COSINE":    true,
		"EUCLID":    true,
		"EUCLIDEAN": true,
		"L2":        true,
		"DOT":       true,
		"IP":        true,
	}

	languages = map[string]bool{
		"english":    true,
		"spanish":    true,
		"french":     true,
		"russian":    true,
		"swedish":    true,
		"norwegian":  true,
		"hungarian":  true,
		"indonesian": true,
	}
)

// registerCustomRules registers all custom validation rules.
func (v *Validator) registerCustomRules() {
	_ = v.validate.RegisterValidation(TagDistance, validateDistance)
	_ = v.validate.RegisterValidation(TagCollection, validateCollection)
	_ = v.validate.RegisterValidation(TagLanguage, validateLanguage)
}

// validateDistance validates distance metric names, case-insensitively.
func validateDistance(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // Let 'required' handle empty values
	}
	return distances[strings.ToUpper(value)]
}

// validateCollection validates collection names.
func validateCollection(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return collectionRegex.MatchString(value)
}

// validateLanguage validates normalizer languages.
func validateLanguage(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return languages[strings.ToLower(value)]
}
