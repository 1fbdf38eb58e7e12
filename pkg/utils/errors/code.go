// Package errors provides the structured error codes of the embedding service.
//
// A code has seven digits, AABBCCC: AA is the service, BB the category and
// CCC a sequence number inside the category. The category decides the HTTP
// class of the error, so 01..06 are client errors and 07..12 server errors.
package errors

// Services.
const (
	ServiceCommon    = 0
	ServiceEmbedding = 30
)

// Categories.
const (
	CategoryRequest  = 1
	CategoryAuth     = 2
	CategoryResource = 4
	CategoryInternal = 7
	CategoryDatabase = 8
	CategoryTimeout  = 11

	lastClientCategory = 6
	lastServerCategory = 12
)

// MakeCode builds an AABBCCC code.
func MakeCode(service, category, sequence int) int {
	return (service*100+category)*1000 + sequence
}

// ParseCode splits an AABBCCC code.
func ParseCode(code int) (service, category, sequence int) {
	return code / 100000, code / 1000 % 100, code % 1000
}

// IsClientError reports whether code belongs to a 4xx category.
func IsClientError(code int) bool {
	_, c, _ := ParseCode(code)
	return c >= CategoryRequest && c <= lastClientCategory
}

// IsServerError reports whether code belongs to a 5xx category.
func IsServerError(code int) bool {
	_, c, _ := ParseCode(code)
	return c >= CategoryInternal && c <= lastServerCategory
}
