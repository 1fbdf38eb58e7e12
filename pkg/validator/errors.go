package validator

import "strings"

// FieldError is one failed rule.
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message"`
}

// ValidationErrors is the error returned for an invalid request body.
type ValidationErrors struct {
	Errors []FieldError `json:"errors"`
}

// NewValidationError creates ValidationErrors holding a single failure.
func NewValidationError(field, tag, message string) *ValidationErrors {
	return &ValidationErrors{Errors: []FieldError{{Field: field, Tag: tag, Message: message}}}
}

// Error joins the messages with "; ".
func (v *ValidationErrors) Error() string {
	return strings.Join(v.Messages(), "; ")
}

// First returns the first message or "".
func (v *ValidationErrors) First() string {
	if msgs := v.Messages(); len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// Messages lists the messages in field order.
func (v *ValidationErrors) Messages() []string {
	if v == nil {
		return nil
	}
	var msgs []string
	for _, fe := range v.Errors {
		msgs = append(msgs, fe.Message)
	}
	return msgs
}
