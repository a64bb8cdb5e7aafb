package validator

import (
	"strings"
)

// FieldError is one failed rule with its message in the requested language.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message"`
}

// FieldErrors lists every failed rule of one struct.
type FieldErrors []FieldError

func (fe FieldErrors) Error() string {
	return strings.Join(fe.Messages(), "; ")
}

// Messages returns the translated messages in field order.
func (fe FieldErrors) Messages() []string {
	out := make([]string, len(fe))
	for i := range fe {
		out[i] = fe[i].Message
	}
	return out
}

// Field returns the first error on field.
func (fe FieldErrors) Field(field string) (FieldError, bool) {
	for _, e := range fe {
		if e.Field == field {
			return e, true
		}
	}
	return FieldError{}, false
}
