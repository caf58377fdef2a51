package service

import (
	"errors"
	"fmt"
)

// ErrNoSelection is returned when a bulk delete names no records.
var ErrNoSelection = errors.New("no rows selected")

// ValidationError reports a rejected form field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("missing field: %s", e.Field)
	}
	return fmt.Sprintf("invalid field %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
