package models

import "fmt"

type ErrorValidation struct {
	Field   string
	Message string
}

func (e ErrorValidation) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type ErrorForbidden struct {
	Message string
}

func (e ErrorForbidden) Error() string {
	return e.Message
}

// ErrorConflict is returned when a write would break a data invariant.
type ErrorConflict struct {
	Invariant string
	Message   string
}

func (e ErrorConflict) Error() string {
	return fmt.Sprintf("%s: %s", e.Invariant, e.Message)
}
