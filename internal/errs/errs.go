package errs

import (
	"errors"
	"strings"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrStore        = errors.New("store write failed")
	ErrNotification = errors.New("notification failed")
)

// ValidationError описывает отклонённую заявку: отсутствующие поля или неразборчивую дату.
type ValidationError struct {
	Fields  []string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// MissingFields возвращает ValidationError для перечисленных полей.
func MissingFields(fields ...string) *ValidationError {
	return &ValidationError{Fields: fields}
}

func Invalid(field, msg string) *ValidationError {
	return &ValidationError{Fields: []string{field}, Message: msg}
}
