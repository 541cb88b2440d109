package validator

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidationFailed matches every ValidationErrors via errors.Is.
	ErrValidationFailed   = errors.New("validation failed")
	ErrTranslatorNotFound = errors.New("translator not found")
)

// ValidationError is a single failed rule.
type ValidationError struct {
	Field   string
	Tag     string
	Message string
}

// ValidationErrors is the error returned by Validate.
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return ErrValidationFailed.Error()
	}

	parts := make([]string, 0, len(ve))
	for _, err := range ve {
		parts = append(parts, fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return ErrValidationFailed.Error() + ": " + strings.Join(parts, "; ")
}

func (ve ValidationErrors) Is(target error) bool {
	return target == ErrValidationFailed
}

func (ve ValidationErrors) Has(field string) bool {
	for _, err := range ve {
		if err.Field == field {
			return true
		}
	}
	return false
}

// Get returns the messages recorded for field.
func (ve ValidationErrors) Get(field string) []string {
	var messages []string
	for _, err := range ve {
		if err.Field == field {
			messages = append(messages, err.Message)
		}
	}
	return messages
}

// Fields returns field to first message, for JSON responses.
func (ve ValidationErrors) Fields() map[string]string {
	m := make(map[string]string, len(ve))
	for _, err := range ve {
		if _, ok := m[err.Field]; !ok {
			m[err.Field] = err.Message
		}
	}
	return m
}
