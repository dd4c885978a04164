package form

import (
	"AI-Content-Creator-Backend/internal/client"
	"errors"
	"fmt"
)

var (
	ErrEmptyCustomField     = errors.New("custom field label and value are required")
	ErrFieldIndexOutOfRange = errors.New("custom field index out of range")
	ErrSubmissionInProgress = errors.New("a submission is already in progress")
	ErrInvalidIdentifier    = errors.New("invalid telegram identifier")
	ErrTransport            = client.ErrTransport
)

// InvalidIdentifierError reports an identifier input that is not a base-10 integer.
type InvalidIdentifierError struct {
	Field string
	Input string
	Err   error
}

func (e *InvalidIdentifierError) Error() string {
	return fmt.Sprintf("%s: %q is not an integer", e.Field, e.Input)
}

func (e *InvalidIdentifierError) Is(target error) bool {
	return target == ErrInvalidIdentifier
}

func (e *InvalidIdentifierError) Unwrap() error {
	return e.Err
}

// ResponseError is a response that was neither success nor an invoice prompt.
type ResponseError struct {
	StatusCode int
	Detail     string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("content api returned HTTP %d: %s", e.StatusCode, e.Detail)
}
