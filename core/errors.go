package core

import (
	"strings"

	"github.com/pkg/errors"
)

// FieldError names one invalid field of a request payload.
type FieldError struct {
	Field string
	Error string
}

// ValidationError carries the per-field errors rendered into 400 responses.
// Err is optional; when set it provides the top-level message for field-less
// failures such as bad credentials.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{Err: err, Fields: flds}
}

func (err ValidationError) Error() string {
	if err.Err != nil {
		return err.Err.Error()
	}
	parts := make([]string, 0, len(err.Fields))
	for _, f := range err.Fields {
		parts = append(parts, f.Field+": "+f.Error)
	}
	return strings.Join(parts, "; ")
}

// shutdown marks an error as unrecoverable. The handler chain returns it like
// any other error; the HTTP error handler then asks the server to stop
// gracefully instead of serving failures forever.
type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

// IsShutdown reports whether err (or its cause) requests a shutdown.
func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
