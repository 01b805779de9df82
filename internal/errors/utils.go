package errors

import (
	"errors"
)

// Wrap wraps an error with additional context, creating a WikiError if the
// input is not already one.
func Wrap(err error, errType ErrorType, code, message string) *WikiError {
	if err == nil {
		return nil
	}

	var we *WikiError
	if errors.As(err, &we) {
		return &WikiError{
			Type:        errType,
			Code:        code,
			Message:     message,
			Cause:       we,
			Context:     we.Context,
			Line:        we.Line,
			Column:      we.Column,
			Recoverable: we.Recoverable,
		}
	}

	return &WikiError{
		Type:        errType,
		Code:        code,
		Message:     message,
		Cause:       err,
		Recoverable: errType == ErrorTypeQuery || errType == ErrorTypeTransformation,
	}
}

// WrapIO wraps an error as an I/O error.
func WrapIO(err error, code, message string) *WikiError {
	we := Wrap(err, ErrorTypeIO, code, message)
	if we != nil {
		we.Recoverable = false
	}
	return we
}

// Is is errors.Is, re-exported so callers importing this package don't need
// to alias the standard library.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As is errors.As, re-exported for the same reason as Is.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// New is errors.New.
func New(text string) error {
	return errors.New(text)
}

// Join is errors.Join.
func Join(errs ...error) error {
	return errors.Join(errs...)
}
