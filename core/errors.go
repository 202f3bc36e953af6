package core

import "github.com/pkg/errors"

// ErrUnexpected is the message shown for any failure the user cannot act upon.
var ErrUnexpected = errors.New("Beklenmedik bir hata oluştu.")

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

// ValidationError is returned by services when input is rejected after struct validation,
// e.g. a uniqueness check. Fields is optional.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		if len(err.Fields) > 0 {
			return err.Fields[0].Field + ": " + err.Fields[0].Error
		}
		return ""
	}
	return err.Err.Error()
}

// WriteError is returned when a store write fails. Msg is the user-facing notification,
// the underlying cause is kept for logs.
type WriteError struct {
	Msg string
	Err error
}

func NewWriteError(msg string, err error) error {
	return &WriteError{Msg: msg, Err: err}
}

func (err WriteError) Error() string {
	if err.Err == nil {
		return err.Msg
	}
	return err.Msg + ": " + err.Err.Error()
}

func (err WriteError) Unwrap() error { return err.Err }

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
