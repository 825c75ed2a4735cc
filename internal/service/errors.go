// Package service contains the business logic layer.
package service

import (
	"fmt"
	"net/http"
)

// AppError is the error type returned by services. Handlers map HTTPCode to
// the response status; Err carries the underlying cause for logging.
type AppError struct {
	HTTPCode int
	Message  string
	Data     interface{}
	Err      error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newAppError(httpCode int, message string, err error) *AppError {
	return &AppError{HTTPCode: httpCode, Message: message, Err: err}
}

func errValidacion(message string) *AppError {
	return newAppError(http.StatusBadRequest, message, nil)
}

func errNoEncontrado(message string) *AppError {
	return newAppError(http.StatusNotFound, message, nil)
}

func errConflicto(message string, err error) *AppError {
	return newAppError(http.StatusConflict, message, err)
}

func errInterno(message string, err error) *AppError {
	return newAppError(http.StatusInternalServerError, message, err)
}
