// Package cerr contains the core errors which carry their intended
// HTTP status code, so the use cases may classify a failure without
// depending on the REST adapter which reports it.
package cerr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error attaches an HTTP status code to Err. The message of Err is
// shown to the client, so it must not leak internal details.
type Error struct {
	Err            error
	HTTPStatusCode int
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%d] %s", e.HTTPStatusCode, e.Err.Error())
}

// BadRequest wraps a validation failure of a request payload.
func BadRequest(err error) *Error {
	return &Error{Err: err, HTTPStatusCode: http.StatusBadRequest}
}

func NotFound(err error) *Error {
	return &Error{Err: err, HTTPStatusCode: http.StatusNotFound}
}

// Conflict reports a concurrent modification, e.g., a stale optimistic
// version counter. Caller may reload the resource and retry.
func Conflict(err error) *Error {
	return &Error{Err: err, HTTPStatusCode: http.StatusConflict}
}

// Unprocessable reports a well-formed request which refers to missing
// entities, such as an answer of an unknown question.
func Unprocessable(err error) *Error {
	return &Error{Err: err, HTTPStatusCode: http.StatusUnprocessableEntity}
}

// Classify finds the outermost *Error in the err chain and returns it.
// A nil result means that err is an internal failure.
func Classify(err error) *Error {
	var ce *Error
	if errors.As(err, &ce) {
		return ce
	}
	return nil
}
