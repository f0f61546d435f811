package errutil

import (
	"errors"
	"net/http"
)

type errType uint32

const (
	errTypeInternal errType = iota
	errTypeNotFound
	errTypeBadRequest
	errTypeValidation
	errTypeUnauthorized
)

type httpError struct {
	t   errType
	err error
}

func (e *httpError) Error() string {
	return e.err.Error()
}

func (e *httpError) Unwrap() error {
	return e.err
}

func NotFoundError(err error) error {
	return &httpError{t: errTypeNotFound, err: err}
}

func BadRequestError(err error) error {
	return &httpError{t: errTypeBadRequest, err: err}
}

func ValidationError(err error) error {
	return &httpError{t: errTypeValidation, err: err}
}

func UnauthorizedError(err error) error {
	return &httpError{t: errTypeUnauthorized, err: err}
}

func IsNotFoundError(err error) bool {
	var he *httpError
	return errors.As(err, &he) && he.t == errTypeNotFound
}

// ParseHttpError maps an error to an HTTP status code and message.
// A nil error maps to 200 with an empty message.
func ParseHttpError(err error) (int, string) {
	if err == nil {
		return http.StatusOK, ""
	}

	var he *httpError
	if !errors.As(err, &he) {
		return http.StatusInternalServerError, err.Error()
	}

	switch he.t {
	case errTypeNotFound:
		return http.StatusNotFound, he.Error()
	case errTypeBadRequest, errTypeValidation:
		return http.StatusBadRequest, he.Error()
	case errTypeUnauthorized:
		return http.StatusUnauthorized, he.Error()
	default:
		return http.StatusInternalServerError, he.Error()
	}
}
