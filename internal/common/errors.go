package common

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound           = errors.New("requested resource not found")
	ErrUnauthorized       = errors.New("unauthorized access") // missing, invalid or expired credentials
	ErrForbidden          = errors.New("forbidden access")
	ErrBadRequest         = errors.New("bad request")
	ErrConflict           = errors.New("resource conflict") // e.g., email already registered
	ErrInternalServer     = errors.New("internal server error")
	ErrValidation         = errors.New("validation failed")
	ErrTooManyRequests    = errors.New("too many requests")
	ErrServiceUnavailable = errors.New("service unavailable") // e.g. database unreachable
)

// HTTPStatusFromError maps domain errors to HTTP status codes.
func HTTPStatusFromError(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrUnauthorized) {
		return http.StatusUnauthorized
	}
	if errors.Is(err, ErrForbidden) {
		return http.StatusForbidden
	}
	if errors.Is(err, ErrBadRequest) || errors.Is(err, ErrValidation) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrConflict) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrTooManyRequests) {
		return http.StatusTooManyRequests
	}
	if errors.Is(err, ErrServiceUnavailable) {
		return http.StatusServiceUnavailable
	}

	// A unique violation that slipped past the repository layer is still a conflict.
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" {
			return http.StatusConflict
		}
	}

	return http.StatusInternalServerError
}

// Errorf creates a new error with formatting, useful for wrapping.
func Errorf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

// Validationf wraps ErrValidation with a client-facing message.
func Validationf(format string, args ...interface{}) error {
	return &messageError{msg: fmt.Sprintf(format, args...), kind: ErrValidation}
}

// NotFoundf wraps ErrNotFound with a client-facing message.
func NotFoundf(format string, args ...interface{}) error {
	return &messageError{msg: fmt.Sprintf(format, args...), kind: ErrNotFound}
}

// Unauthorizedf wraps ErrUnauthorized with a client-facing message.
func Unauthorizedf(format string, args ...interface{}) error {
	return &messageError{msg: fmt.Sprintf(format, args...), kind: ErrUnauthorized}
}

// Forbiddenf wraps ErrForbidden with a client-facing message.
func Forbiddenf(format string, args ...interface{}) error {
	return &messageError{msg: fmt.Sprintf(format, args...), kind: ErrForbidden}
}

// Conflictf wraps ErrConflict with a client-facing message.
func Conflictf(format string, args ...interface{}) error {
	return &messageError{msg: fmt.Sprintf(format, args...), kind: ErrConflict}
}

// messageError carries a message meant for the client while still
// matching its sentinel through errors.Is.
type messageError struct {
	msg  string
	kind error
}

func (e *messageError) Error() string { return e.msg }

func (e *messageError) Unwrap() error { return e.kind }

// PublicMessage returns the message that is safe to show to clients.
// Messages created through Validationf and friends are returned as-is,
// sentinel errors return their own text and anything unknown collapses
// into a generic internal error message.
func PublicMessage(err error) string {
	var me *messageError
	if errors.As(err, &me) {
		return me.msg
	}
	for _, sentinel := range []error{
		ErrNotFound, ErrUnauthorized, ErrForbidden, ErrBadRequest, ErrConflict,
		ErrValidation, ErrTooManyRequests, ErrServiceUnavailable,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	if HTTPStatusFromError(err) == http.StatusConflict {
		return ErrConflict.Error()
	}
	return ErrInternalServer.Error()
}
