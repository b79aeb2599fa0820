package service

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidListName    = errors.New("invalid list name")
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")
	ErrUserNotFound       = errors.New("user not found")
	ErrNotFound           = errors.New("not found")
	ErrUpstream           = errors.New("upstream service failed")
	ErrNotImplemented     = errors.New("not implemented")
)

// publicError pairs a sentinel with the message a client is allowed to see.
type publicError struct {
	kind error
	msg  string
}

func (e *publicError) Error() string { return e.msg }
func (e *publicError) Unwrap() error { return e.kind }

func newPublicError(kind error, format string, args ...any) error {
	return &publicError{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// PublicMessage returns the client-facing message carried by err, if any.
func PublicMessage(err error) (string, bool) {
	var pe *publicError
	if errors.As(err, &pe) {
		return pe.msg, true
	}
	return "", false
}

func invalidListName(list string) error {
	return newPublicError(ErrInvalidListName, "Invalid list name '%s'", list)
}
