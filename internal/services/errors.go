package services

import (
	"errors"
	"fmt"
)

// Failure kinds. Every error returned by a service operation wraps one of
// these, so callers can branch with errors.Is.
var (
	ErrUnauthenticated      = errors.New("unauthenticated")
	ErrForbidden            = errors.New("forbidden")
	ErrTaskNotFound         = errors.New("task not found")
	ErrProjectNotFound      = errors.New("project not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrInvalidField         = errors.New("invalid field")
	ErrInvalidRange         = errors.New("value out of range")
	ErrDateOutOfRange       = errors.New("date out of range")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrProgressConflict     = errors.New("project progress kept changing concurrently")
)

// ruleError is a failure kind with a message meant for the end user.
type ruleError struct {
	kind error
	msg  string
}

func (e *ruleError) Error() string { return e.msg }

func (e *ruleError) Unwrap() error { return e.kind }

func forbidden(msg string) error {
	return &ruleError{kind: ErrForbidden, msg: "Unauthorized: " + msg}
}

func invalidField(format string, args ...interface{}) error {
	return &ruleError{kind: ErrInvalidField, msg: fmt.Sprintf(format, args...)}
}

func invalidRange(format string, args ...interface{}) error {
	return &ruleError{kind: ErrInvalidRange, msg: fmt.Sprintf(format, args...)}
}

func dateOutOfRange(format string, args ...interface{}) error {
	return &ruleError{kind: ErrDateOutOfRange, msg: fmt.Sprintf(format, args...)}
}

func invalidTransition(format string, args ...interface{}) error {
	return &ruleError{kind: ErrInvalidTransition, msg: fmt.Sprintf(format, args...)}
}

// requirePrincipal rejects calls that reach a service without a resolved caller.
func requirePrincipal(actorID uint64) error {
	if actorID == 0 {
		return ErrUnauthenticated
	}
	return nil
}
