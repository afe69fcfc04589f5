package service

import "net/http"

// ErrorKind classifies a flow failure. The HTTP layer maps kinds to status
// codes uniformly: resource-absent (including expired tokens) is 404,
// malformed input is 400, credential failures are 401.
type ErrorKind int

const (
	KindValidation ErrorKind = iota
	KindNotFound
	KindConflict
	KindInvalidCredentials
	KindExpired
	KindDependency
)

// Error is a typed flow failure. All failures cross the service boundary as
// values; no panic escapes a flow.
type Error struct {
	Kind    ErrorKind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Status returns the HTTP status code for this failure
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound, KindExpired:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindInvalidCredentials:
		return http.StatusUnauthorized
	case KindDependency:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func failValidation(message string) error {
	return &Error{Kind: KindValidation, Message: message}
}

func failNotFound(message string) error {
	return &Error{Kind: KindNotFound, Message: message}
}

func failConflict(message string) error {
	return &Error{Kind: KindConflict, Message: message}
}

// failInvalidCredentials deliberately uses one generic message for unknown
// identity and wrong password so login failures are indistinguishable.
func failInvalidCredentials() error {
	return &Error{Kind: KindInvalidCredentials, Message: "invalid credentials"}
}

func failUnauthorized(message string) error {
	return &Error{Kind: KindInvalidCredentials, Message: message}
}

func failExpired(message string) error {
	return &Error{Kind: KindExpired, Message: message}
}

func failDependency(message string, cause error) error {
	return &Error{Kind: KindDependency, Message: message, cause: cause}
}
