package domain

import "fmt"

// ErrorKind is the fixed taxonomy of domain error kinds. Components propagate
// errors by kind; a component that does not understand a kind must not try
// to recover it, only pass it up.
type ErrorKind string

const (
	ErrNotFound             ErrorKind = "not_found"
	ErrForbidden            ErrorKind = "forbidden"
	ErrInvalidInput         ErrorKind = "invalid_input"
	ErrInvalidStateTransition ErrorKind = "invalid_state_transition"
	ErrTransientStore       ErrorKind = "transient_store"
	ErrExternalUnavailable  ErrorKind = "external_unavailable"
	ErrTimeout              ErrorKind = "timeout"
	ErrCodecFailure         ErrorKind = "codec_failure"
	ErrCancelled            ErrorKind = "cancelled"
)

// DomainError is a typed error carrying a code, a human message and an
// optional wrapped cause. Code is a short machine-readable identifier (e.g.
// "SESSION_NOT_FOUND"); Kind drives cross-component recovery policy.
type DomainError struct {
	Code    string
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// NewDomainError builds a DomainError with an explicit kind.
func NewDomainError(code string, kind ErrorKind, message string, cause error) *DomainError {
	return &DomainError{Code: code, Kind: kind, Message: message, Cause: cause}
}

// KindOf extracts the ErrorKind of err if it is (or wraps) a *DomainError,
// returning ok=false otherwise.
func KindOf(err error) (ErrorKind, bool) {
	var de *DomainError
	if asDomainError(err, &de) {
		return de.Kind, true
	}
	return "", false
}

func asDomainError(err error, target **DomainError) bool {
	for err != nil {
		if de, ok := err.(*DomainError); ok {
			*target = de
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
