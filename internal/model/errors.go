package model

import "errors"

// Common errors used across the application
var (
	// Identity and access errors
	ErrUnauthenticated = errors.New("authentication required")
	ErrInvalidToken    = errors.New("invalid token")
	ErrForbidden       = errors.New("not allowed to modify this character")
	ErrIllegalState    = errors.New("illegal state")

	// Lookup errors
	ErrUserNotFound      = errors.New("user not found")
	ErrCharacterNotFound = errors.New("character not found")

	// Value object errors
	ErrInvalidValue = errors.New("invalid value")
)

// ErrorKind is the closed set of failure categories surfaced to callers
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindUnauthenticated
	KindInvalidToken
	KindNotFound
	KindForbidden
	KindIllegalState
	KindInvalidValue
	KindInternal
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindInvalidToken:
		return "invalid_token"
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindIllegalState:
		return "illegal_state"
	case KindInvalidValue:
		return "invalid_value"
	default:
		return "internal"
	}
}

// KindOf classifies an error. Unrecognised errors are KindInternal.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrUnauthenticated):
		return KindUnauthenticated
	case errors.Is(err, ErrInvalidToken):
		return KindInvalidToken
	case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrCharacterNotFound):
		return KindNotFound
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	case errors.Is(err, ErrIllegalState):
		return KindIllegalState
	case errors.Is(err, ErrInvalidValue):
		return KindInvalidValue
	default:
		return KindInternal
	}
}
