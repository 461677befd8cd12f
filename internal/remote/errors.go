package remote

import (
	"errors"
	"fmt"
)

// ErrorKind is the top-level failure class of a remote call.
type ErrorKind int

const (
	ErrUnknown ErrorKind = iota
	ErrRelocation
	ErrPathLookup
	ErrPathWrite
	ErrService
)

// String returns the string representation of the kind
func (k ErrorKind) String() string {
	switch k {
	case ErrRelocation:
		return "relocation"
	case ErrPathLookup:
		return "path_lookup"
	case ErrPathWrite:
		return "path_write"
	case ErrService:
		return "service"
	default:
		return "unknown"
	}
}

// LookupReason refines ErrPathLookup.
type LookupReason int

const (
	LookupOther LookupReason = iota
	LookupMalformed
	LookupNotFolder
	LookupNotFound
)

// WriteReason refines ErrPathWrite.
type WriteReason int

const (
	WriteOther WriteReason = iota
	WriteConflict
	WriteDisallowedName
	WriteInsufficientSpace
	WriteMalformedPath
	WriteNoPermission
)

// Error is the tagged failure every Service returns.
type Error struct {
	Kind    ErrorKind
	Lookup  LookupReason
	Write   WriteReason
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewLookupError builds a path lookup failure.
func NewLookupError(reason LookupReason, message string) *Error {
	return &Error{Kind: ErrPathLookup, Lookup: reason, Message: message}
}

// NewWriteError builds a path write failure.
func NewWriteError(reason WriteReason, message string) *Error {
	return &Error{Kind: ErrPathWrite, Write: reason, Message: message}
}

// NewRelocationError builds a copy/move failure.
func NewRelocationError(detail string) *Error {
	return &Error{Kind: ErrRelocation, Message: detail}
}

// NewServiceError builds a generic provider failure.
func NewServiceError(message string, err error) *Error {
	return &Error{Kind: ErrService, Message: message, Err: err}
}

// AsError returns err as a tagged *Error. Errors that did not originate from a
// Service are classified as ErrUnknown. A nil err returns nil.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr
	}
	return &Error{Kind: ErrUnknown, Message: err.Error(), Err: err}
}

// IsNotFound reports whether err is a lookup failure for a missing path.
func IsNotFound(err error) bool {
	rerr := AsError(err)
	return rerr != nil && rerr.Kind == ErrPathLookup && rerr.Lookup == LookupNotFound
}

// Errorf builds an unknown-kind error with a formatted message.
func Errorf(format string, args ...interface{}) *Error {
	return &Error{Kind: ErrUnknown, Message: fmt.Sprintf(format, args...)}
}
