package errors

import (
	stdErrors "errors"
	"fmt"
)

type Code string

const (
	CodeValidation    Code = "VALIDATION_ERROR"
	CodeNotFound      Code = "NOT_FOUND"
	CodeStateConflict Code = "STATE_CONFLICT"
	CodeEmptyOrder    Code = "EMPTY_ORDER"
	CodePersistence   Code = "PERSISTENCE_WARNING"
	CodeInternal      Code = "INTERNAL_ERROR"
)

// Metadata describes how the shell should present a code to the operator.
// Warning marks outcomes where the in-memory mutation already succeeded and
// only durability is at risk.
type Metadata struct {
	Warning        bool
	PublicMessage  string
	DetailsAllowed bool
}

var metadataByCode = map[Code]Metadata{
	CodeValidation: {
		Warning:        false,
		PublicMessage:  "validation failed",
		DetailsAllowed: true,
	},
	CodeNotFound: {
		Warning:        false,
		PublicMessage:  "not found",
		DetailsAllowed: true,
	},
	CodeStateConflict: {
		Warning:        false,
		PublicMessage:  "operation not allowed in current state",
		DetailsAllowed: true,
	},
	CodeEmptyOrder: {
		Warning:        false,
		PublicMessage:  "order has no items",
		DetailsAllowed: false,
	},
	CodePersistence: {
		Warning:        true,
		PublicMessage:  "changes applied but could not be saved",
		DetailsAllowed: true,
	},
	CodeInternal: {
		Warning:        false,
		PublicMessage:  "internal error",
		DetailsAllowed: false,
	},
}

func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// IsWarning reports whether err carries a warning-class code, meaning the
// operation's state change stands and only a side effect failed.
func IsWarning(err error) bool {
	typed := As(err)
	if typed == nil {
		return false
	}
	return MetadataFor(typed.Code()).Warning
}
