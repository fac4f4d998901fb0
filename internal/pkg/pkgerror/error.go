package pkgerror

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound is returned by stores when no record has the requested id.
var ErrNotFound = errors.New("resource not found")

// Type says who is at fault: the caller (validation), a domain rule
// (business) or this service and its dependencies (server).
type Type int

const (
	TypeServer Type = iota
	TypeBusiness
	TypeValidation
)

func (t Type) String() string {
	switch t {
	case TypeServer:
		return "SERVER"
	case TypeBusiness:
		return "BUSINESS"
	case TypeValidation:
		return "VALIDATION"
	default:
		return "UNKNOWN"
	}
}

// Code is the stable, client-visible error identifier.
type Code int

const (
	CodeInternal Code = iota
	CodeInvalidFormat
	CodeInvalidInput
	CodeNotFound
	CodeConflict
	// CodeStorage means the record was not persisted; retrying is safe.
	CodeStorage
)

type codeInfo struct {
	name   string
	status int
}

//nolint:gochecknoglobals // lookup table
var codes = map[Code]codeInfo{
	CodeInternal:      {"INTERNAL", http.StatusInternalServerError},
	CodeInvalidFormat: {"INVALID_FORMAT", http.StatusBadRequest},
	CodeInvalidInput:  {"INVALID_INPUT", http.StatusUnprocessableEntity},
	CodeNotFound:      {"NOT_FOUND", http.StatusNotFound},
	CodeConflict:      {"CONFLICT", http.StatusConflict},
	CodeStorage:       {"STORAGE_UNAVAILABLE", http.StatusServiceUnavailable},
}

func (c Code) info() codeInfo {
	if info, ok := codes[c]; ok {
		return info
	}
	return codes[CodeInternal]
}

func (c Code) String() string {
	return c.info().name
}

// Error pairs a client-facing message with the underlying cause.
type Error struct {
	cause   error
	msg     string
	errType Type
	code    Code
}

// Error returns the cause's text when there is one, the message otherwise.
func (e *Error) Error() string {
	if e.cause != nil {
		return e.cause.Error()
	}
	if e.msg != "" {
		return e.msg
	}
	return e.code.String()
}

func (e *Error) String() string {
	return fmt.Sprintf("%s/%s: %s (cause: %v)", e.errType, e.code, e.msg, e.cause)
}

// Msg is safe to show to API clients.
func (e *Error) Msg() string { return e.msg }

func (e *Error) Type() Type { return e.errType }

func (e *Error) Code() Code { return e.code }

func (e *Error) Unwrap() error { return e.cause }

func (e *Error) StatusCode() int {
	return e.code.info().status
}

func newError(cause error, msg string, t Type, code Code) error {
	return &Error{cause: cause, msg: msg, errType: t, code: code}
}

// NewServer hides cause from clients behind a generic message.
func NewServer(cause error) error {
	return newError(cause, "Internal server error", TypeServer, CodeInternal)
}

// NewStorage reports that a record could not be written.
func NewStorage(cause error) error {
	return newError(cause, "failed to persist transaction", TypeServer, CodeStorage)
}

func NewBusiness(msg string, code Code) error {
	return newError(nil, msg, TypeBusiness, code)
}

// NewInvalidInput is for a well-formed request whose values are rejected.
func NewInvalidInput(cause error) error {
	return newError(cause, "validation error", TypeValidation, CodeInvalidInput)
}

// NewInvalidFormat is for a body that could not be decoded at all.
func NewInvalidFormat() error {
	return newError(nil, "invalid request body", TypeValidation, CodeInvalidFormat)
}
