package vm

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode identifies why the machine rejected a message.
type ErrorCode int

// Stable codes; do not renumber.
const (
	ErrTypeMismatch   ErrorCode = 1001 // VM1001: value does not fit the declared type
	ErrUnknownMember  ErrorCode = 1002 // VM1002: object member not declared
	ErrMissingField   ErrorCode = 1003 // VM1003: required field absent
	ErrUnknownCase    ErrorCode = 1004 // VM1004: tag matches no case
	ErrNoHandler      ErrorCode = 1005 // VM1005: case has no registered handler
	ErrNoEntryPoint   ErrorCode = 1006 // VM1006: kind has no entry point
	ErrUnroutedReply  ErrorCode = 1007 // VM1007: reply ID or outcome not served
	ErrMalformed      ErrorCode = 1008 // VM1008: payload is not a tagged object
	ErrUnknownKind    ErrorCode = 1009 // VM1009: kind has no union on this contract
	ErrUnknownHandler ErrorCode = 1010 // VM1010: handler key names no case
)

func (c ErrorCode) String() string { return fmt.Sprintf("VM%d", c) }

// Error is a rejection located by the JSON path of the offending value.
type Error struct {
	Code    ErrorCode
	Message string
	Path    []string // member names and indexes from the outside in
	Err     error    // underlying codec error, if any
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Code.String())
	sb.WriteString(": ")
	if len(e.Path) > 0 {
		sb.WriteString("at ")
		sb.WriteString(strings.Join(e.Path, "."))
		sb.WriteString(": ")
	}
	sb.WriteString(e.Message)
	return sb.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by code, so errors.Is(err, &Error{Code: c}) works.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code && t.Message == "" && t.Path == nil
}

// CodeOf returns the machine code of err, or 0.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return 0
}

func newError(code ErrorCode, path []string, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Path: clonePath(path)}
}

func wrapError(code ErrorCode, path []string, err error) *Error {
	return &Error{Code: code, Message: err.Error(), Path: clonePath(path), Err: err}
}

func clonePath(path []string) []string {
	if len(path) == 0 {
		return nil
	}
	return append([]string(nil), path...)
}
