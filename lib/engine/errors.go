package engine

import (
	"errors"
	"fmt"
)

// --------------------------------------------------------------------------
// Sentinels
// --------------------------------------------------------------------------

var (
	// ErrCallerParameter matches every error raised because an argument
	// violated a precondition. No engine call was issued for such errors.
	ErrCallerParameter = errors.New("caller parameter error")

	ErrRange        = errors.New("argument out of range")
	ErrNullArgument = errors.New("argument is null")
	ErrInvalidState = errors.New("operation is not valid in the current state")

	// ErrUnsupportedVersion matches structures whose size field does not name
	// a known structure variant.
	ErrUnsupportedVersion = errors.New("unsupported structure version")
)

// --------------------------------------------------------------------------
// Caller-parameter errors
// --------------------------------------------------------------------------

// ParamError is returned when an argument violates a precondition. It is
// always detected before the engine is called.
type ParamError struct {
	Op    string // entry point, e.g. "JetSetColumn"
	Param string // offending parameter, may be empty
	Kind  error  // ErrRange, ErrNullArgument or ErrInvalidState
	Msg   string
}

func (e *ParamError) Error() string {
	if e.Param == "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Msg)
	}
	return fmt.Sprintf("%s: %s: %s: %s", e.Op, e.Param, e.Kind, e.Msg)
}

// Unwrap lets errors.Is match both ErrCallerParameter and the kind.
func (e *ParamError) Unwrap() []error {
	return []error{ErrCallerParameter, e.Kind}
}

// RangeError builds a ParamError of kind ErrRange.
func RangeError(op, param, format string, args ...interface{}) *ParamError {
	return &ParamError{Op: op, Param: param, Kind: ErrRange, Msg: fmt.Sprintf(format, args...)}
}

// NullError builds a ParamError of kind ErrNullArgument.
func NullError(op, param string) *ParamError {
	return &ParamError{Op: op, Param: param, Kind: ErrNullArgument, Msg: "must not be nil"}
}

// StateError builds a ParamError of kind ErrInvalidState.
func StateError(op, format string, args ...interface{}) *ParamError {
	return &ParamError{Op: op, Kind: ErrInvalidState, Msg: fmt.Sprintf(format, args...)}
}

// --------------------------------------------------------------------------
// Engine-reported errors
// --------------------------------------------------------------------------

// Error is a negative status reported by the engine, mapped to a structured
// failure. It keeps the original code.
type Error struct {
	Op       string
	Code     Status
	Category Category
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s (%d, %s)", e.Op, e.Code, int32(e.Code), e.Category)
}

// Check maps a status to an error. Success and warnings map to nil.
func Check(op string, status Status) error {
	if status >= 0 {
		return nil
	}
	return &Error{Op: op, Code: status, Category: status.Category()}
}

// IsStatus reports whether err is an engine error carrying the given code.
func IsStatus(err error, code Status) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
