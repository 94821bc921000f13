package chrono

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes failures of duration and interval operations.
type ErrorKind string

const (
	// KindMalformedInput indicates text that does not match the expected grammar.
	KindMalformedInput ErrorKind = "MALFORMED_INPUT"

	// KindUnsupportedUnit indicates an operation asked for a unit it does not model.
	KindUnsupportedUnit ErrorKind = "UNSUPPORTED_UNIT"

	// KindUnsupportedField indicates an operation asked for a field it does not model.
	KindUnsupportedField ErrorKind = "UNSUPPORTED_FIELD"

	// KindNoAnchor indicates an anchor-free interval was asked for a start or end.
	KindNoAnchor ErrorKind = "NO_ANCHOR"

	// KindInfiniteRepetition indicates a repetition-aware value was requested
	// on an infinitely repeating interval.
	KindInfiniteRepetition ErrorKind = "INFINITE_REPETITION"

	// KindInvalidValue indicates constructor-level validation failure.
	KindInvalidValue ErrorKind = "INVALID_VALUE"
)

// Error is the error type returned by every package of the algebra.
// Callers branch on Kind; Message names the offending unit, field or text.
type Error struct {
	Kind    ErrorKind
	Message string

	// Input is the offending text, if any.
	Input string

	// Err is an underlying cause (for example an anchor parse failure).
	Err error
}

func (e *Error) Error() string {
	msg := string(e.Kind) + ": " + e.Message
	if e.Input != "" {
		msg += fmt.Sprintf(" (input %q)", e.Input)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of err, or "" when err is not an *Error.
func KindOf(err error) ErrorKind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ""
}

func IsMalformedInput(err error) bool     { return KindOf(err) == KindMalformedInput }
func IsUnsupportedUnit(err error) bool    { return KindOf(err) == KindUnsupportedUnit }
func IsUnsupportedField(err error) bool   { return KindOf(err) == KindUnsupportedField }
func IsNoAnchor(err error) bool           { return KindOf(err) == KindNoAnchor }
func IsInfiniteRepetition(err error) bool { return KindOf(err) == KindInfiniteRepetition }
func IsInvalidValue(err error) bool       { return KindOf(err) == KindInvalidValue }

// Malformed builds a KindMalformedInput error for input.
func Malformed(input, format string, args ...any) *Error {
	return &Error{Kind: KindMalformedInput, Message: fmt.Sprintf(format, args...), Input: input}
}

// MalformedCause builds a KindMalformedInput error wrapping cause.
func MalformedCause(input string, cause error, format string, args ...any) *Error {
	return &Error{Kind: KindMalformedInput, Message: fmt.Sprintf(format, args...), Input: input, Err: cause}
}

func UnsupportedUnitError(unit any) *Error {
	return &Error{Kind: KindUnsupportedUnit, Message: fmt.Sprintf("unsupported unit: %v", unit)}
}

func UnsupportedFieldError(field any) *Error {
	return &Error{Kind: KindUnsupportedField, Message: fmt.Sprintf("unsupported field: %v", field)}
}

func NoAnchorError(op string) *Error {
	return &Error{Kind: KindNoAnchor, Message: op + " is undefined for an interval without anchor"}
}

func InfiniteRepetitionError(op string) *Error {
	return &Error{Kind: KindInfiniteRepetition, Message: op + " is undefined for an infinitely repeating interval"}
}

func InvalidValue(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidValue, Message: fmt.Sprintf(format, args...)}
}
