package searchdata

import (
	"errors"
	"fmt"
)

var (
	// ErrSyntax is returned when the file is not a valid table literal.
	ErrSyntax = errors.New("searchdata: syntax error")

	// ErrShape is returned when the literal parses but entries do not have
	// the [key, [label, occurrence...]] layout.
	ErrShape = errors.New("searchdata: unexpected table shape")

	// ErrInvalid is wrapped by every ValidationError.
	ErrInvalid = errors.New("searchdata: invalid entry")
)

// ParseError reports where parsing stopped.
//
// The underlying sentinel (ErrSyntax or ErrShape) is reachable via errors.Is.
type ParseError struct {
	Offset int
	Line   int
	Column int
	Msg    string
	cause  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%v at line %d, column %d: %s", e.cause, e.Line, e.Column, e.Msg)
}

func (e *ParseError) Unwrap() error { return e.cause }

// ValidationError describes one invariant violation in a shard
type ValidationError struct {
	Index int    // Entry position, -1 for shard-level problems
	Key   string // Entry key, may be empty
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	return fmt.Sprintf("entry %d (%q) %s: %s", e.Index, e.Key, e.Field, e.Msg)
}

func (e *ValidationError) Unwrap() error { return ErrInvalid }
