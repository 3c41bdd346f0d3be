// Copyright © 2024 The ELPS authors

package reactor

import "fmt"

// A SemanticError represents an error that occurred while computing
// attribute values.  Errors are first-class attribute values: when a
// rule signals an error for an attribute, the error becomes the value
// stored for that attribute and every dependent attribute receives a
// derived error whose Cause field points back here.
//
// SemanticError values are immutable and compared by identity; two
// distinct instances are distinct errors even with identical text.  The
// cause relation is acyclic because a derivation always wraps a
// strictly older error.
type SemanticError struct {
	// Description is the human readable text of the error.
	Description string

	// Cause is the error that triggered this one, or nil for a root
	// error originated by user logic or the missing-attribute pass.
	Cause *SemanticError

	location any
}

var _ error = (*SemanticError)(nil)

// NewError returns a semantic error.  The location is an opaque handle,
// typically an AST node; it may be nil, in which case Location falls
// back to the cause chain.
func NewError(description string, cause *SemanticError, location any) *SemanticError {
	return &SemanticError{
		Description: description,
		Cause:       cause,
		location:    location,
	}
}

// Errorf returns a root semantic error with a formatted description.
func Errorf(location any, format string, v ...any) *SemanticError {
	return NewError(fmt.Sprintf(format, v...), nil, location)
}

// Location returns the error location, typically an AST node.  If the
// error carries no location of its own the cause chain is consulted.
// Returns nil when no error in the chain has a location.
func (e *SemanticError) Location() any {
	if e.location != nil {
		return e.location
	}
	if e.Cause != nil {
		return e.Cause.Location()
	}
	return nil
}

// Error implements the error interface.
func (e *SemanticError) Error() string {
	return e.Description
}

func (e *SemanticError) String() string {
	return "SemanticError(" + e.Description + ")"
}
