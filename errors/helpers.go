package errors

import (
	stderrors "errors"
)

// IsDefinition checks if an error is a DefinitionError.
func IsDefinition(err error) bool {
	var defErr *DefinitionError
	return stderrors.As(err, &defErr)
}

// AsDefinition converts an error to a DefinitionError if possible.
func AsDefinition(err error) (*DefinitionError, bool) {
	var defErr *DefinitionError
	if stderrors.As(err, &defErr) {
		return defErr, true
	}
	return nil, false
}

// CodeOf returns the code carried by err, or the empty code when err is nil
// or not a DefinitionError.
func CodeOf(err error) Code {
	if defErr, ok := AsDefinition(err); ok {
		return defErr.Code
	}
	return ""
}

// HasCode reports whether err is a DefinitionError with the given code.
func HasCode(err error, code Code) bool {
	return CodeOf(err) == code
}
