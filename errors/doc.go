// Package errors provides the structured error type shared by the beankit
// packages. Every failure the kit reports is a DefinitionError carrying a
// machine-readable Code, a human-readable message and structured details, so
// callers can branch on exactly why a type was rejected or a resolution failed.
package errors
