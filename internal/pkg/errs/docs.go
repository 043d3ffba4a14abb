// Package errs provides standardized error types for the orders service.
//
// Validation and lookup failures follow one pattern: a sentinel error
// variable (ErrValueIsRequired, ErrObjectNotFound, ...), a struct type carrying
// the details, constructors with and without a cause, and an Unwrap method
// returning the sentinel so errors.Is keeps working across layers.
//
// Order-level failures produced by the workflows are *Error values tagged with
// a Kind (NotFound, BadRequest, Conflict, InternalServer). KindOf classifies any
// error in a chain, mapping the sentinels onto kinds, and is what the HTTP
// layer uses to pick a status code.
package errs
