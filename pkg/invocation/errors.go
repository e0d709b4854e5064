package invocation

import "errors"

// ErrUnknownOperation is returned when an operation name is not part of the
// controlled vocabulary.
var ErrUnknownOperation = errors.New("unknown operation")

// ErrUnknownStatus is returned when a status value is not part of the
// controlled vocabulary.
var ErrUnknownStatus = errors.New("unknown status")

// ErrInvalidArgs is returned when the operation arguments cannot be decoded.
var ErrInvalidArgs = errors.New("invalid operation args")

// ErrInvocationNotFound is returned when the requested invocation record
// does not exist.
var ErrInvocationNotFound = errors.New("invocation not found")
