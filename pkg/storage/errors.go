package storage

import "errors"

// Standard storage adapter errors.
//
// Adapters wrap these with context (fmt.Errorf + %w); callers check them
// with errors.Is. Transport-level failures (network errors, HTTP 5xx) are
// not part of this taxonomy and propagate unchanged.
var (
	// ErrMalformedResponse indicates the provider response could not be
	// parsed (e.g. invalid XML in a PROPFIND response). Never retried at
	// this layer.
	ErrMalformedResponse = errors.New("malformed provider response")

	// ErrPropertyNotFound indicates an expected property was absent from a
	// provider response. Adapters recover locally where the spec of the
	// operation allows a fallback (display names, principal URLs) and
	// propagate it otherwise.
	ErrPropertyNotFound = errors.New("property not found in response")

	// ErrItemNotFound indicates no item exists for the given identifier.
	ErrItemNotFound = errors.New("item not found")

	// ErrInvalidItemID indicates a caller passed a malformed item identifier.
	ErrInvalidItemID = errors.New("invalid item id")

	// ErrMissingUsername indicates identity resolution needed a username
	// fallback but neither the auth extras nor the configuration supplied one.
	ErrMissingUsername = errors.New("username required for fallback but not provided")
)
