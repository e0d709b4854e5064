package account

import "errors"

// ErrNotFound is returned when the requested account, resource reference,
// or configured addon does not exist.
var ErrNotFound = errors.New("not found")

// ErrExists is returned when a creation collides with an existing entity,
// such as an account created twice with the same ID.
var ErrExists = errors.New("already exists")
