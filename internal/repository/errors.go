// Package repository implements the typed query surface over MySQL. The
// sentinel errors defined here let the service layer distinguish failure
// scenarios without inspecting driver error strings.
package repository

import "errors"

// ErrEmailExists is returned when an insert or update would violate the
// unique email constraint.
var ErrEmailExists = errors.New("email already exists")

// ErrNotFound is returned when a referenced row does not exist.
var ErrNotFound = errors.New("not found")

// ErrLastAdmin is returned by the guarded user mutations when the change
// would leave the system without a single active admin. The guard runs
// inside a transaction that locks the active admin rows, so concurrent
// demotions serialize and the count can never reach zero.
var ErrLastAdmin = errors.New("cannot remove the last admin")
