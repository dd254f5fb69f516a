// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios.
// Ownership checks are folded into the lookups themselves, so a record
// that exists but belongs to someone else is reported exactly like a
// record that does not exist.
package repository

import "errors"

// ErrCarNotFound is returned when a car does not exist or is not owned
// by the caller of an owner-scoped lookup.
var ErrCarNotFound = errors.New("car not found")

// ErrDealRequestNotFound is returned when a deal request does not exist,
// its car is owned by someone else, or it is no longer waiting.
var ErrDealRequestNotFound = errors.New("deal request not found")

// ErrUserNotFound is returned when no user matches a lookup.
var ErrUserNotFound = errors.New("user not found")

// ErrEmailExists is returned when registering an email that is taken.
var ErrEmailExists = errors.New("email already exists")

// ErrTokenInvalid is returned for unknown, expired or revoked refresh tokens.
var ErrTokenInvalid = errors.New("refresh token invalid")
