package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a unique constraint was violated.
	ErrAlreadyExists = errors.New("already exists")
	// ErrCheckoutInFlight indicates a checkout attempt is already running.
	ErrCheckoutInFlight = errors.New("checkout already in progress")
)
