package app

import "errors"

var (
	// ErrNotFound is returned by Storage when a key has no stored document.
	ErrNotFound = errors.New("not found")

	// ErrSessionNotFound is returned when an operation names a session id
	// that is not in the collection.
	ErrSessionNotFound = errors.New("session not found")

	// ErrBlankCredential is returned when saving an empty or
	// whitespace-only API key.
	ErrBlankCredential = errors.New("credential is blank")

	// ErrBusy is returned when a submit arrives while a dispatch is
	// already in flight.
	ErrBusy = errors.New("dispatch already in flight")
)
