package repository

import "errors"

var (
	// ErrDuplicateUser is returned when an email is already registered.
	ErrDuplicateUser = errors.New("user already exists")

	// ErrNotFound is returned by lookups that matched no row.
	ErrNotFound = errors.New("record not found")
)
