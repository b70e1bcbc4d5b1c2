package repository

import "errors"

var (
	// ErrNotFound is returned when a lookup matches no record.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateEmail is returned by Create when the email unique
	// constraint rejects the insert.
	ErrDuplicateEmail = errors.New("email already registered")
)
