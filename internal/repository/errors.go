package repository

import "errors"

var (
	// ErrDuplicate is returned when a write violates a uniqueness
	// constraint (canonical URL, email, handle).
	ErrDuplicate = errors.New("record already exists")
	// ErrNotFound is returned by writes that matched no record.
	ErrNotFound = errors.New("record not found")
)
