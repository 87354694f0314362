package domain

import "errors"

var (
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateName is returned when a category name collides with an
	// existing category.
	ErrDuplicateName = errors.New("category name already exists")
)
