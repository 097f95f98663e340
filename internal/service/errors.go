package service

import "errors"

var (
	// ErrInvalid marks a request the caller can fix (maps to 400).
	ErrInvalid = errors.New("invalid request")

	// ErrForbidden marks an operation on a resource the user may not touch
	// (maps to 403).
	ErrForbidden = errors.New("forbidden")
)
