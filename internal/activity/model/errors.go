package model

import "errors"

var (
	// ErrInvalidDate indicates a date parameter that is not in dd/mm/yyyy form.
	ErrInvalidDate = errors.New("invalid date, expected dd/mm/yyyy")
	// ErrInvalidEntity indicates a record missing a required field.
	ErrInvalidEntity = errors.New("invalid entity")
	// ErrInvalidRole indicates an unknown user role filter.
	ErrInvalidRole = errors.New("invalid role, expected creator, assignee or all")
	// ErrInvalidRepository indicates a repository name that is not owner/name.
	ErrInvalidRepository = errors.New("invalid repository, expected owner/name")
)
