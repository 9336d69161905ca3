package apperrors

import "errors"

var (
	// ErrNotFound is returned when a job id has no corresponding record.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned by Insert when the job id collides.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
)
