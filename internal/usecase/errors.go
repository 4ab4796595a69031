package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	// ErrSyncHalted marks failures that stop a run outright: the player list
	// or every tournament year could not be fetched.
	ErrSyncHalted = errors.New("sync halted")
)
