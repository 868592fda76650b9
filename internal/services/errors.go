package services

import (
	"errors"
	"fmt"

	"video-tracking-system/internal/repository"
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("video not found")
	ErrConflict        = errors.New("video already exists")
	ErrStoreFailure    = errors.New("store failure")
)

func invalidArgument(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// translateStoreError maps repository errors onto the service taxonomy.
// Anything unrecognised is a store failure; the cause stays wrapped for logs.
func translateStoreError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrDuplicateKey):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	default:
		return fmt.Errorf("%w: %w", ErrStoreFailure, err)
	}
}
